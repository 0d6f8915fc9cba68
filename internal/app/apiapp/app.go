package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/config"
	s3infra "github.com/scrollinondubs/DogTinder/internal/infra/s3"
	pgrepo "github.com/scrollinondubs/DogTinder/internal/repo/postgres"
	redrepo "github.com/scrollinondubs/DogTinder/internal/repo/redis"
	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
	feedsvc "github.com/scrollinondubs/DogTinder/internal/services/feed"
	likessvc "github.com/scrollinondubs/DogTinder/internal/services/likes"
	mediasvc "github.com/scrollinondubs/DogTinder/internal/services/media"
	ratesvc "github.com/scrollinondubs/DogTinder/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.RequestTimeout)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	likeRepo := pgrepo.NewLikeRepo(pool)
	dogRepo := pgrepo.NewDogRepo(pool)
	txRunner := pgrepo.NewTxRunner(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	var signer mediasvc.URLSigner
	if s3Client != nil {
		storage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
		if err := storage.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed", zap.String("bucket", cfg.S3.Bucket), zap.Error(err))
		}
		signer = storage
	}
	imageResolver := mediasvc.NewResolver(signer, cfg.S3.SignedURLTTL)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, authsvc.Config{
		RefreshTTL:        cfg.Auth.RefreshTTL,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	})
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Swipes.RatePerMinute, cfg.Swipes.RatePer10Seconds)
	likeService := likessvc.NewService(likessvc.Dependencies{
		Tx:          txRunner,
		Likes:       likeRepo,
		Dogs:        dogRepo,
		RateLimiter: rateLimiter,
		Images:      imageResolver,
	}, likessvc.Config{
		MaxMergeBatch: cfg.Swipes.MergeMaxBatch,
	})
	feedService := feedsvc.NewService(dogRepo, likeRepo, imageResolver, feedsvc.Config{
		MaxExcludeIDs: cfg.Feed.MaxExcludeIDs,
		PageLimit:     cfg.Feed.PageLimit,
	})

	RegisterRoutes(r, Dependencies{
		AuthService: authService,
		LikeService: likeService,
		FeedService: feedService,
		Logger:      log,
		Config:      cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
