package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/config"
	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
	feedsvc "github.com/scrollinondubs/DogTinder/internal/services/feed"
	likessvc "github.com/scrollinondubs/DogTinder/internal/services/likes"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService *authsvc.Service
	LikeService *likessvc.Service
	FeedService *feedsvc.Service
	Logger      *zap.Logger
	Config      config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	likesHandler := handlers.NewLikesHandler(deps.LikeService)
	dogsHandler := handlers.NewDogsHandler(deps.FeedService)
	healthHandler := handlers.NewHealthHandler()

	requireAuth := AuthMiddleware(deps.AuthService, deps.Logger)
	optionalAuth := OptionalAuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(requireAuth).Post("/logout", authHandler.Logout)
			r.With(requireAuth).Post("/logout_all", authHandler.LogoutAll)
		})

		r.With(optionalAuth).Get("/dogs", dogsHandler.List)

		r.Route("/likes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", likesHandler.List)
			r.Post("/", likesHandler.Swipe)
			r.Post("/merge", likesHandler.Merge)
		})
	})
}
