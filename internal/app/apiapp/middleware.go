package apiapp

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
	httperrors "github.com/scrollinondubs/DogTinder/internal/transport/http/errors"
)

const defaultRequestTimeout = 60 * time.Second

func ApplyMiddlewares(r chiRouter, log *zap.Logger, timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(requestLogger(log))
}

type tokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (authsvc.AccessClaims, error)
}

// AuthMiddleware rejects requests without a live bearer session.
func AuthMiddleware(authService tokenValidator, log *zap.Logger) func(http.Handler) http.Handler {
	return bearerAuth(authService, log, false)
}

// OptionalAuthMiddleware attaches an identity when a bearer token is sent
// and lets anonymous requests through. A token that is present but invalid
// is still rejected.
func OptionalAuthMiddleware(authService tokenValidator, log *zap.Logger) func(http.Handler) http.Handler {
	return bearerAuth(authService, log, true)
}

func bearerAuth(authService tokenValidator, log *zap.Logger, optional bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if optional && strings.TrimSpace(header) == "" {
				next.ServeHTTP(w, r)
				return
			}

			if authService == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "AUTH_SERVICE_UNAVAILABLE",
					Message: "auth service is unavailable",
				})
				return
			}

			accessToken, ok := extractBearerToken(header)
			if !ok {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "missing bearer token",
				})
				return
			}

			claims, err := authService.ValidateAccessToken(r.Context(), accessToken)
			if err != nil {
				if log != nil {
					log.Debug("auth middleware validation failed", zap.Error(err))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "invalid access token",
				})
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{
				UserID: claims.UserID,
				SID:    claims.SID,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
