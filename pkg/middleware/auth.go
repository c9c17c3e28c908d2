package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vfg2006/ads-metrics-api/internal/domain"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-metrics-api/pkg/apiErrors"
	"github.com/vfg2006/ads-metrics-api/pkg/log"
)

type contextKey string

const (
	ContextKeyUser contextKey = "user"
)

var publicPaths = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// AuthMiddleware exige um Bearer token válido quando a autenticação está habilitada
func AuthMiddleware(authService authenticating.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.Enabled() || publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Bearer token is required")
				return
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				log.ForContext(r.Context()).WithError(err).Warn("auth: rejected token")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext recupera as claims gravadas pelo AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyUser).(*domain.Claims)
	return claims, ok
}
