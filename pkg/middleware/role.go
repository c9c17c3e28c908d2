package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ads-metrics-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-metrics-api/pkg/apiErrors"
)

// AdminOnly restringe a rota a administradores.
// Com a autenticação desabilitada a rota fica aberta, como todas as outras.
func AdminOnly(authService authenticating.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			userClaims, ok := ClaimsFromContext(r.Context())
			if !ok {
				logrus.Warning("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "User not authenticated")
				return
			}

			if !userClaims.IsAdmin() {
				logrus.Warningf("Acesso negado para usuário %s, role=%s", userClaims.Email, userClaims.Role)
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "You do not have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
