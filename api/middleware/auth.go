package middleware

import (
	"net/http"
	"strings"

	"github.com/wardstockhq/wardstock-backend/api/responses"
	pkgauth "github.com/wardstockhq/wardstock-backend/pkg/auth"
	"github.com/wardstockhq/wardstock-backend/pkg/config"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// Auth validates the bearer session token and seeds the request context
// with the resolved identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token"))
				return
			}

			identity := models.Identity{
				LoginMode:   claims.LoginMode,
				DisplayName: claims.DisplayName,
				PictureURL:  claims.PictureURL,
			}
			if !identity.Authenticated() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session carries no actor"))
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_name":  identity.DisplayName,
					"login_mode": string(identity.LoginMode),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
