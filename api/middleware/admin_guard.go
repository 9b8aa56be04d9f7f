package middleware

import (
	"net/http"

	"github.com/wardstockhq/wardstock-backend/api/responses"
	"github.com/wardstockhq/wardstock-backend/internal/policy"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

// AdminGuard gates catalog-management routes on the allow-list policy.
// The list is fetched fresh per request; fetch failures deny (fail
// closed). The two denial reasons surface distinctly so the client can
// tell "log in with the platform" from "ask to be added".
func AdminGuard(guard *policy.Guard, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			decision := guard.Check(r.Context(), identity)
			if !decision.Allowed() {
				message := "not on the allow-list"
				if decision == policy.DecisionDeniedWrongMode {
					message = "platform login required for catalog management"
				}
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeForbidden, message).WithDetails(map[string]any{"reason": string(decision)}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
