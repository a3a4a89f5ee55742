package middleware

import (
	"net/http"

	"github.com/baharkarakas/booking-ledger/internal/api/httpx"
	"github.com/baharkarakas/booking-ledger/internal/models"
)

// RequireRole wraps a handler and allows only the given role.
func RequireRole(need models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := ActorFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "missing credentials", nil)
				return
			}
			if a.Role != need {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "requires role "+string(need), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
