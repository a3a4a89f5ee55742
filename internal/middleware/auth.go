package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/booking-ledger/internal/api/httpx"
	"github.com/baharkarakas/booking-ledger/internal/auth"
	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	TM     *auth.TokenManager
	AppEnv string
}

func NewAuthMiddleware(tm *auth.TokenManager, appEnv string) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, AppEnv: appEnv}
}

// devActor parses "dev-<role>-<uuid>".
func devActor(token string) (models.Actor, bool) {
	rest, ok := strings.CutPrefix(token, "dev-")
	if !ok {
		return models.Actor{}, false
	}
	role, id, ok := strings.Cut(rest, "-")
	if !ok {
		return models.Actor{}, false
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return models.Actor{}, false
	}
	a := models.Actor{ID: uid, Role: models.Role(role)}
	if a.Validate() != nil {
		return models.Actor{}, false
	}
	return a, true
}

// DEV: Bearer dev-<role>-<uuid> | PROD/DEV: Bearer <JWT(access)>
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[7:])

		if m.AppEnv == "dev" {
			if a, ok := devActor(token); ok {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
				return
			}
		}

		claims, err := m.TM.ParseAccess(token)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "invalid access token", nil)
			return
		}
		a, err := claims.Actor()
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "invalid access token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
	})
}
