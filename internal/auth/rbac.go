package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RBACMiddleware gates route groups on the actor's role. It assumes
// AuthMiddleware already resolved the actor into the request context.
type RBACMiddleware struct {
	logger *slog.Logger
}

func NewRBACMiddleware(logger *slog.Logger) *RBACMiddleware {
	return &RBACMiddleware{logger: logger}
}

// RequireRoles allows only actors whose role is in the given set.
func (m *RBACMiddleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := UserFromContext(r.Context())
			if !ok || actor == nil {
				writeMessage(w, http.StatusUnauthorized, "Unauthorized. Please login.")
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.logger.Warn("access denied: insufficient role",
				"user_id", actor.ID,
				"role", actor.Role,
				"required_roles", roles)

			appErr := RoleError(actor, roles...)
			writeMessage(w, appErr.StatusCode, appErr.Message)
		})
	}
}

func (m *RBACMiddleware) RequireEmployee() func(http.Handler) http.Handler {
	return m.RequireRoles(RoleEmployee)
}

func (m *RBACMiddleware) RequireReviewer() func(http.Handler) http.Handler {
	return m.RequireRoles(RoleManager, RoleAdmin)
}

func (m *RBACMiddleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.RequireRoles(RoleAdmin)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
