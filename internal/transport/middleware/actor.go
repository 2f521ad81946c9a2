package middleware

import (
	"net/http"

	"github.com/leavesync/leavesync/internal/auth"
	"github.com/leavesync/leavesync/pkg/logger"
)

// ActorContext tags the request-scoped logger with the authenticated
// actor. Must run after the auth middleware has resolved the token.
func ActorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor, ok := auth.UserFromContext(r.Context()); ok && actor != nil {
			ctx := logger.With(r.Context(), "actor_id", actor.ID, "role", actor.Role)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
