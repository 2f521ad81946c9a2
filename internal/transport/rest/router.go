package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/leavesync/leavesync/internal/auth"
	"github.com/leavesync/leavesync/internal/leave"
	"github.com/leavesync/leavesync/internal/reimbursement"
	"github.com/leavesync/leavesync/internal/transport/middleware"
	"github.com/leavesync/leavesync/internal/transport/swagger"
	"github.com/leavesync/leavesync/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, leaveHandler *leave.Handler, reimbursementHandler *reimbursement.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACMiddleware(logger)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", authHandler.Register)
			sr.Post("/login", authHandler.Login)

			sr.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)
				pr.Use(middleware.ActorContext)
				pr.Get("/me", authHandler.Me)
				pr.Put("/profile", authHandler.UpdateProfile)
			})
		})

		// Everything below requires a valid token.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)
			pr.Use(middleware.ActorContext)

			pr.Route("/leaves", func(lr chi.Router) {
				lr.Get("/", leaveHandler.List)
				// Stats are open to every role; the service scopes the
				// aggregation to the actor's own rows for employees.
				lr.Get("/stats", leaveHandler.Stats)
				lr.Get("/{id}", leaveHandler.GetByID)
				lr.Delete("/{id}", leaveHandler.Delete)

				lr.Group(func(er chi.Router) {
					er.Use(rbac.RequireEmployee())
					er.Post("/", leaveHandler.Create)
				})

				lr.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireReviewer())
					mr.Patch("/{id}/approve", leaveHandler.Approve)
					mr.Patch("/{id}/reject", leaveHandler.Reject)
				})
			})

			pr.Route("/reimbursements", func(rr chi.Router) {
				rr.Get("/", reimbursementHandler.List)
				rr.Get("/stats", reimbursementHandler.Stats)
				rr.Get("/{id}", reimbursementHandler.GetByID)

				rr.Group(func(er chi.Router) {
					er.Use(rbac.RequireEmployee())
					er.Post("/", reimbursementHandler.Create)
				})

				rr.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireReviewer())
					mr.Patch("/{id}/approve", reimbursementHandler.Approve)
					mr.Patch("/{id}/reject", reimbursementHandler.Reject)
				})
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireReviewer())
					mr.Get("/", userHandler.List)
				})

				ur.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Get("/stats", userHandler.Stats)
					ar.Get("/{id}", userHandler.GetByID)
					ar.Patch("/{id}/role", userHandler.UpdateRole)
					ar.Patch("/{id}/status", userHandler.ToggleStatus)
				})
			})
		})
	})
}
