// internal/routes/routes.go
package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"visa-checker-backend/internal/config"
	"visa-checker-backend/internal/handlers"
	"visa-checker-backend/internal/metrics"
	"visa-checker-backend/internal/middleware"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Catalog  *handlers.CatalogHandler
	Session  *handlers.SessionHandler
	Payment  *handlers.PaymentHandler
	Workflow *handlers.WorkflowHandler
}

func SetupRoutes(h *Handlers, auth config.AuthConfig, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer())
	r.Use(metrics.Instrument)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS())

	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Get("/catalog", h.Catalog.ListDestinations)
			r.Get("/catalog/{country}/{visaType}", h.Catalog.GetRequirements)
			r.Post("/payments/webhook", h.Payment.Webhook)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(auth))

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", h.Session.CreateSession)

				r.Route("/{sessionId}", func(r chi.Router) {
					r.Get("/", h.Session.GetSession)
					r.Put("/files", h.Session.UpdateFiles)
					r.Post("/validate", h.Session.ValidateDocuments)
					r.Get("/results", h.Session.GetResults)
					r.Post("/payment", h.Payment.StartCheckout)
					r.Get("/payment", h.Payment.GetStatus)
				})
			})

			r.Route("/workflow", func(r chi.Router) {
				r.Get("/", h.Workflow.Get)
				r.Patch("/", h.Workflow.Patch)
				r.Delete("/", h.Workflow.Reset)
				r.Post("/next", h.Workflow.Next)
				r.Post("/previous", h.Workflow.Previous)
				r.Post("/goto", h.Workflow.GoTo)
				r.Post("/session", h.Workflow.CreateSession)
				r.Post("/validate", h.Workflow.Validate)
			})
		})
	})

	return r
}
