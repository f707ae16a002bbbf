package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountRoutes registers all API routes on the given chi router. apiTimeout
// bounds API request handling; it applies only to the /api group so it cannot
// sever long-lived WebSocket connections mounted elsewhere.
func MountRoutes(r chi.Router, h *Handlers, apiTimeout time.Duration) {
	r.Get("/", h.HandleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(apiTimeout))

		r.Get("/health", h.HandleHealth)
		r.Post("/log-pair", h.HandleLogPair)
		r.Post("/revise", h.HandleRevise)
		r.Post("/trigger-fine-tuning", h.HandleTriggerTraining)
		r.Get("/status/{userID}/{accountID}", h.HandleStatus)
	})
}
