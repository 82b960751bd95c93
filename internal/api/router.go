package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/sprout/internal/api/middleware"
	"github.com/phrazzld/sprout/internal/api/shared"
)

// Handlers groups the handlers mounted by NewRouter
type Handlers struct {
	Profile   *ProfileHandler
	Lifecycle *LifecycleHandler
	Reminder  *ReminderHandler
}

// HealthCheck reports whether the backing store is reachable
type HealthCheck func(r *http.Request) error

// NewRouter builds the HTTP router with middleware and all routes.
func NewRouter(h Handlers, health HealthCheck, l *slog.Logger) http.Handler {
	if l == nil {
		l = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(l))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "unhealthy", err)
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/profile", h.Profile.GetProfile)
		r.Put("/profile", h.Profile.SaveProfile)
		r.Delete("/profile", h.Profile.DeleteProfile)

		r.Post("/auto-update", h.Lifecycle.PerformAutoUpdate)
		r.Get("/auto-update/needed", h.Lifecycle.NeedsAutoUpdate)

		r.Post("/reminders/schedule", h.Reminder.ScheduleCampaign)
		r.Delete("/reminders/{profileID}", h.Reminder.CancelCampaign)
	})

	return r
}
