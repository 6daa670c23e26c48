package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/hermes"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/store"
)

// NewRouter builds the API routes. With trustProxy set the client address
// is rewritten from proxy headers before rate limiting.
func NewRouter(e *scoring.Engine, a *scoring.Adaptive, ledger store.Store, h hermes.Client, rateLimitPerMin int, trustProxy bool, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	if trustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(rateLimitPerMin))

	tasks := NewTasksHandler(e, h, logger)
	feedback := NewFeedbackHandler(e, a, ledger, h, logger)
	strategies := NewStrategiesHandler(e.Strategies())

	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks/analyze", tasks.Analyze)
		r.Get("/tasks/suggest", tasks.Suggest)
		r.Post("/tasks/suggest", tasks.Suggest)
		r.Post("/tasks/matrix", tasks.Matrix)

		r.Post("/feedback", feedback.Register)
		r.Get("/feedback/stats", feedback.Stats)

		r.Get("/strategies", strategies.List)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
