package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	// Collector ingestion, authenticated by opaque X-Token header.
	r.Post("/api/event", app.IngestUnits)

	// Read API, authenticated by session JWT.
	r.Route("/v1/accounts", func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))
		r.Get("/{accountID}/units", app.CurrentUnits)
		r.Get("/{accountID}/units/history", app.UnitsHistory)
	})

	return r
}
