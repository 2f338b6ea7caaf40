package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	corslib "github.com/rs/cors"

	"github.com/rkdansdlf/kbo-data/internal/api/handler"
	"github.com/rkdansdlf/kbo-data/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *pgxpool.Pool, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "Link"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// --- Handler dependencies ---
	h := handler.New(pool, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Players and season records
		r.Get("/players/{playerID}", h.GetPlayer)
		r.Get("/players/{playerID}/batting", h.GetPlayerBatting)
		r.Get("/players/{playerID}/pitching", h.GetPlayerPitching)
		r.Get("/players/{playerID}/fielding", h.GetPlayerFielding)

		// Operator visibility
		r.Get("/runs/latest", h.GetLatestRuns)
		r.Get("/queue/status", h.GetQueueStatus)
	})

	return r
}
