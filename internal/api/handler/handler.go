// Package handler provides HTTP handlers for all API endpoints.
// Handlers query Postgres directly via pgxpool — no service layer.
// Postgres builds complete JSON (row_to_json / json_agg); handlers pass
// the raw bytes through.
package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkdansdlf/kbo-data/internal/api/respond"
	"github.com/rkdansdlf/kbo-data/internal/config"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool *pgxpool.Pool
	cfg  *config.Config
}

// New creates a Handler with shared dependencies.
func New(pool *pgxpool.Pool, cfg *config.Config) *Handler {
	return &Handler{pool: pool, cfg: cfg}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "KBO Data API",
		"version": "1.0.0",
		"status":  "running",
		"optimizations": []string{
			"pgxpool_connection_pooling",
			"prepared_statements",
			"postgres_json_passthrough",
			"gzip_compression",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
