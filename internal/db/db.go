// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkdansdlf/kbo-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and ingestion
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// API: player lookup
		"api_player": `SELECT row_to_json(p) FROM ` + config.PlayersTable + ` p WHERE p.id = $1`,
		"api_player_batting": `SELECT json_agg(row_to_json(b) ORDER BY b.season) FROM ` +
			config.BattingTable + ` b WHERE b.player_id = $1 AND ($2 = 0 OR b.season = $2)`,
		"api_player_pitching": `SELECT json_agg(row_to_json(p) ORDER BY p.season) FROM ` +
			config.PitchingTable + ` p WHERE p.player_id = $1 AND ($2 = 0 OR p.season = $2)`,
		"api_player_fielding": `SELECT json_agg(row_to_json(f) ORDER BY f.season, f.position) FROM ` +
			config.FieldingTable + ` f WHERE f.player_id = $1 AND ($2 = 0 OR f.season = $2)`,

		// API: run summaries
		"api_latest_runs": `SELECT json_agg(row_to_json(r)) FROM (SELECT * FROM ` +
			config.CrawlRunsTable + ` ORDER BY started_at DESC LIMIT $1) r`,

		// Ingestion: work queue
		"queue_pending_count": `SELECT count(*) FROM ` + config.CrawlQueueTable + ` WHERE status = 'pending'`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
