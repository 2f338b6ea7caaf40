package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkdansdlf/kbo-data/internal/config"
)

// RunLog records one audit row per ingestion run so operators can track
// data-quality drift across runs.
type RunLog struct {
	pool *pgxpool.Pool
}

// NewRunLog creates a RunLog over the shared pool.
func NewRunLog(pool *pgxpool.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Record persists a finished run's summary and returns its ID.
func (l *RunLog) Record(ctx context.Context, label string, startedAt, finishedAt time.Time, result *RunResult) (uuid.UUID, error) {
	id := uuid.New()
	_, err := l.pool.Exec(ctx, `
		INSERT INTO `+config.CrawlRunsTable+` (
			id, label, started_at, finished_at,
			players_upserted, batting_upserted, pitching_upserted,
			fielding_upserted, inserted, updated, no_data, rows_skipped,
			fields_defaulted, records_skipped, error_count, summary
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		id, label, startedAt, finishedAt,
		result.PlayersUpserted, result.BattingUpserted, result.PitchingUpserted,
		result.FieldingUpserted, result.Inserted, result.Updated, result.NoData,
		result.RowsSkipped, result.FieldsDefaulted, result.RecordsSkipped,
		len(result.Errors), result.Summary(),
	)
	return id, err
}
