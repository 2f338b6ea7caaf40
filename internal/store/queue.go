package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkdansdlf/kbo-data/internal/config"
)

// The persisted work queue replaces per-script resume logic: one row per
// (player, season, record type) unit of work, and re-running the
// orchestrator is just "reprocess non-done items".

// Queue statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Record types queued for processing.
const (
	TypeBatting  = "batting"
	TypePitching = "pitching"
	TypeFielding = "fielding"
	TypeProfile  = "profile"
)

// QueueItem is one claimed unit of work.
type QueueItem struct {
	ID         int64
	PlayerID   int
	Season     int
	Series     string // key into config.SeriesRegistry
	RecordType string
	Attempts   int
}

// Queue manages the crawl_queue table.
type Queue struct {
	pool *pgxpool.Pool
}

// NewQueue creates a Queue over the shared pool.
func NewQueue(pool *pgxpool.Pool) *Queue {
	return &Queue{pool: pool}
}

// Enqueue inserts a unit of work, ignoring duplicates of units already
// queued or done.
func (q *Queue) Enqueue(ctx context.Context, playerID, season int, series, recordType string) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO `+config.CrawlQueueTable+`
			(player_id, season, series, record_type, status)
		VALUES ($1, $2, $3, $4, '`+StatusPending+`')
		ON CONFLICT (player_id, season, series, record_type) DO NOTHING`,
		playerID, season, series, recordType)
	return err
}

// Claim atomically moves up to limit pending items to processing and
// returns them. SKIP LOCKED lets concurrent workers claim disjoint sets
// without blocking each other. Items that failed fewer than maxRetries
// times are retried.
func (q *Queue) Claim(ctx context.Context, limit, maxRetries int) ([]QueueItem, error) {
	rows, err := q.pool.Query(ctx, `
		UPDATE `+config.CrawlQueueTable+` SET
			status = '`+StatusProcessing+`',
			attempts = attempts + 1,
			claimed_at = NOW()
		WHERE id IN (
			SELECT id FROM `+config.CrawlQueueTable+`
			WHERE (status = '`+StatusPending+`')
			   OR (status = '`+StatusFailed+`' AND attempts < $2)
			ORDER BY season, player_id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, player_id, season, series, record_type, attempts`,
		limit, maxRetries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		var item QueueItem
		if err := rows.Scan(&item.ID, &item.PlayerID, &item.Season,
			&item.Series, &item.RecordType, &item.Attempts); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkDone marks a unit complete.
func (q *Queue) MarkDone(ctx context.Context, id int64) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE `+config.CrawlQueueTable+`
		SET status = '`+StatusDone+`', last_error = NULL, finished_at = NOW()
		WHERE id = $1`, id)
	return err
}

// MarkFailed records a unit failure with its error message.
func (q *Queue) MarkFailed(ctx context.Context, id int64, cause string) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE `+config.CrawlQueueTable+`
		SET status = '`+StatusFailed+`', last_error = $2, finished_at = NOW()
		WHERE id = $1`, id, cause)
	return err
}

// PendingCount returns how many units remain pending.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	var n int
	err := q.pool.QueryRow(ctx, "queue_pending_count").Scan(&n)
	return n, err
}

// ReleaseStale returns processing items older than cutoff back to pending;
// used at startup to recover from crashed workers.
func (q *Queue) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := q.pool.Exec(ctx, `
		UPDATE `+config.CrawlQueueTable+`
		SET status = '`+StatusPending+`'
		WHERE status = '`+StatusProcessing+`' AND claimed_at < NOW() - make_interval(secs => $1)`,
		olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
