// Package store writes canonical records to Postgres with idempotent
// upsert semantics, and owns the persisted work queue and crawl-run audit
// log.
package store

import "fmt"

// RunResult tracks counts and errors from one ingestion run. One subject's
// failure never aborts the batch; it lands here instead.
type RunResult struct {
	PlayersUpserted  int
	BattingUpserted  int
	PitchingUpserted int
	FieldingUpserted int
	Inserted         int
	Updated          int

	NoData          int // units with nothing to parse (normal outcome)
	RowsSkipped     int // structural anomalies inside located tables
	FieldsDefaulted int // expected fields stored as NULL
	RecordsSkipped  int // records rejected by a sink constraint

	Errors []string
}

// Add merges another RunResult into this one.
func (r *RunResult) Add(other RunResult) {
	r.PlayersUpserted += other.PlayersUpserted
	r.BattingUpserted += other.BattingUpserted
	r.PitchingUpserted += other.PitchingUpserted
	r.FieldingUpserted += other.FieldingUpserted
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.NoData += other.NoData
	r.RowsSkipped += other.RowsSkipped
	r.FieldsDefaulted += other.FieldsDefaulted
	r.RecordsSkipped += other.RecordsSkipped
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *RunResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run, enough for an
// operator to gauge data-quality drift without reading per-row logs.
func (r *RunResult) Summary() string {
	return fmt.Sprintf(
		"players=%d batting=%d pitching=%d fielding=%d inserted=%d updated=%d no_data=%d rows_skipped=%d fields_null=%d records_skipped=%d errors=%d",
		r.PlayersUpserted, r.BattingUpserted, r.PitchingUpserted, r.FieldingUpserted,
		r.Inserted, r.Updated,
		r.NoData, r.RowsSkipped, r.FieldsDefaulted, r.RecordsSkipped,
		len(r.Errors),
	)
}
