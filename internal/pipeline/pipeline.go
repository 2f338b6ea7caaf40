// Package pipeline turns fetched pages into canonical records and drives
// them into the store. One unit of work is a (player, series, record type)
// page; a unit that fails never aborts the batch.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rkdansdlf/kbo-data/internal/config"
	"github.com/rkdansdlf/kbo-data/internal/parse"
	"github.com/rkdansdlf/kbo-data/internal/profile"
	"github.com/rkdansdlf/kbo-data/internal/record"
	"github.com/rkdansdlf/kbo-data/internal/stats"
	"github.com/rkdansdlf/kbo-data/internal/store"
	"github.com/rkdansdlf/kbo-data/internal/table"
)

// PageSource is one fetched page awaiting processing.
type PageSource struct {
	PlayerID   int
	Series     string // key into config.SeriesRegistry
	RecordType string // store.TypeBatting, TypePitching, TypeProfile
	HTML       string
	FetchedAt  time.Time
}

// Sink receives canonical records. *store.Writer is the production
// implementation; tests substitute an in-memory one.
type Sink interface {
	UpsertPlayer(ctx context.Context, p record.Player) error
	UpsertBatting(ctx context.Context, line *record.BattingLine) (store.WriteResult, error)
	UpsertPitching(ctx context.Context, line *record.PitchingLine) (store.WriteResult, error)
	UpsertFielding(ctx context.Context, line *record.FieldingLine) (store.WriteResult, error)
}

// Processor normalizes pages into records and writes them to a Sink.
type Processor struct {
	sink   Sink
	logger *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(sink Sink, logger *slog.Logger) *Processor {
	return &Processor{sink: sink, logger: logger}
}

// Process dispatches one page by its record type.
func (p *Processor) Process(ctx context.Context, src PageSource) store.RunResult {
	switch src.RecordType {
	case store.TypeBatting:
		return p.ProcessBattingPage(ctx, src)
	case store.TypePitching:
		return p.ProcessPitchingPage(ctx, src)
	case store.TypeFielding:
		return p.ProcessFieldingPage(ctx, src)
	case store.TypeProfile:
		return p.ProcessProfilePage(ctx, src)
	default:
		var result store.RunResult
		result.AddErrorf("player %d: unknown record type %q", src.PlayerID, src.RecordType)
		return result
	}
}

// seriesFor resolves a registry key, falling back to the regular season
// tier for unknown keys.
func seriesFor(key string) config.SeriesConfig {
	if s, ok := config.SeriesRegistry[key]; ok {
		return s
	}
	return config.SeriesRegistry["regular"]
}

// ProcessBattingPage locates the hitter tables on a season-record page,
// merges the split basic/advanced pair on season, and upserts one batting
// record per season row.
func (p *Processor) ProcessBattingPage(ctx context.Context, src PageSource) store.RunResult {
	var result store.RunResult

	page, err := table.ParsePage(src.HTML)
	if err != nil {
		result.AddErrorf("player %d batting: parse page: %v", src.PlayerID, err)
		return result
	}

	rows, skipped, found := p.seasonRows(table.StatTables(page, table.BattingColumns), src.PlayerID, "batting")
	result.RowsSkipped += skipped
	if !found {
		result.NoData++
		return result
	}

	series := seriesFor(src.Series)
	for _, row := range rows {
		key, ok := p.rowKey(row, src.PlayerID, series, &result)
		if !ok {
			continue
		}
		line, bs := record.BuildBatting(row, key, record.SourceCrawler, record.BattingProfile(key.Season, key.League))
		result.FieldsDefaulted += bs.Defaulted
		stats.FillBatting(line)

		wr, err := p.sink.UpsertBatting(ctx, line)
		if !p.tally(&result, key, "batting", wr, err) {
			continue
		}
		result.BattingUpserted++
	}
	return result
}

// ProcessPitchingPage is the pitcher-side counterpart of
// ProcessBattingPage. Innings are stored as an outs count.
func (p *Processor) ProcessPitchingPage(ctx context.Context, src PageSource) store.RunResult {
	var result store.RunResult

	page, err := table.ParsePage(src.HTML)
	if err != nil {
		result.AddErrorf("player %d pitching: parse page: %v", src.PlayerID, err)
		return result
	}

	rows, skipped, found := p.seasonRows(table.StatTables(page, table.PitchingColumns), src.PlayerID, "pitching")
	result.RowsSkipped += skipped
	if !found {
		result.NoData++
		return result
	}

	series := seriesFor(src.Series)
	for _, row := range rows {
		key, ok := p.rowKey(row, src.PlayerID, series, &result)
		if !ok {
			continue
		}
		line, bs := record.BuildPitching(row, key, record.SourceCrawler, record.PitchingProfile(key.Season, key.League))
		result.FieldsDefaulted += bs.Defaulted
		stats.FillPitching(line)

		wr, err := p.sink.UpsertPitching(ctx, line)
		if !p.tally(&result, key, "pitching", wr, err) {
			continue
		}
		result.PitchingUpserted++
	}
	return result
}

// ProcessFieldingPage ingests the defense tables of a record page. The
// site never split the defense layout, so every located table is read
// as-is. Each row keys on (season, position); a row without a position
// is a structural anomaly.
func (p *Processor) ProcessFieldingPage(ctx context.Context, src PageSource) store.RunResult {
	var result store.RunResult

	page, err := table.ParsePage(src.HTML)
	if err != nil {
		result.AddErrorf("player %d fielding: parse page: %v", src.PlayerID, err)
		return result
	}

	tables := table.StatTables(page, table.FieldingColumns)
	if len(tables) == 0 {
		result.NoData++
		return result
	}

	series := seriesFor(src.Series)
	for _, tbl := range tables {
		rows, skipped := tbl.DictRows(p.logger)
		result.RowsSkipped += skipped
		for _, row := range rows {
			if table.IsAggregateRow(row["season"]) {
				continue
			}
			key, ok := p.rowKey(row, src.PlayerID, series, &result)
			if !ok {
				continue
			}
			line, bs := record.BuildFielding(row, key, record.SourceCrawler, record.FieldingProfile(key.Season, key.League))
			if line.Position == "" {
				result.RowsSkipped++
				if p.logger != nil {
					p.logger.Warn("fielding row has no position, skipping",
						"player_id", src.PlayerID, "season", key.Season)
				}
				continue
			}
			result.FieldsDefaulted += bs.Defaulted
			stats.FillFielding(line)

			wr, err := p.sink.UpsertFielding(ctx, line)
			if !p.tally(&result, key, "fielding", wr, err) {
				continue
			}
			result.FieldingUpserted++
		}
	}
	return result
}

// ProcessProfilePage parses the identity block of a player page and
// gap-fills the player row. Career stat tables on the same page are
// ingested too, attributed to the profile source.
func (p *Processor) ProcessProfilePage(ctx context.Context, src PageSource) store.RunResult {
	var result store.RunResult

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src.HTML))
	if err != nil {
		result.AddErrorf("player %d profile: parse page: %v", src.PlayerID, err)
		return result
	}

	player := profile.Parse(src.PlayerID, profileText(doc))
	if player.Name == "" && player.BirthDate == nil && player.Position == nil {
		result.NoData++
		return result
	}
	if err := p.sink.UpsertPlayer(ctx, player); err != nil {
		result.AddErrorf("player %d profile: upsert: %v", src.PlayerID, err)
		return result
	}
	result.PlayersUpserted++

	page, err := table.ParsePage(src.HTML)
	if err != nil {
		return result
	}
	series := seriesFor("regular")
	hitters, pitchers := table.Classify(page.Tables)

	hitterRows, skipped, _ := p.seasonRows(hitters, src.PlayerID, "batting")
	result.RowsSkipped += skipped
	for _, row := range hitterRows {
		key, ok := p.rowKey(row, src.PlayerID, series, &result)
		if !ok {
			continue
		}
		line, bs := record.BuildBatting(row, key, record.SourceProfile, record.BattingProfile(key.Season, key.League))
		result.FieldsDefaulted += bs.Defaulted
		stats.FillBatting(line)
		wr, err := p.sink.UpsertBatting(ctx, line)
		if !p.tally(&result, key, "batting", wr, err) {
			continue
		}
		result.BattingUpserted++
	}

	pitcherRows, skipped, _ := p.seasonRows(pitchers, src.PlayerID, "pitching")
	result.RowsSkipped += skipped
	for _, row := range pitcherRows {
		key, ok := p.rowKey(row, src.PlayerID, series, &result)
		if !ok {
			continue
		}
		line, bs := record.BuildPitching(row, key, record.SourceProfile, record.PitchingProfile(key.Season, key.League))
		result.FieldsDefaulted += bs.Defaulted
		stats.FillPitching(line)
		wr, err := p.sink.UpsertPitching(ctx, line)
		if !p.tally(&result, key, "pitching", wr, err) {
			continue
		}
		result.PitchingUpserted++
	}
	return result
}

// profileText extracts the identity block of a player page: the smallest
// list or division whose text carries the name label. Scoping the
// tokenizer input keeps stat-table digits out of the last label's value.
func profileText(doc *goquery.Document) string {
	best := ""
	doc.Find("ul, dl, div").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if !strings.Contains(text, "선수명") {
			return
		}
		if best == "" || len(text) < len(best) {
			best = text
		}
	})
	if best != "" {
		return best
	}
	return doc.Text()
}

// seasonRows materializes per-season row maps from the located stat
// tables. Two tables are the split basic/advanced layout and merge on
// season; one table stands alone. found is false only when no table was
// located at all, which the caller records as a no-data unit — a located
// table with zero usable rows is zero records, not missing data.
func (p *Processor) seasonRows(candidates []table.RawTable, playerID int, kind string) (rows []map[string]string, skipped int, found bool) {
	switch len(candidates) {
	case 0:
		return nil, 0, false
	case 1:
		all, skipped := candidates[0].DictRows(p.logger)
		kept := all[:0]
		for _, row := range all {
			if table.IsAggregateRow(row["season"]) {
				continue
			}
			kept = append(kept, row)
		}
		return kept, skipped, true
	default:
		if len(candidates) > 2 && p.logger != nil {
			p.logger.Warn("more stat tables than expected, merging first two",
				"player_id", playerID, "kind", kind, "tables", len(candidates))
		}
		merged, skipped := table.Merge(candidates[0], candidates[1], "season", p.logger)
		return merged, skipped, true
	}
}

// rowKey parses the season cell into a natural key. Rows without a
// plausible season are structural anomalies.
func (p *Processor) rowKey(row map[string]string, playerID int, series config.SeriesConfig, result *store.RunResult) (record.Key, bool) {
	season := parse.Int(row["season"])
	if season == nil || *season < config.FirstSeason || *season > time.Now().Year()+1 {
		result.RowsSkipped++
		if p.logger != nil {
			p.logger.Warn("row has no usable season, skipping",
				"player_id", playerID, "season_cell", row["season"])
		}
		return record.Key{}, false
	}
	return record.Key{
		PlayerID: playerID,
		Season:   *season,
		League:   series.League,
		Level:    series.Level,
	}, true
}

// tally folds one upsert outcome into the result. Constraint violations
// skip the record; other errors are collected. Returns true when the
// write landed.
func (p *Processor) tally(result *store.RunResult, key record.Key, kind string, wr store.WriteResult, err error) bool {
	if err != nil {
		var ce *store.ConstraintError
		if errors.As(err, &ce) {
			result.RecordsSkipped++
			if p.logger != nil {
				p.logger.Warn("record rejected by sink constraint, skipping",
					"player_id", key.PlayerID, "season", key.Season, "kind", kind, "cause", ce.Err)
			}
			return false
		}
		result.AddErrorf("player %d season %d %s: %v", key.PlayerID, key.Season, kind, err)
		return false
	}
	if wr.Inserted {
		result.Inserted++
	} else {
		result.Updated++
	}
	return true
}
