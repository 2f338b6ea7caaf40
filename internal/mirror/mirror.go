// Package mirror exports the canonical Postgres tables into a single
// SQLite file. Downstream analysis tooling gets a self-contained snapshot
// it can query offline; repeated exports replace rows in place.
package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/rkdansdlf/kbo-data/internal/config"
	"github.com/rkdansdlf/kbo-data/internal/record"
)

// Source reads the canonical rows to be mirrored. The production source
// is Postgres; tests feed rows directly.
type Source interface {
	Players(ctx context.Context) ([]record.Player, error)
	Batting(ctx context.Context) ([]*record.BattingLine, error)
	Pitching(ctx context.Context) ([]*record.PitchingLine, error)
	Fielding(ctx context.Context) ([]*record.FieldingLine, error)
}

// ExportResult counts mirrored rows per table.
type ExportResult struct {
	Players  int
	Batting  int
	Pitching int
	Fielding int
}

// Exporter writes one snapshot per call.
type Exporter struct {
	src    Source
	logger *slog.Logger
}

// NewExporter creates an Exporter over a row source.
func NewExporter(src Source, logger *slog.Logger) *Exporter {
	return &Exporter{src: src, logger: logger}
}

const mirrorSchema = `
CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	team_code TEXT,
	back_number INTEGER,
	position TEXT,
	throwing_hand TEXT,
	batting_hand TEXT,
	height_cm INTEGER,
	weight_kg INTEGER,
	birth_date TEXT,
	draft_year INTEGER,
	draft_team_code TEXT,
	draft_type TEXT,
	draft_round INTEGER,
	draft_pick_overall INTEGER,
	entry_year INTEGER,
	entry_team_code TEXT,
	signing_bonus_amount INTEGER,
	signing_bonus_currency TEXT,
	salary_amount INTEGER,
	salary_currency TEXT
);
CREATE TABLE IF NOT EXISTS player_season_batting (
	player_id INTEGER NOT NULL,
	season INTEGER NOT NULL,
	league TEXT NOT NULL,
	level TEXT NOT NULL,
	team_code TEXT,
	source TEXT,
	games INTEGER, plate_appearances INTEGER, at_bats INTEGER,
	runs INTEGER, hits INTEGER, doubles INTEGER, triples INTEGER,
	home_runs INTEGER, rbi INTEGER, walks INTEGER,
	intentional_walks INTEGER, hbp INTEGER, strikeouts INTEGER,
	stolen_bases INTEGER, caught_stealing INTEGER,
	sacrifice_hits INTEGER, sacrifice_flies INTEGER,
	gdp INTEGER, errors INTEGER,
	avg REAL, obp REAL, slg REAL, ops REAL, iso REAL, babip REAL,
	extra_stats TEXT,
	PRIMARY KEY (player_id, season, league, level)
);
CREATE TABLE IF NOT EXISTS player_season_pitching (
	player_id INTEGER NOT NULL,
	season INTEGER NOT NULL,
	league TEXT NOT NULL,
	level TEXT NOT NULL,
	team_code TEXT,
	source TEXT,
	games INTEGER, games_started INTEGER, wins INTEGER, losses INTEGER,
	saves INTEGER, holds INTEGER, innings_outs INTEGER,
	hits_allowed INTEGER, runs_allowed INTEGER, earned_runs INTEGER,
	home_runs_allowed INTEGER, walks_allowed INTEGER,
	intentional_walks INTEGER, hit_batters INTEGER, strikeouts INTEGER,
	wild_pitches INTEGER, balks INTEGER,
	era REAL, whip REAL, fip REAL,
	k_per_nine REAL, bb_per_nine REAL, k_per_bb REAL,
	extra_stats TEXT,
	PRIMARY KEY (player_id, season, league, level)
);
CREATE TABLE IF NOT EXISTS player_season_fielding (
	player_id INTEGER NOT NULL,
	season INTEGER NOT NULL,
	league TEXT NOT NULL,
	level TEXT NOT NULL,
	position TEXT NOT NULL,
	team_code TEXT,
	source TEXT,
	games INTEGER, games_started INTEGER, innings_outs INTEGER,
	errors INTEGER, pickoffs INTEGER, putouts INTEGER, assists INTEGER,
	double_plays INTEGER,
	fielding_pct REAL,
	extra_stats TEXT,
	PRIMARY KEY (player_id, season, league, level, position)
);
CREATE INDEX IF NOT EXISTS idx_batting_season ON player_season_batting(season, league);
CREATE INDEX IF NOT EXISTS idx_pitching_season ON player_season_pitching(season, league);
CREATE INDEX IF NOT EXISTS idx_fielding_season ON player_season_fielding(season, league);
`

// Export snapshots every canonical table into the SQLite file at path.
func (e *Exporter) Export(ctx context.Context, path string) (ExportResult, error) {
	start := time.Now()
	var result ExportResult

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return result, fmt.Errorf("open mirror %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, mirrorSchema); err != nil {
		return result, fmt.Errorf("create mirror schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	if result.Players, err = e.exportPlayers(ctx, tx); err != nil {
		return result, err
	}
	if result.Batting, err = e.exportBatting(ctx, tx); err != nil {
		return result, err
	}
	if result.Pitching, err = e.exportPitching(ctx, tx); err != nil {
		return result, err
	}
	if result.Fielding, err = e.exportFielding(ctx, tx); err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		return result, err
	}
	if e.logger != nil {
		e.logger.Info("mirror export complete", "path", path,
			"players", result.Players, "batting", result.Batting,
			"pitching", result.Pitching, "fielding", result.Fielding,
			"duration", time.Since(start))
	}
	return result, nil
}

func (e *Exporter) exportPlayers(ctx context.Context, tx *sql.Tx) (int, error) {
	players, err := e.src.Players(ctx)
	if err != nil {
		return 0, fmt.Errorf("read players: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO players (
			id, name, team_code, back_number, position, throwing_hand,
			batting_hand, height_cm, weight_kg, birth_date,
			draft_year, draft_team_code, draft_type, draft_round,
			draft_pick_overall, entry_year, entry_team_code,
			signing_bonus_amount, signing_bonus_currency,
			salary_amount, salary_currency
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.TeamCode, p.BackNumber, p.Position,
			p.ThrowingHand, p.BattingHand, p.HeightCm, p.WeightKg,
			p.BirthDate, p.DraftYear, p.DraftTeamCode, p.DraftType,
			p.DraftRound, p.DraftPickOverall, p.EntryYear, p.EntryTeamCode,
			p.SigningBonusAmount, p.SigningBonusCurrency,
			p.SalaryAmount, p.SalaryCurrency,
		); err != nil {
			return 0, fmt.Errorf("mirror player %d: %w", p.ID, err)
		}
	}
	return len(players), nil
}

func extraText(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func (e *Exporter) exportBatting(ctx context.Context, tx *sql.Tx) (int, error) {
	lines, err := e.src.Batting(ctx)
	if err != nil {
		return 0, fmt.Errorf("read batting: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO player_season_batting (
			player_id, season, league, level, team_code, source,
			games, plate_appearances, at_bats, runs, hits, doubles, triples,
			home_runs, rbi, walks, intentional_walks, hbp, strikeouts,
			stolen_bases, caught_stealing, sacrifice_hits, sacrifice_flies,
			gdp, errors, avg, obp, slg, ops, iso, babip, extra_stats
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx,
			l.PlayerID, l.Season, l.League, l.Level, l.TeamCode, l.Source,
			l.Games, l.PlateAppearances, l.AtBats, l.Runs, l.Hits,
			l.Doubles, l.Triples, l.HomeRuns, l.RBI, l.Walks,
			l.IntentionalWalks, l.HitByPitch, l.Strikeouts, l.StolenBases,
			l.CaughtStealing, l.SacrificeHits, l.SacrificeFlies, l.GDP,
			l.Errors, l.AVG, l.OBP, l.SLG, l.OPS, l.ISO, l.BABIP,
			extraText(l.ExtraStats),
		); err != nil {
			return 0, fmt.Errorf("mirror batting %d/%d: %w", l.PlayerID, l.Season, err)
		}
	}
	return len(lines), nil
}

func (e *Exporter) exportPitching(ctx context.Context, tx *sql.Tx) (int, error) {
	lines, err := e.src.Pitching(ctx)
	if err != nil {
		return 0, fmt.Errorf("read pitching: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO player_season_pitching (
			player_id, season, league, level, team_code, source,
			games, games_started, wins, losses, saves, holds, innings_outs,
			hits_allowed, runs_allowed, earned_runs, home_runs_allowed,
			walks_allowed, intentional_walks, hit_batters, strikeouts,
			wild_pitches, balks, era, whip, fip, k_per_nine, bb_per_nine,
			k_per_bb, extra_stats
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx,
			l.PlayerID, l.Season, l.League, l.Level, l.TeamCode, l.Source,
			l.Games, l.GamesStarted, l.Wins, l.Losses, l.Saves, l.Holds,
			l.InningsOuts, l.HitsAllowed, l.RunsAllowed, l.EarnedRuns,
			l.HomeRunsAllowed, l.WalksAllowed, l.IntentionalWalks,
			l.HitBatters, l.Strikeouts, l.WildPitches, l.Balks,
			l.ERA, l.WHIP, l.FIP, l.KPerNine, l.BBPerNine, l.KPerBB,
			extraText(l.ExtraStats),
		); err != nil {
			return 0, fmt.Errorf("mirror pitching %d/%d: %w", l.PlayerID, l.Season, err)
		}
	}
	return len(lines), nil
}

func (e *Exporter) exportFielding(ctx context.Context, tx *sql.Tx) (int, error) {
	lines, err := e.src.Fielding(ctx)
	if err != nil {
		return 0, fmt.Errorf("read fielding: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO player_season_fielding (
			player_id, season, league, level, position, team_code, source,
			games, games_started, innings_outs, errors, pickoffs, putouts,
			assists, double_plays, fielding_pct, extra_stats
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx,
			l.PlayerID, l.Season, l.League, l.Level, l.Position,
			l.TeamCode, l.Source, l.Games, l.GamesStarted, l.InningsOuts,
			l.Errors, l.Pickoffs, l.Putouts, l.Assists, l.DoublePlays,
			l.FieldingPct, extraText(l.ExtraStats),
		); err != nil {
			return 0, fmt.Errorf("mirror fielding %d/%d: %w", l.PlayerID, l.Season, err)
		}
	}
	return len(lines), nil
}

// PGSource reads canonical rows from the primary store.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource creates the Postgres-backed Source.
func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

// Players reads every player identity row.
func (s *PGSource) Players(ctx context.Context) ([]record.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, team_code, back_number, position, throwing_hand,
			batting_hand, height_cm, weight_kg, birth_date,
			draft_year, draft_team_code, draft_type, draft_round,
			draft_pick_overall, entry_year, entry_team_code,
			signing_bonus_amount, signing_bonus_currency,
			salary_amount, salary_currency
		FROM `+config.PlayersTable+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.Player
	for rows.Next() {
		var p record.Player
		if err := rows.Scan(
			&p.ID, &p.Name, &p.TeamCode, &p.BackNumber, &p.Position,
			&p.ThrowingHand, &p.BattingHand, &p.HeightCm, &p.WeightKg,
			&p.BirthDate, &p.DraftYear, &p.DraftTeamCode, &p.DraftType,
			&p.DraftRound, &p.DraftPickOverall, &p.EntryYear,
			&p.EntryTeamCode, &p.SigningBonusAmount, &p.SigningBonusCurrency,
			&p.SalaryAmount, &p.SalaryCurrency,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Batting reads every canonical batting row.
func (s *PGSource) Batting(ctx context.Context) ([]*record.BattingLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, season, league, level, team_code, source,
			games, plate_appearances, at_bats, runs, hits, doubles, triples,
			home_runs, rbi, walks, intentional_walks, hbp, strikeouts,
			stolen_bases, caught_stealing, sacrifice_hits, sacrifice_flies,
			gdp, errors, avg, obp, slg, ops, iso, babip, extra_stats
		FROM `+config.BattingTable+` ORDER BY player_id, season`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*record.BattingLine
	for rows.Next() {
		l := &record.BattingLine{}
		var extra []byte
		if err := rows.Scan(
			&l.PlayerID, &l.Season, &l.League, &l.Level, &l.TeamCode, &l.Source,
			&l.Games, &l.PlateAppearances, &l.AtBats, &l.Runs, &l.Hits,
			&l.Doubles, &l.Triples, &l.HomeRuns, &l.RBI, &l.Walks,
			&l.IntentionalWalks, &l.HitByPitch, &l.Strikeouts, &l.StolenBases,
			&l.CaughtStealing, &l.SacrificeHits, &l.SacrificeFlies, &l.GDP,
			&l.Errors, &l.AVG, &l.OBP, &l.SLG, &l.OPS, &l.ISO, &l.BABIP,
			&extra,
		); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			_ = json.Unmarshal(extra, &l.ExtraStats)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Fielding reads every canonical fielding row.
func (s *PGSource) Fielding(ctx context.Context) ([]*record.FieldingLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, season, league, level, position, team_code, source,
			games, games_started, innings_outs, errors, pickoffs, putouts,
			assists, double_plays, fielding_pct, extra_stats
		FROM `+config.FieldingTable+` ORDER BY player_id, season, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*record.FieldingLine
	for rows.Next() {
		l := &record.FieldingLine{}
		var extra []byte
		if err := rows.Scan(
			&l.PlayerID, &l.Season, &l.League, &l.Level, &l.Position,
			&l.TeamCode, &l.Source, &l.Games, &l.GamesStarted, &l.InningsOuts,
			&l.Errors, &l.Pickoffs, &l.Putouts, &l.Assists, &l.DoublePlays,
			&l.FieldingPct, &extra,
		); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			_ = json.Unmarshal(extra, &l.ExtraStats)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Pitching reads every canonical pitching row.
func (s *PGSource) Pitching(ctx context.Context) ([]*record.PitchingLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, season, league, level, team_code, source,
			games, games_started, wins, losses, saves, holds, innings_outs,
			hits_allowed, runs_allowed, earned_runs, home_runs_allowed,
			walks_allowed, intentional_walks, hit_batters, strikeouts,
			wild_pitches, balks, era, whip, fip, k_per_nine, bb_per_nine,
			k_per_bb, extra_stats
		FROM `+config.PitchingTable+` ORDER BY player_id, season`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*record.PitchingLine
	for rows.Next() {
		l := &record.PitchingLine{}
		var extra []byte
		if err := rows.Scan(
			&l.PlayerID, &l.Season, &l.League, &l.Level, &l.TeamCode, &l.Source,
			&l.Games, &l.GamesStarted, &l.Wins, &l.Losses, &l.Saves, &l.Holds,
			&l.InningsOuts, &l.HitsAllowed, &l.RunsAllowed, &l.EarnedRuns,
			&l.HomeRunsAllowed, &l.WalksAllowed, &l.IntentionalWalks,
			&l.HitBatters, &l.Strikeouts, &l.WildPitches, &l.Balks,
			&l.ERA, &l.WHIP, &l.FIP, &l.KPerNine, &l.BBPerNine, &l.KPerBB,
			&extra,
		); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			_ = json.Unmarshal(extra, &l.ExtraStats)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
