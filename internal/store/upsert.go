package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkdansdlf/kbo-data/internal/config"
	"github.com/rkdansdlf/kbo-data/internal/record"
)

// WriteResult reports whether an upsert inserted a new row or updated an
// existing one.
type WriteResult struct {
	Inserted bool
}

// ConstraintError marks a write rejected by a sink constraint on a
// non-key column (e.g. a rate check). The offending record is skipped and
// the batch continues.
type ConstraintError struct {
	Key record.Key
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation for player=%d season=%d league=%s level=%s: %v",
		e.Key.PlayerID, e.Key.Season, e.Key.League, e.Key.Level, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// wrapWriteErr classifies Postgres integrity errors (class 23) as
// ConstraintError so callers can skip the single record.
func wrapWriteErr(key record.Key, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
		return &ConstraintError{Key: key, Err: err}
	}
	return err
}

// Writer performs idempotent upserts against the primary store. Atomicity
// per key is the database's native ON CONFLICT primitive — concurrent
// writers never read-then-write.
type Writer struct {
	pool *pgxpool.Pool
}

// NewWriter creates a Writer over the shared pool.
func NewWriter(pool *pgxpool.Pool) *Writer {
	return &Writer{pool: pool}
}

func extraJSON(m map[string]string) []byte {
	if len(m) == 0 {
		return []byte("{}")
	}
	b, _ := json.Marshal(m)
	return b
}

// UpsertPlayer writes a subject identity record. Profile fields only fill
// gaps (COALESCE): identity attributes arrive from several page types and
// a sparse source must not blank out a richer earlier one.
func (w *Writer) UpsertPlayer(ctx context.Context, p record.Player) error {
	_, err := w.pool.Exec(ctx, `
		INSERT INTO `+config.PlayersTable+` (
			id, name, team_code, back_number, position, throwing_hand,
			batting_hand, height_cm, weight_kg, birth_date, is_active,
			is_foreign, draft_year, draft_team_code, draft_type, draft_round,
			draft_pick_overall, entry_year, entry_team_code,
			signing_bonus_amount, signing_bonus_currency,
			salary_amount, salary_currency
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, `+config.PlayersTable+`.name),
			team_code = COALESCE(EXCLUDED.team_code, `+config.PlayersTable+`.team_code),
			back_number = COALESCE(EXCLUDED.back_number, `+config.PlayersTable+`.back_number),
			position = COALESCE(EXCLUDED.position, `+config.PlayersTable+`.position),
			throwing_hand = COALESCE(EXCLUDED.throwing_hand, `+config.PlayersTable+`.throwing_hand),
			batting_hand = COALESCE(EXCLUDED.batting_hand, `+config.PlayersTable+`.batting_hand),
			height_cm = COALESCE(EXCLUDED.height_cm, `+config.PlayersTable+`.height_cm),
			weight_kg = COALESCE(EXCLUDED.weight_kg, `+config.PlayersTable+`.weight_kg),
			birth_date = COALESCE(EXCLUDED.birth_date, `+config.PlayersTable+`.birth_date),
			is_active = COALESCE(EXCLUDED.is_active, `+config.PlayersTable+`.is_active),
			is_foreign = COALESCE(EXCLUDED.is_foreign, `+config.PlayersTable+`.is_foreign),
			draft_year = COALESCE(EXCLUDED.draft_year, `+config.PlayersTable+`.draft_year),
			draft_team_code = COALESCE(EXCLUDED.draft_team_code, `+config.PlayersTable+`.draft_team_code),
			draft_type = COALESCE(EXCLUDED.draft_type, `+config.PlayersTable+`.draft_type),
			draft_round = COALESCE(EXCLUDED.draft_round, `+config.PlayersTable+`.draft_round),
			draft_pick_overall = COALESCE(EXCLUDED.draft_pick_overall, `+config.PlayersTable+`.draft_pick_overall),
			entry_year = COALESCE(EXCLUDED.entry_year, `+config.PlayersTable+`.entry_year),
			entry_team_code = COALESCE(EXCLUDED.entry_team_code, `+config.PlayersTable+`.entry_team_code),
			signing_bonus_amount = COALESCE(EXCLUDED.signing_bonus_amount, `+config.PlayersTable+`.signing_bonus_amount),
			signing_bonus_currency = COALESCE(EXCLUDED.signing_bonus_currency, `+config.PlayersTable+`.signing_bonus_currency),
			salary_amount = COALESCE(EXCLUDED.salary_amount, `+config.PlayersTable+`.salary_amount),
			salary_currency = COALESCE(EXCLUDED.salary_currency, `+config.PlayersTable+`.salary_currency),
			updated_at = NOW()`,
		p.ID, p.Name, p.TeamCode, p.BackNumber, p.Position, p.ThrowingHand,
		p.BattingHand, p.HeightCm, p.WeightKg, p.BirthDate, p.IsActive,
		p.IsForeign, p.DraftYear, p.DraftTeamCode, p.DraftType, p.DraftRound,
		p.DraftPickOverall, p.EntryYear, p.EntryTeamCode,
		p.SigningBonusAmount, p.SigningBonusCurrency,
		p.SalaryAmount, p.SalaryCurrency,
	)
	return err
}

// UpsertBatting writes a canonical batting record. Non-key columns are
// fully replaced: a re-crawl is authoritative for every field it reports,
// including NULLs. xmax = 0 distinguishes insert from update in one round
// trip.
func (w *Writer) UpsertBatting(ctx context.Context, line *record.BattingLine) (WriteResult, error) {
	var inserted bool
	err := w.pool.QueryRow(ctx, `
		INSERT INTO `+config.BattingTable+` (
			player_id, season, league, level, team_code, source,
			games, plate_appearances, at_bats, runs, hits, doubles, triples,
			home_runs, rbi, walks, intentional_walks, hbp, strikeouts,
			stolen_bases, caught_stealing, sacrifice_hits, sacrifice_flies,
			gdp, errors, avg, obp, slg, ops, iso, babip, extra_stats
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32)
		ON CONFLICT (player_id, season, league, level) DO UPDATE SET
			team_code = EXCLUDED.team_code,
			source = EXCLUDED.source,
			games = EXCLUDED.games,
			plate_appearances = EXCLUDED.plate_appearances,
			at_bats = EXCLUDED.at_bats,
			runs = EXCLUDED.runs,
			hits = EXCLUDED.hits,
			doubles = EXCLUDED.doubles,
			triples = EXCLUDED.triples,
			home_runs = EXCLUDED.home_runs,
			rbi = EXCLUDED.rbi,
			walks = EXCLUDED.walks,
			intentional_walks = EXCLUDED.intentional_walks,
			hbp = EXCLUDED.hbp,
			strikeouts = EXCLUDED.strikeouts,
			stolen_bases = EXCLUDED.stolen_bases,
			caught_stealing = EXCLUDED.caught_stealing,
			sacrifice_hits = EXCLUDED.sacrifice_hits,
			sacrifice_flies = EXCLUDED.sacrifice_flies,
			gdp = EXCLUDED.gdp,
			errors = EXCLUDED.errors,
			avg = EXCLUDED.avg,
			obp = EXCLUDED.obp,
			slg = EXCLUDED.slg,
			ops = EXCLUDED.ops,
			iso = EXCLUDED.iso,
			babip = EXCLUDED.babip,
			extra_stats = EXCLUDED.extra_stats,
			updated_at = NOW()
		RETURNING (xmax = 0)`,
		line.PlayerID, line.Season, line.League, line.Level, line.TeamCode, line.Source,
		line.Games, line.PlateAppearances, line.AtBats, line.Runs, line.Hits,
		line.Doubles, line.Triples, line.HomeRuns, line.RBI, line.Walks,
		line.IntentionalWalks, line.HitByPitch, line.Strikeouts,
		line.StolenBases, line.CaughtStealing, line.SacrificeHits,
		line.SacrificeFlies, line.GDP, line.Errors, line.AVG, line.OBP,
		line.SLG, line.OPS, line.ISO, line.BABIP, extraJSON(line.ExtraStats),
	).Scan(&inserted)
	if err != nil {
		return WriteResult{}, wrapWriteErr(line.Key, err)
	}
	return WriteResult{Inserted: inserted}, nil
}

// UpsertPitching writes a canonical pitching record with the same full
// replace semantics as UpsertBatting.
func (w *Writer) UpsertPitching(ctx context.Context, line *record.PitchingLine) (WriteResult, error) {
	var inserted bool
	err := w.pool.QueryRow(ctx, `
		INSERT INTO `+config.PitchingTable+` (
			player_id, season, league, level, team_code, source,
			games, games_started, wins, losses, saves, holds, innings_outs,
			hits_allowed, runs_allowed, earned_runs, home_runs_allowed,
			walks_allowed, intentional_walks, hit_batters, strikeouts,
			wild_pitches, balks, era, whip, fip, k_per_nine, bb_per_nine,
			k_per_bb, extra_stats
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30)
		ON CONFLICT (player_id, season, league, level) DO UPDATE SET
			team_code = EXCLUDED.team_code,
			source = EXCLUDED.source,
			games = EXCLUDED.games,
			games_started = EXCLUDED.games_started,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			saves = EXCLUDED.saves,
			holds = EXCLUDED.holds,
			innings_outs = EXCLUDED.innings_outs,
			hits_allowed = EXCLUDED.hits_allowed,
			runs_allowed = EXCLUDED.runs_allowed,
			earned_runs = EXCLUDED.earned_runs,
			home_runs_allowed = EXCLUDED.home_runs_allowed,
			walks_allowed = EXCLUDED.walks_allowed,
			intentional_walks = EXCLUDED.intentional_walks,
			hit_batters = EXCLUDED.hit_batters,
			strikeouts = EXCLUDED.strikeouts,
			wild_pitches = EXCLUDED.wild_pitches,
			balks = EXCLUDED.balks,
			era = EXCLUDED.era,
			whip = EXCLUDED.whip,
			fip = EXCLUDED.fip,
			k_per_nine = EXCLUDED.k_per_nine,
			bb_per_nine = EXCLUDED.bb_per_nine,
			k_per_bb = EXCLUDED.k_per_bb,
			extra_stats = EXCLUDED.extra_stats,
			updated_at = NOW()
		RETURNING (xmax = 0)`,
		line.PlayerID, line.Season, line.League, line.Level, line.TeamCode, line.Source,
		line.Games, line.GamesStarted, line.Wins, line.Losses, line.Saves,
		line.Holds, line.InningsOuts, line.HitsAllowed, line.RunsAllowed,
		line.EarnedRuns, line.HomeRunsAllowed, line.WalksAllowed,
		line.IntentionalWalks, line.HitBatters, line.Strikeouts,
		line.WildPitches, line.Balks, line.ERA, line.WHIP, line.FIP,
		line.KPerNine, line.BBPerNine, line.KPerBB, extraJSON(line.ExtraStats),
	).Scan(&inserted)
	if err != nil {
		return WriteResult{}, wrapWriteErr(line.Key, err)
	}
	return WriteResult{Inserted: inserted}, nil
}

// UpsertFielding writes a canonical fielding record. The natural key
// gains the position column: one row per position a player fielded that
// season.
func (w *Writer) UpsertFielding(ctx context.Context, line *record.FieldingLine) (WriteResult, error) {
	var inserted bool
	err := w.pool.QueryRow(ctx, `
		INSERT INTO `+config.FieldingTable+` (
			player_id, season, league, level, position, team_code, source,
			games, games_started, innings_outs, errors, pickoffs, putouts,
			assists, double_plays, fielding_pct, extra_stats
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (player_id, season, league, level, position) DO UPDATE SET
			team_code = EXCLUDED.team_code,
			source = EXCLUDED.source,
			games = EXCLUDED.games,
			games_started = EXCLUDED.games_started,
			innings_outs = EXCLUDED.innings_outs,
			errors = EXCLUDED.errors,
			pickoffs = EXCLUDED.pickoffs,
			putouts = EXCLUDED.putouts,
			assists = EXCLUDED.assists,
			double_plays = EXCLUDED.double_plays,
			fielding_pct = EXCLUDED.fielding_pct,
			extra_stats = EXCLUDED.extra_stats,
			updated_at = NOW()
		RETURNING (xmax = 0)`,
		line.PlayerID, line.Season, line.League, line.Level, line.Position,
		line.TeamCode, line.Source, line.Games, line.GamesStarted,
		line.InningsOuts, line.Errors, line.Pickoffs, line.Putouts,
		line.Assists, line.DoublePlays, line.FieldingPct,
		extraJSON(line.ExtraStats),
	).Scan(&inserted)
	if err != nil {
		return WriteResult{}, wrapWriteErr(line.Key, err)
	}
	return WriteResult{Inserted: inserted}, nil
}
