package record

import (
	"strings"

	"github.com/rkdansdlf/kbo-data/internal/parse"
)

// The builder assembles merged row maps (canonical key → raw cell) into
// typed records. Field handling is table-driven: each record type is a
// list of (canonical key, converter, setter) entries, filtered by the era
// profile. Keys outside the profile are schema-level absent; keys in the
// profile but missing or unparseable in the row become nil and are tallied
// so run summaries can surface data-quality drift.

// BuildStats reports what happened to the expected fields of one record.
type BuildStats struct {
	Defaulted int // expected by the profile, nil in the built record
}

type battingField struct {
	key string
	set func(*BattingLine, string) bool // returns true when a value was set
}

func intField(assign func(*BattingLine, *int)) func(*BattingLine, string) bool {
	return func(line *BattingLine, raw string) bool {
		v := parse.Int(raw)
		assign(line, v)
		return v != nil
	}
}

func floatField(assign func(*BattingLine, *float64)) func(*BattingLine, string) bool {
	return func(line *BattingLine, raw string) bool {
		v := parse.Float(raw)
		assign(line, v)
		return v != nil
	}
}

var battingFields = []battingField{
	{"games", intField(func(l *BattingLine, v *int) { l.Games = v })},
	{"plate_appearances", intField(func(l *BattingLine, v *int) { l.PlateAppearances = v })},
	{"at_bats", intField(func(l *BattingLine, v *int) { l.AtBats = v })},
	{"runs", intField(func(l *BattingLine, v *int) { l.Runs = v })},
	{"hits", intField(func(l *BattingLine, v *int) { l.Hits = v })},
	{"doubles", intField(func(l *BattingLine, v *int) { l.Doubles = v })},
	{"triples", intField(func(l *BattingLine, v *int) { l.Triples = v })},
	{"home_runs", intField(func(l *BattingLine, v *int) { l.HomeRuns = v })},
	{"rbi", intField(func(l *BattingLine, v *int) { l.RBI = v })},
	{"walks", intField(func(l *BattingLine, v *int) { l.Walks = v })},
	{"intentional_walks", intField(func(l *BattingLine, v *int) { l.IntentionalWalks = v })},
	{"hbp", intField(func(l *BattingLine, v *int) { l.HitByPitch = v })},
	{"strikeouts", intField(func(l *BattingLine, v *int) { l.Strikeouts = v })},
	{"stolen_bases", intField(func(l *BattingLine, v *int) { l.StolenBases = v })},
	{"caught_stealing", intField(func(l *BattingLine, v *int) { l.CaughtStealing = v })},
	{"sacrifice_hits", intField(func(l *BattingLine, v *int) { l.SacrificeHits = v })},
	{"sacrifice_flies", intField(func(l *BattingLine, v *int) { l.SacrificeFlies = v })},
	{"gdp", intField(func(l *BattingLine, v *int) { l.GDP = v })},
	{"errors", intField(func(l *BattingLine, v *int) { l.Errors = v })},
	{"avg", floatField(func(l *BattingLine, v *float64) { l.AVG = v })},
	{"obp", floatField(func(l *BattingLine, v *float64) { l.OBP = v })},
	{"slg", floatField(func(l *BattingLine, v *float64) { l.SLG = v })},
	{"ops", floatField(func(l *BattingLine, v *float64) { l.OPS = v })},
	{"iso", floatField(func(l *BattingLine, v *float64) { l.ISO = v })},
	{"babip", floatField(func(l *BattingLine, v *float64) { l.BABIP = v })},
}

// identity keys consumed outside the field tables.
var identityKeys = map[string]bool{
	"season": true, "team": true, "player": true, "rank": true,
	"position": true,
}

// BuildBatting builds a canonical batting record from a merged row under
// the given era profile. The season in key must already be parsed by the
// caller (the merger keyed rows on it).
func BuildBatting(row map[string]string, key Key, source string, profile *EraProfile) (*BattingLine, BuildStats) {
	line := &BattingLine{Key: key, Source: source}
	if team, ok := row["team"]; ok {
		line.TeamCode = ResolveTeamCode(team)
	}

	var stats BuildStats
	consumed := make(map[string]bool, len(battingFields))
	for _, f := range battingFields {
		if !profile.Has(f.key) {
			continue
		}
		consumed[f.key] = true
		if !f.set(line, row[f.key]) {
			stats.Defaulted++
		}
	}

	line.ExtraStats = keepRawTeam(collectExtras(row, consumed), row, line.TeamCode)
	return line, stats
}

type pitchingField struct {
	key string
	set func(*PitchingLine, string) bool
}

func pIntField(assign func(*PitchingLine, *int)) func(*PitchingLine, string) bool {
	return func(line *PitchingLine, raw string) bool {
		v := parse.Int(raw)
		assign(line, v)
		return v != nil
	}
}

func pFloatField(assign func(*PitchingLine, *float64)) func(*PitchingLine, string) bool {
	return func(line *PitchingLine, raw string) bool {
		v := parse.Float(raw)
		assign(line, v)
		return v != nil
	}
}

var pitchingFields = []pitchingField{
	{"games", pIntField(func(l *PitchingLine, v *int) { l.Games = v })},
	{"games_started", pIntField(func(l *PitchingLine, v *int) { l.GamesStarted = v })},
	{"wins", pIntField(func(l *PitchingLine, v *int) { l.Wins = v })},
	{"losses", pIntField(func(l *PitchingLine, v *int) { l.Losses = v })},
	{"saves", pIntField(func(l *PitchingLine, v *int) { l.Saves = v })},
	{"holds", pIntField(func(l *PitchingLine, v *int) { l.Holds = v })},
	{"innings", func(l *PitchingLine, raw string) bool {
		v := parse.Outs(raw)
		l.InningsOuts = v
		return v != nil
	}},
	{"hits_allowed", pIntField(func(l *PitchingLine, v *int) { l.HitsAllowed = v })},
	{"runs_allowed", pIntField(func(l *PitchingLine, v *int) { l.RunsAllowed = v })},
	{"earned_runs", pIntField(func(l *PitchingLine, v *int) { l.EarnedRuns = v })},
	{"home_runs_allowed", pIntField(func(l *PitchingLine, v *int) { l.HomeRunsAllowed = v })},
	// On pitching tables 볼넷/사구 denote walks and hit batters allowed.
	{"walks", pIntField(func(l *PitchingLine, v *int) { l.WalksAllowed = v })},
	{"intentional_walks", pIntField(func(l *PitchingLine, v *int) { l.IntentionalWalks = v })},
	{"hbp", pIntField(func(l *PitchingLine, v *int) { l.HitBatters = v })},
	{"strikeouts", pIntField(func(l *PitchingLine, v *int) { l.Strikeouts = v })},
	{"wild_pitches", pIntField(func(l *PitchingLine, v *int) { l.WildPitches = v })},
	{"balks", pIntField(func(l *PitchingLine, v *int) { l.Balks = v })},
	{"era", pFloatField(func(l *PitchingLine, v *float64) { l.ERA = v })},
	{"whip", pFloatField(func(l *PitchingLine, v *float64) { l.WHIP = v })},
	{"fip", pFloatField(func(l *PitchingLine, v *float64) { l.FIP = v })},
	{"k_per_nine", pFloatField(func(l *PitchingLine, v *float64) { l.KPerNine = v })},
	{"bb_per_nine", pFloatField(func(l *PitchingLine, v *float64) { l.BBPerNine = v })},
	{"k_per_bb", pFloatField(func(l *PitchingLine, v *float64) { l.KPerBB = v })},
}

// BuildPitching builds a canonical pitching record from a merged row.
func BuildPitching(row map[string]string, key Key, source string, profile *EraProfile) (*PitchingLine, BuildStats) {
	line := &PitchingLine{Key: key, Source: source}
	if team, ok := row["team"]; ok {
		line.TeamCode = ResolveTeamCode(team)
	}

	var stats BuildStats
	consumed := make(map[string]bool, len(pitchingFields))
	for _, f := range pitchingFields {
		if !profile.Has(f.key) {
			continue
		}
		consumed[f.key] = true
		if !f.set(line, row[f.key]) {
			stats.Defaulted++
		}
	}

	line.ExtraStats = keepRawTeam(collectExtras(row, consumed), row, line.TeamCode)
	return line, stats
}

type fieldingField struct {
	key string
	set func(*FieldingLine, string) bool
}

func dIntField(assign func(*FieldingLine, *int)) func(*FieldingLine, string) bool {
	return func(line *FieldingLine, raw string) bool {
		v := parse.Int(raw)
		assign(line, v)
		return v != nil
	}
}

var fieldingFields = []fieldingField{
	{"games", dIntField(func(l *FieldingLine, v *int) { l.Games = v })},
	{"games_started", dIntField(func(l *FieldingLine, v *int) { l.GamesStarted = v })},
	{"innings", func(l *FieldingLine, raw string) bool {
		v := parse.Outs(raw)
		l.InningsOuts = v
		return v != nil
	}},
	{"errors", dIntField(func(l *FieldingLine, v *int) { l.Errors = v })},
	{"pickoffs", dIntField(func(l *FieldingLine, v *int) { l.Pickoffs = v })},
	{"putouts", dIntField(func(l *FieldingLine, v *int) { l.Putouts = v })},
	{"assists", dIntField(func(l *FieldingLine, v *int) { l.Assists = v })},
	// On defense tables 병살/DP counts double plays turned.
	{"gdp", dIntField(func(l *FieldingLine, v *int) { l.DoublePlays = v })},
	{"fielding_pct", func(l *FieldingLine, raw string) bool {
		v := parse.Float(raw)
		l.FieldingPct = v
		return v != nil
	}},
}

// BuildFielding builds a canonical fielding record from a defense-table
// row. The position cell becomes part of the record's identity; callers
// skip rows whose position resolves empty.
func BuildFielding(row map[string]string, key Key, source string, profile *EraProfile) (*FieldingLine, BuildStats) {
	line := &FieldingLine{Key: key, Source: source}
	line.Position = ResolvePositionCode(row["position"])
	if team, ok := row["team"]; ok {
		line.TeamCode = ResolveTeamCode(team)
	}

	var stats BuildStats
	consumed := make(map[string]bool, len(fieldingFields))
	for _, f := range fieldingFields {
		if !profile.Has(f.key) {
			continue
		}
		consumed[f.key] = true
		if !f.set(line, row[f.key]) {
			stats.Defaulted++
		}
	}

	line.ExtraStats = keepRawTeam(collectExtras(row, consumed), row, line.TeamCode)
	return line, stats
}

func collectExtras(row map[string]string, consumed map[string]bool) map[string]string {
	var extra map[string]string
	for k, v := range row {
		if consumed[k] || identityKeys[k] || v == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}
	return extra
}

// keepRawTeam stashes an unresolvable team display name in extras; team
// is otherwise an identity key that collectExtras never copies.
func keepRawTeam(extra map[string]string, row map[string]string, code *string) map[string]string {
	if code != nil {
		return extra
	}
	raw := strings.Join(strings.Fields(row["team"]), " ")
	if raw == "" || raw == "-" {
		return extra
	}
	if extra == nil {
		extra = make(map[string]string)
	}
	extra["team"] = raw
	return extra
}
