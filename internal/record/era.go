package record

// Era profiles capture which fields a given page era exposes. The site
// reworked its stat tables for the 2002 season: legacy layouts carry a
// reduced column set, modern layouts add plate discipline and rate stats.
// Postseason and exhibition tables expose the legacy set regardless of
// year. The builder parameterizes entirely off these objects — there are
// no year conditionals anywhere in parsing code.

// ModernLayoutSince is the first season rendered with the modern column
// set for primary-league regular-season tables.
const ModernLayoutSince = 2002

// EraProfile names an expected-field set for one record type and era.
// A canonical key absent from Fields is schema-level absent for records
// built under this profile: it is not stored at all, not stored as nil.
type EraProfile struct {
	Name   string
	Fields map[string]bool
}

// Has reports whether the profile expects the canonical key.
func (p *EraProfile) Has(key string) bool {
	return p.Fields[key]
}

func fieldSet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

var battingLegacy = &EraProfile{
	Name: "batting-legacy",
	Fields: fieldSet(
		"games", "plate_appearances", "at_bats", "hits", "doubles",
		"triples", "home_runs", "rbi", "stolen_bases", "caught_stealing",
		"walks", "hbp", "strikeouts", "gdp", "errors", "avg",
	),
}

var battingModern = &EraProfile{
	Name: "batting-modern",
	Fields: fieldSet(
		"games", "plate_appearances", "at_bats", "runs", "hits", "doubles",
		"triples", "home_runs", "rbi", "walks", "intentional_walks", "hbp",
		"strikeouts", "stolen_bases", "caught_stealing", "sacrifice_hits",
		"sacrifice_flies", "gdp", "errors",
		"avg", "obp", "slg", "ops", "iso", "babip",
	),
}

var pitchingLegacy = &EraProfile{
	Name: "pitching-legacy",
	Fields: fieldSet(
		"games", "games_started", "wins", "losses", "saves", "innings",
		"hits_allowed", "runs_allowed", "earned_runs", "home_runs_allowed",
		"walks", "hbp", "strikeouts", "wild_pitches", "balks", "era",
	),
}

var pitchingModern = &EraProfile{
	Name: "pitching-modern",
	Fields: fieldSet(
		"games", "games_started", "wins", "losses", "saves", "holds",
		"innings", "hits_allowed", "runs_allowed", "earned_runs",
		"home_runs_allowed", "walks", "intentional_walks", "hbp",
		"strikeouts", "wild_pitches", "balks",
		"era", "whip", "fip", "k_per_nine", "bb_per_nine", "k_per_bb",
	),
}

var fieldingStandard = &EraProfile{
	Name: "fielding-standard",
	Fields: fieldSet(
		"games", "games_started", "innings", "errors", "pickoffs",
		"putouts", "assists", "gdp", "fielding_pct",
	),
}

// BattingProfile selects the era profile for a batting record. Pure
// function of (season, league): postseason and exhibition tables never
// adopted the modern layout.
func BattingProfile(season int, league string) *EraProfile {
	if season >= ModernLayoutSince && (league == LeagueRegular || league == LeagueFutures) {
		return battingModern
	}
	return battingLegacy
}

// PitchingProfile selects the era profile for a pitching record.
func PitchingProfile(season int, league string) *EraProfile {
	if season >= ModernLayoutSince && (league == LeagueRegular || league == LeagueFutures) {
		return pitchingModern
	}
	return pitchingLegacy
}

// FieldingProfile selects the era profile for a fielding record. Defense
// tables kept one layout across every era and tier.
func FieldingProfile(season int, league string) *EraProfile {
	return fieldingStandard
}
