package table

import "strings"

// headerSynonyms maps every observed header spelling (Korean and English,
// after whitespace collapse and lower-casing) to its canonical key.
// Era drift is handled here by data, never by parser control flow: a new
// spelling on the site is a one-line addition.
//
// Keys that change meaning between batting and pitching tables ("안타" vs
// "피안타") stay distinct; the record builder maps canonical keys to columns
// per record type.
var headerSynonyms = map[string]string{
	// Row identity
	"연도": "season", "년도": "season", "시즌": "season", "year": "season",
	"팀명": "team", "팀": "team", "team": "team", "소속": "team",
	"선수명": "player", "선수": "player", "player": "player",
	"순위": "rank", "rank": "rank",

	// Shared counting
	"경기": "games", "출장": "games", "출장수": "games", "g": "games",
	"삼진": "strikeouts", "so": "strikeouts", "탈삼진": "strikeouts",
	"고의4구": "intentional_walks", "ibb": "intentional_walks",

	// Batting
	"타석": "plate_appearances", "pa": "plate_appearances",
	"타수": "at_bats", "ab": "at_bats",
	"득점": "runs", "r": "runs",
	"안타": "hits", "h": "hits",
	"2루타": "doubles", "2b": "doubles",
	"3루타": "triples", "3b": "triples",
	"홈런": "home_runs", "hr": "home_runs",
	"타점": "rbi", "rbi": "rbi",
	"볼넷": "walks", "bb": "walks",
	"사구": "hbp", "hbp": "hbp", "사구(hbp)": "hbp",
	"도루": "stolen_bases", "sb": "stolen_bases",
	"도실": "caught_stealing", "도루실패": "caught_stealing", "cs": "caught_stealing",
	"희타": "sacrifice_hits", "희생번트": "sacrifice_hits", "sh": "sacrifice_hits",
	"희비": "sacrifice_flies", "희생플라이": "sacrifice_flies", "sf": "sacrifice_flies",
	"병살": "gdp", "병살타": "gdp", "gdp": "gdp", "gidp": "gdp",
	"실책": "errors", "e": "errors",
	"타율": "avg", "avg": "avg",
	"출루율": "obp", "obp": "obp",
	"장타율": "slg", "slg": "slg",
	"ops": "ops",
	"iso": "iso",
	"babip": "babip",

	// Pitching
	"선발": "games_started", "gs": "games_started",
	"승": "wins", "w": "wins",
	"패": "losses", "l": "losses",
	"세": "saves", "세이브": "saves", "sv": "saves",
	"홀드": "holds", "hld": "holds", "hold": "holds",
	"이닝": "innings", "ip": "innings",
	"피안타": "hits_allowed", "ha": "hits_allowed",
	"실점": "runs_allowed", "ra": "runs_allowed",
	"자책": "earned_runs", "자책점": "earned_runs", "er": "earned_runs",
	"피홈런": "home_runs_allowed",
	"폭투": "wild_pitches", "wp": "wild_pitches",
	"보크": "balks", "bk": "balks",
	"평균자책": "era", "평균자책점": "era", "era": "era",
	"whip": "whip",
	"fip": "fip",
	"k/9": "k_per_nine",
	"bb/9": "bb_per_nine",
	"k/bb": "k_per_bb",

	// Fielding (defense tables; 병살/DP shares the gdp key and the record
	// builder reads it as double plays turned)
	"포지션": "position", "pos": "position",
	"자살": "putouts", "po": "putouts",
	"보살": "assists", "a": "assists",
	"견제사": "pickoffs", "pko": "pickoffs",
	"수비율": "fielding_pct", "fpct": "fielding_pct",
	"dp": "gdp",
}

// NormalizeHeader maps a raw column header to its canonical key. Lookup is
// case- and whitespace-insensitive. Unknown headers return the cleaned
// token verbatim so callers can still use them as signals (an unrecognized
// header is not fatal).
func NormalizeHeader(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if canonical, ok := headerSynonyms[strings.ToLower(cleaned)]; ok {
		return canonical
	}
	return cleaned
}

// Synonyms exposes a copy of the synonym table for coverage tests and
// operator tooling.
func Synonyms() map[string]string {
	out := make(map[string]string, len(headerSynonyms))
	for k, v := range headerSynonyms {
		out[k] = v
	}
	return out
}
