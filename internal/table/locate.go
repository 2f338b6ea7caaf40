package table

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table location runs ordered fallback strategies: section-label proximity
// first, header-superset second. A nil result means "no data for this
// subject/section" — a normal business outcome (rookies have no Futures
// history), never an error.

// Find locates the table for one record type. sectionLabel may be empty to
// skip the label strategy. required is a set of canonical header keys the
// table must carry for the header-superset fallback.
func Find(page *Page, required []string, sectionLabel string) *RawTable {
	if sectionLabel != "" {
		if t := findBySection(page, sectionLabel); t != nil && len(t.Headers) > 0 {
			return t
		}
	}
	return findByHeaders(page.Tables, required)
}

// findBySection scans the document in order, arming on the first heading,
// tab, or link whose text contains label, and returning the first table
// that follows it.
func findBySection(page *Page, label string) *RawTable {
	if page.doc == nil {
		return nil
	}

	var found *RawTable
	armed := false
	tableIdx := 0
	page.doc.Find("h1, h2, h3, h4, strong, a, span, li, caption, table").Each(func(_ int, sel *goquery.Selection) {
		if found != nil {
			return
		}
		if goquery.NodeName(sel) == "table" {
			if armed && tableIdx < len(page.Tables) {
				t := page.Tables[tableIdx]
				found = &t
			}
			tableIdx++
			return
		}
		if !armed && strings.Contains(cellText(sel), label) {
			armed = true
		}
	})
	return found
}

// findByHeaders returns the first table whose normalized headers contain
// every required key. Header structure outlives the site's CSS churn.
func findByHeaders(tables []RawTable, required []string) *RawTable {
	if len(required) == 0 {
		return nil
	}
	for i := range tables {
		if tables[i].HasAll(required) {
			return &tables[i]
		}
	}
	return nil
}

// Stat columns per record type for the header-superset strategy. A
// season-keyed table carrying none of these is not a stat table — the
// pages mix rankings, awards, and schedule tables that also key on the
// season column — and must never reach the merger.
var (
	BattingColumns = []string{
		"plate_appearances", "at_bats", "runs", "hits", "doubles", "triples",
		"home_runs", "rbi", "walks", "intentional_walks", "hbp", "strikeouts",
		"stolen_bases", "caught_stealing", "sacrifice_hits", "sacrifice_flies",
		"gdp", "avg", "obp", "slg", "ops",
	}
	PitchingColumns = []string{
		"games_started", "wins", "losses", "saves", "holds", "innings",
		"hits_allowed", "runs_allowed", "earned_runs", "home_runs_allowed",
		"walks", "hbp", "strikeouts", "wild_pitches", "balks", "era", "whip",
	}
	FieldingColumns = []string{
		"games_started", "innings", "errors", "pickoffs", "putouts",
		"assists", "fielding_pct",
	}
)

// StatTables returns the page's tables that key on a season column and
// carry at least one of the record type's stat columns, in document
// order. On a dedicated record page the URL names the type, so this is
// the only filter needed before merging.
func StatTables(page *Page, statColumns []string) []RawTable {
	var out []RawTable
	for _, t := range page.Tables {
		set := t.HeaderSet()
		if set["season"] && anyKey(set, statColumns) {
			out = append(out, t)
		}
	}
	return out
}

// Keyword sets that distinguish hitter from pitcher stat tables on profile
// pages, where both appear without reliable section markup.
var (
	hitterKeys  = []string{"at_bats", "hits", "avg", "rbi", "plate_appearances"}
	pitcherKeys = []string{"era", "whip", "innings", "wins", "losses", "earned_runs"}

	hitterHints  = []string{"타율", "타격", "타자", "hitter", "batting"}
	pitcherHints = []string{"투수", "투구", "pitcher", "pitching", "평균자책"}
)

// Classify splits a profile page's tables into hitter and pitcher groups.
// Header keywords decide first; tables with unrecognizable headers fall
// back to caption hints. Tables matching neither are dropped.
func Classify(tables []RawTable) (hitters, pitchers []RawTable) {
	for _, t := range tables {
		set := t.HeaderSet()
		if anyKey(set, hitterKeys) {
			hitters = append(hitters, t)
			continue
		}
		if anyKey(set, pitcherKeys) {
			pitchers = append(pitchers, t)
			continue
		}

		caption := strings.ToLower(t.Caption)
		switch {
		case containsAny(caption, hitterHints):
			hitters = append(hitters, t)
		case containsAny(caption, pitcherHints):
			pitchers = append(pitchers, t)
		}
	}
	return hitters, pitchers
}

func anyKey(set map[string]bool, keys []string) bool {
	for _, k := range keys {
		if set[k] {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
