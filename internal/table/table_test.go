package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const battingPageHTML = `
<html><body>
<h3>정규시즌 기록</h3>
<table>
  <caption>기본 기록</caption>
  <thead><tr><th>연도</th><th>팀명</th><th>AVG</th><th>G</th><th>AB</th><th>H</th><th>2B</th><th>3B</th><th>HR</th></tr></thead>
  <tbody>
    <tr><td>2023</td><td>두산</td><td>0.300</td><td>100</td><td>400</td><td>120</td><td>20</td><td>2</td><td>10</td></tr>
    <tr><td>통산</td><td>-</td><td>0.295</td><td>800</td><td>3000</td><td>885</td><td>150</td><td>12</td><td>80</td></tr>
  </tbody>
</table>
<table>
  <caption>세부 기록</caption>
  <thead><tr><th>연도</th><th>BB</th><th>HBP</th><th>SO</th></tr></thead>
  <tbody>
    <tr><td>2023</td><td>40</td><td>5</td><td>80</td></tr>
    <tr><td>합계</td><td>300</td><td>40</td><td>600</td></tr>
  </tbody>
</table>
</body></html>`

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "season", NormalizeHeader("연도"))
	assert.Equal(t, "season", NormalizeHeader(" 년도 "))
	assert.Equal(t, "season", NormalizeHeader("YEAR"))
	assert.Equal(t, "at_bats", NormalizeHeader("AB"))
	assert.Equal(t, "at_bats", NormalizeHeader("타수"))
	assert.Equal(t, "era", NormalizeHeader("평균자책"))
	assert.Equal(t, "putouts", NormalizeHeader("자살"))
	assert.Equal(t, "fielding_pct", NormalizeHeader("FPCT"))

	// Unknown headers pass through cleaned, never error.
	assert.Equal(t, "WAR+", NormalizeHeader("  WAR+ \n"))
}

func TestSynonymCoverage(t *testing.T) {
	// Every pair in the synonym table must round through NormalizeHeader.
	for raw, canonical := range Synonyms() {
		assert.Equal(t, canonical, NormalizeHeader(raw), "raw=%q", raw)
	}
}

func TestParsePage(t *testing.T) {
	page, err := ParsePage(battingPageHTML)
	require.NoError(t, err)
	require.Len(t, page.Tables, 2)

	basic := page.Tables[0]
	assert.Equal(t, "기본 기록", basic.Caption)
	assert.Equal(t,
		[]string{"season", "team", "avg", "games", "at_bats", "hits", "doubles", "triples", "home_runs"},
		basic.NormalizedHeaders())
	assert.Len(t, basic.Rows, 2)
}

func TestParsePageHeaderlessTable(t *testing.T) {
	page, err := ParsePage(`<table>
		<tr><td>연도</td><td>AB</td></tr>
		<tr><td>1995</td><td>388</td></tr>
	</table>`)
	require.NoError(t, err)
	require.Len(t, page.Tables, 1)
	assert.Equal(t, []string{"season", "at_bats"}, page.Tables[0].NormalizedHeaders())
	require.Len(t, page.Tables[0].Rows, 1)
	assert.Equal(t, "1995", page.Tables[0].Rows[0][0])
}

func TestDictRowsSkipsStructuralAnomalies(t *testing.T) {
	tbl := RawTable{
		Headers: []string{"연도", "AB", "H"},
		Rows: [][]string{
			{"2023", "400", "120"},
			{"2022", "380"}, // short row
		},
	}
	rows, skipped := tbl.DictRows(nil)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "400", rows[0]["at_bats"])
}

func TestFindBySectionLabel(t *testing.T) {
	page, err := ParsePage(battingPageHTML)
	require.NoError(t, err)

	got := Find(page, nil, "정규시즌")
	require.NotNil(t, got)
	assert.Equal(t, "기본 기록", got.Caption)
}

func TestFindByHeaderSuperset(t *testing.T) {
	page, err := ParsePage(battingPageHTML)
	require.NoError(t, err)

	got := Find(page, []string{"season", "walks", "hbp"}, "")
	require.NotNil(t, got)
	assert.Equal(t, "세부 기록", got.Caption)

	// No match is a no-data outcome, not an error.
	assert.Nil(t, Find(page, []string{"season", "era"}, ""))
	assert.Nil(t, Find(page, []string{"season", "era"}, "없는 섹션"))
}

func TestMergeJoinsByKeyAndDropsAggregates(t *testing.T) {
	page, err := ParsePage(battingPageHTML)
	require.NoError(t, err)

	merged, _ := Merge(page.Tables[0], page.Tables[1], "season", nil)
	require.Len(t, merged, 1)

	row := merged[0]
	assert.Equal(t, "2023", row["season"])
	assert.Equal(t, "400", row["at_bats"])
	assert.Equal(t, "40", row["walks"])
	assert.Equal(t, "5", row["hbp"])
	assert.Equal(t, "80", row["strikeouts"])
}

func TestMergeLeftTableWinsOnCollision(t *testing.T) {
	left := RawTable{Headers: []string{"연도", "G"}, Rows: [][]string{{"2020", "144"}}}
	right := RawTable{Headers: []string{"연도", "G", "BB"}, Rows: [][]string{{"2020", "100", "30"}}}

	merged, _ := Merge(left, right, "season", nil)
	require.Len(t, merged, 1)
	assert.Equal(t, "144", merged[0]["games"])
	assert.Equal(t, "30", merged[0]["walks"])
}

func TestMergeKeepsRightOnlyRows(t *testing.T) {
	left := RawTable{Headers: []string{"연도", "AB"}, Rows: [][]string{{"2020", "300"}}}
	right := RawTable{Headers: []string{"연도", "BB"}, Rows: [][]string{{"2019", "25"}, {"2020", "30"}}}

	merged, _ := Merge(left, right, "season", nil)
	require.Len(t, merged, 2)
	assert.Equal(t, "2020", merged[0]["season"])
	assert.Equal(t, "2019", merged[1]["season"])
}

func TestStatTablesFilterBySeasonAndStatColumns(t *testing.T) {
	page, err := ParsePage(battingPageHTML + `<table>
		<thead><tr><th>공지</th></tr></thead>
		<tbody><tr><td>안내문</td></tr></tbody>
	</table>`)
	require.NoError(t, err)
	require.Len(t, page.Tables, 3)

	stat := StatTables(page, BattingColumns)
	require.Len(t, stat, 2)
	assert.Equal(t, "기본 기록", stat[0].Caption)

	// No table on a batting page carries pitching columns.
	assert.Empty(t, StatTables(page, PitchingColumns))
}

func TestStatTablesExcludeSeasonKeyedNonStatTables(t *testing.T) {
	// Ranking and awards tables key on the season column too; carrying no
	// stat column keeps them away from the merger.
	page, err := ParsePage(`<table>
		<thead><tr><th>연도</th><th>순위</th><th>G</th></tr></thead>
		<tbody><tr><td>2023</td><td>3</td><td>144</td></tr></tbody>
	</table>` + battingPageHTML)
	require.NoError(t, err)
	require.Len(t, page.Tables, 3)

	stat := StatTables(page, BattingColumns)
	require.Len(t, stat, 2)
	assert.Equal(t, "기본 기록", stat[0].Caption)
	assert.Equal(t, "세부 기록", stat[1].Caption)
}

func TestClassify(t *testing.T) {
	hitter := RawTable{Headers: []string{"연도", "타수", "안타", "타율"}}
	pitcher := RawTable{Headers: []string{"연도", "이닝", "ERA", "WHIP"}}
	hinted := RawTable{Caption: "통산 투수 기록", Headers: []string{"연도", "기타"}}
	noise := RawTable{Headers: []string{"공지"}}

	hitters, pitchers := Classify([]RawTable{hitter, pitcher, hinted, noise})
	assert.Len(t, hitters, 1)
	assert.Len(t, pitchers, 2)
}
