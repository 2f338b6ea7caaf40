package mirror

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkdansdlf/kbo-data/internal/record"
)

type fakeSource struct {
	players  []record.Player
	batting  []*record.BattingLine
	pitching []*record.PitchingLine
	fielding []*record.FieldingLine
}

func (s *fakeSource) Players(context.Context) ([]record.Player, error) { return s.players, nil }
func (s *fakeSource) Batting(context.Context) ([]*record.BattingLine, error) {
	return s.batting, nil
}
func (s *fakeSource) Pitching(context.Context) ([]*record.PitchingLine, error) {
	return s.pitching, nil
}
func (s *fakeSource) Fielding(context.Context) ([]*record.FieldingLine, error) {
	return s.fielding, nil
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }

func sampleSource() *fakeSource {
	return &fakeSource{
		players: []record.Player{
			{ID: 100, Name: "김민수", TeamCode: strp("OB"), HeightCm: intp(185)},
		},
		batting: []*record.BattingLine{
			{
				Key:        record.Key{PlayerID: 100, Season: 2023, League: record.LeagueRegular, Level: record.LevelKBO1},
				Source:     record.SourceCrawler,
				TeamCode:   strp("OB"),
				AtBats:     intp(500),
				Hits:       intp(150),
				AVG:        floatp(0.300),
				ExtraStats: map[string]string{"득점권타율": "0.325"},
			},
		},
		pitching: []*record.PitchingLine{
			{
				Key:         record.Key{PlayerID: 200, Season: 2024, League: record.LeagueRegular, Level: record.LevelKBO1},
				Source:      record.SourceCrawler,
				InningsOuts: intp(463),
				ERA:         floatp(3.032),
			},
		},
		fielding: []*record.FieldingLine{
			{
				Key:         record.Key{PlayerID: 100, Season: 2023, League: record.LeagueRegular, Level: record.LevelKBO1},
				Position:    "SS",
				Source:      record.SourceCrawler,
				TeamCode:    strp("OB"),
				Putouts:     intp(180),
				Assists:     intp(320),
				Errors:      intp(12),
				FieldingPct: floatp(0.977),
			},
		},
	}
}

func TestExportWritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	exp := NewExporter(sampleSource(), nil)

	result, err := exp.Export(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ExportResult{Players: 1, Batting: 1, Pitching: 1, Fielding: 1}, result)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM players WHERE id = 100`).Scan(&name))
	assert.Equal(t, "김민수", name)

	var avg float64
	var extra string
	require.NoError(t, db.QueryRow(`
		SELECT avg, extra_stats FROM player_season_batting
		WHERE player_id = 100 AND season = 2023`).Scan(&avg, &extra))
	assert.InDelta(t, 0.300, avg, 1e-9)
	assert.Contains(t, extra, "득점권타율")

	var outs int
	require.NoError(t, db.QueryRow(`
		SELECT innings_outs FROM player_season_pitching
		WHERE player_id = 200 AND season = 2024`).Scan(&outs))
	assert.Equal(t, 463, outs)

	var pct float64
	require.NoError(t, db.QueryRow(`
		SELECT fielding_pct FROM player_season_fielding
		WHERE player_id = 100 AND season = 2023 AND position = 'SS'`).Scan(&pct))
	assert.InDelta(t, 0.977, pct, 1e-9)
}

func TestExportReplacesExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	src := sampleSource()
	exp := NewExporter(src, nil)

	_, err := exp.Export(context.Background(), path)
	require.NoError(t, err)

	// Second export with a revised value replaces, never duplicates.
	src.batting[0].Hits = intp(151)
	result, err := exp.Export(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Batting)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count, hits int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), MAX(hits) FROM player_season_batting`).Scan(&count, &hits))
	assert.Equal(t, 1, count)
	assert.Equal(t, 151, hits)
}
