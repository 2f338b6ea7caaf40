package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkdansdlf/kbo-data/internal/record"
	"github.com/rkdansdlf/kbo-data/internal/store"
)

// memSink collects upserts in memory and mimics the writer's
// insert-vs-update reporting.
type fieldingKey struct {
	record.Key
	Position string
}

type memSink struct {
	mu       sync.Mutex
	players  map[int]record.Player
	batting  map[record.Key]*record.BattingLine
	pitching map[record.Key]*record.PitchingLine
	fielding map[fieldingKey]*record.FieldingLine

	battingErr error // returned by every UpsertBatting when set
}

func newMemSink() *memSink {
	return &memSink{
		players:  make(map[int]record.Player),
		batting:  make(map[record.Key]*record.BattingLine),
		pitching: make(map[record.Key]*record.PitchingLine),
		fielding: make(map[fieldingKey]*record.FieldingLine),
	}
}

func (s *memSink) UpsertPlayer(_ context.Context, p record.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
	return nil
}

func (s *memSink) UpsertBatting(_ context.Context, line *record.BattingLine) (store.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battingErr != nil {
		return store.WriteResult{}, s.battingErr
	}
	_, existed := s.batting[line.Key]
	s.batting[line.Key] = line
	return store.WriteResult{Inserted: !existed}, nil
}

func (s *memSink) UpsertPitching(_ context.Context, line *record.PitchingLine) (store.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.pitching[line.Key]
	s.pitching[line.Key] = line
	return store.WriteResult{Inserted: !existed}, nil
}

func (s *memSink) UpsertFielding(_ context.Context, line *record.FieldingLine) (store.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := fieldingKey{Key: line.Key, Position: line.Position}
	_, existed := s.fielding[k]
	s.fielding[k] = line
	return store.WriteResult{Inserted: !existed}, nil
}

const battingDetailHTML = `
<html><body>
<h3>정규시즌 기록</h3>
<table>
  <thead><tr><th>연도</th><th>팀명</th><th>G</th><th>타석</th><th>AB</th><th>R</th><th>H</th><th>2B</th><th>3B</th><th>HR</th><th>타점</th><th>도루</th><th>도루자</th><th>희타</th><th>희비</th><th>병살</th><th>실책</th></tr></thead>
  <tbody>
    <tr><td>2023</td><td>두산</td><td>144</td><td>620</td><td>500</td><td>85</td><td>150</td><td>28</td><td>3</td><td>11</td><td>70</td><td>12</td><td>4</td><td>3</td><td>5</td><td>9</td><td>6</td></tr>
    <tr><td>통산</td><td>-</td><td>900</td><td>3800</td><td>3200</td><td>500</td><td>960</td><td>170</td><td>20</td><td>75</td><td>430</td><td>80</td><td>30</td><td>25</td><td>30</td><td>60</td><td>40</td></tr>
  </tbody>
</table>
<table>
  <thead><tr><th>연도</th><th>BB</th><th>고의4구</th><th>HBP</th><th>SO</th></tr></thead>
  <tbody>
    <tr><td>2023</td><td>55</td><td>4</td><td>6</td><td>90</td></tr>
    <tr><td>합계</td><td>350</td><td>20</td><td>35</td><td>580</td></tr>
  </tbody>
</table>
</body></html>`

func TestProcessBattingPageMergesAndUpserts(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessBattingPage(context.Background(), PageSource{
		PlayerID:   76290,
		Series:     "regular",
		RecordType: store.TypeBatting,
		HTML:       battingDetailHTML,
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.BattingUpserted)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.NoData)

	key := record.Key{PlayerID: 76290, Season: 2023, League: record.LeagueRegular, Level: record.LevelKBO1}
	line := sink.batting[key]
	require.NotNil(t, line)

	// Merged across the split tables.
	require.NotNil(t, line.AtBats)
	assert.Equal(t, 500, *line.AtBats)
	require.NotNil(t, line.Walks)
	assert.Equal(t, 55, *line.Walks)

	// Derived rates computed from counting stats: 150/500 = .300.
	require.NotNil(t, line.AVG)
	assert.InDelta(t, 0.300, *line.AVG, 1e-9)
	require.NotNil(t, line.OBP)
	require.NotNil(t, line.OPS)

	// Career aggregate rows never become records.
	for k := range sink.batting {
		assert.Equal(t, 2023, k.Season)
	}
}

func TestProcessBattingPageNoTables(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessBattingPage(context.Background(), PageSource{
		PlayerID: 1, Series: "regular", RecordType: store.TypeBatting,
		HTML: `<html><body><p>조회된 기록이 없습니다.</p></body></html>`,
	})

	assert.Equal(t, 1, result.NoData)
	assert.Empty(t, result.Errors)
	assert.Empty(t, sink.batting)
}

func TestProcessBattingPageConstraintSkips(t *testing.T) {
	sink := newMemSink()
	sink.battingErr = &store.ConstraintError{
		Key: record.Key{PlayerID: 76290, Season: 2023},
		Err: fmt.Errorf("avg out of range"),
	}
	proc := NewProcessor(sink, nil)

	result := proc.ProcessBattingPage(context.Background(), PageSource{
		PlayerID: 76290, Series: "regular", RecordType: store.TypeBatting,
		HTML: battingDetailHTML,
	})

	assert.Equal(t, 1, result.RecordsSkipped)
	assert.Equal(t, 0, result.BattingUpserted)
	assert.Empty(t, result.Errors)
}

const pitchingDetailHTML = `
<html><body>
<table>
  <thead><tr><th>연도</th><th>팀명</th><th>G</th><th>GS</th><th>승</th><th>패</th><th>세이브</th><th>홀드</th><th>이닝</th><th>피안타</th><th>실점</th><th>자책점</th><th>피홈런</th><th>볼넷</th><th>사구</th><th>탈삼진</th><th>폭투</th><th>보크</th></tr></thead>
  <tbody>
    <tr><td>2024</td><td>KIA</td><td>30</td><td>29</td><td>15</td><td>6</td><td>0</td><td>0</td><td>154 1/3</td><td>150</td><td>60</td><td>52</td><td>12</td><td>38</td><td>5</td><td>163</td><td>4</td><td>0</td></tr>
  </tbody>
</table>
</body></html>`

func TestProcessPitchingPage(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessPitchingPage(context.Background(), PageSource{
		PlayerID: 51001, Series: "regular", RecordType: store.TypePitching,
		HTML: pitchingDetailHTML,
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.PitchingUpserted)

	key := record.Key{PlayerID: 51001, Season: 2024, League: record.LeagueRegular, Level: record.LevelKBO1}
	line := sink.pitching[key]
	require.NotNil(t, line)

	require.NotNil(t, line.InningsOuts)
	assert.Equal(t, 463, *line.InningsOuts)
	require.NotNil(t, line.WalksAllowed)
	assert.Equal(t, 38, *line.WalksAllowed)
	require.NotNil(t, line.HitBatters)
	assert.Equal(t, 5, *line.HitBatters)
	assert.Equal(t, "HT", *line.TeamCode)

	// ERA derived from 52 ER over 154 1/3 innings.
	require.NotNil(t, line.ERA)
	assert.InDelta(t, 3.032, *line.ERA, 1e-9)
}

const rankingPrefixedBattingHTML = `
<html><body>
<table>
  <thead><tr><th>연도</th><th>순위</th><th>G</th></tr></thead>
  <tbody>
    <tr><td>2023</td><td>3</td><td>144</td></tr>
  </tbody>
</table>
<table>
  <thead><tr><th>연도</th><th>팀명</th><th>G</th><th>타석</th><th>AB</th><th>R</th><th>H</th><th>2B</th><th>3B</th><th>HR</th><th>타점</th><th>도루</th><th>도루자</th><th>희타</th><th>희비</th><th>병살</th><th>실책</th></tr></thead>
  <tbody>
    <tr><td>2023</td><td>두산</td><td>144</td><td>620</td><td>500</td><td>85</td><td>150</td><td>28</td><td>3</td><td>11</td><td>70</td><td>12</td><td>4</td><td>3</td><td>5</td><td>9</td><td>6</td></tr>
  </tbody>
</table>
<table>
  <thead><tr><th>연도</th><th>BB</th><th>고의4구</th><th>HBP</th><th>SO</th></tr></thead>
  <tbody>
    <tr><td>2023</td><td>55</td><td>4</td><td>6</td><td>90</td></tr>
  </tbody>
</table>
</body></html>`

func TestProcessBattingPageIgnoresSeasonRankingTable(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessBattingPage(context.Background(), PageSource{
		PlayerID: 76290, Series: "regular", RecordType: store.TypeBatting,
		HTML: rankingPrefixedBattingHTML,
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.BattingUpserted)

	key := record.Key{PlayerID: 76290, Season: 2023, League: record.LeagueRegular, Level: record.LevelKBO1}
	line := sink.batting[key]
	require.NotNil(t, line)

	// The leading ranking table also keys on season; it must not displace
	// the split stat tables from the merge.
	require.NotNil(t, line.AtBats)
	assert.Equal(t, 500, *line.AtBats)
	require.NotNil(t, line.Walks)
	assert.Equal(t, 55, *line.Walks)
	require.NotNil(t, line.HitByPitch)
	assert.Equal(t, 6, *line.HitByPitch)
	require.NotNil(t, line.Strikeouts)
	assert.Equal(t, 90, *line.Strikeouts)
}

func TestProcessBattingPageEmptyTableIsZeroRecords(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessBattingPage(context.Background(), PageSource{
		PlayerID: 3, Series: "regular", RecordType: store.TypeBatting,
		HTML: `<html><body>
<table>
  <thead><tr><th>연도</th><th>팀명</th><th>AB</th><th>H</th><th>HR</th></tr></thead>
  <tbody></tbody>
</table>
</body></html>`,
	})

	// A located table with no rows means the player has zero records,
	// not that the page is missing data.
	assert.Equal(t, 0, result.NoData)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.BattingUpserted)
	assert.Empty(t, sink.batting)
}

const fieldingDetailHTML = `
<html><body>
<table>
  <thead><tr><th>연도</th><th>팀명</th><th>포지션</th><th>G</th><th>GS</th><th>이닝</th><th>실책</th><th>견제사</th><th>자살</th><th>보살</th><th>병살</th><th>수비율</th></tr></thead>
  <tbody>
    <tr><td>2024</td><td>LG</td><td>유격수</td><td>120</td><td>115</td><td>980 2/3</td><td>12</td><td>0</td><td>180</td><td>320</td><td>58</td><td>-</td></tr>
    <tr><td>2024</td><td>LG</td><td>2루수</td><td>8</td><td>2</td><td>35 1/3</td><td>1</td><td>0</td><td>15</td><td>22</td><td>4</td><td>0.974</td></tr>
  </tbody>
</table>
</body></html>`

func TestProcessFieldingPage(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.Process(context.Background(), PageSource{
		PlayerID: 67341, Series: "regular", RecordType: store.TypeFielding,
		HTML: fieldingDetailHTML,
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.FieldingUpserted)
	assert.Equal(t, 2, result.Inserted)

	key := record.Key{PlayerID: 67341, Season: 2024, League: record.LeagueRegular, Level: record.LevelKBO1}
	ss := sink.fielding[fieldingKey{Key: key, Position: "SS"}]
	require.NotNil(t, ss)
	assert.Equal(t, "LG", *ss.TeamCode)
	require.NotNil(t, ss.InningsOuts)
	assert.Equal(t, 2942, *ss.InningsOuts)
	require.NotNil(t, ss.DoublePlays)
	assert.Equal(t, 58, *ss.DoublePlays)

	// Blank percentage derived from chances: (180+320)/512 = .977.
	require.NotNil(t, ss.FieldingPct)
	assert.InDelta(t, 0.977, *ss.FieldingPct, 1e-9)

	// Same season, second position keeps its own record and its
	// source-reported percentage.
	second := sink.fielding[fieldingKey{Key: key, Position: "2B"}]
	require.NotNil(t, second)
	require.NotNil(t, second.FieldingPct)
	assert.InDelta(t, 0.974, *second.FieldingPct, 1e-9)
}

func TestProcessFieldingPageSkipsRowsWithoutPosition(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessFieldingPage(context.Background(), PageSource{
		PlayerID: 5, Series: "regular", RecordType: store.TypeFielding,
		HTML: `<html><body>
<table>
  <thead><tr><th>연도</th><th>팀명</th><th>포지션</th><th>자살</th><th>보살</th><th>실책</th></tr></thead>
  <tbody>
    <tr><td>2024</td><td>LG</td><td></td><td>10</td><td>20</td><td>1</td></tr>
  </tbody>
</table>
</body></html>`,
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.FieldingUpserted)
	assert.Equal(t, 1, result.RowsSkipped)
	assert.Empty(t, sink.fielding)
}

const profileDetailHTML = `
<html><body>
<div class="player_basic">
  <ul>
    <li>선수명 : 김민수</li>
    <li>등번호 : No.25</li>
    <li>생년월일 : 1995년 03월 15일</li>
    <li>포지션 : 내야수(우투좌타)</li>
    <li>신장/체중 : 185cm, 88kg</li>
    <li>지명순위 : 14 두산 2차 3라운드 25순위</li>
    <li>입단 계약금 : 15000만원</li>
  </ul>
</div>
<table>
  <thead><tr><th>연도</th><th>팀명</th><th>AVG</th><th>G</th><th>AB</th><th>H</th></tr></thead>
  <tbody>
    <tr><td>2024</td><td>두산</td><td>0.285</td><td>130</td><td>460</td><td>131</td></tr>
  </tbody>
</table>
</body></html>`

func TestProcessProfilePage(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessProfilePage(context.Background(), PageSource{
		PlayerID: 60100, Series: "regular", RecordType: store.TypeProfile,
		HTML: profileDetailHTML,
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.PlayersUpserted)

	p, ok := sink.players[60100]
	require.True(t, ok)
	assert.Equal(t, "김민수", p.Name)
	require.NotNil(t, p.BackNumber)
	assert.Equal(t, 25, *p.BackNumber)
	require.NotNil(t, p.BirthDate)
	assert.Equal(t, "1995-03-15", *p.BirthDate)
	require.NotNil(t, p.ThrowingHand)
	assert.Equal(t, "R", *p.ThrowingHand)
	require.NotNil(t, p.DraftYear)
	assert.Equal(t, 2014, *p.DraftYear)
	require.NotNil(t, p.SigningBonusAmount)
	assert.Equal(t, int64(150_000_000), *p.SigningBonusAmount)

	// Career table on the same page lands as a PROFILE-sourced record.
	assert.Equal(t, 1, result.BattingUpserted)
	key := record.Key{PlayerID: 60100, Season: 2024, League: record.LeagueRegular, Level: record.LevelKBO1}
	line := sink.batting[key]
	require.NotNil(t, line)
	assert.Equal(t, record.SourceProfile, line.Source)
}

func TestProcessProfilePageWithoutIdentity(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	result := proc.ProcessProfilePage(context.Background(), PageSource{
		PlayerID: 2, RecordType: store.TypeProfile,
		HTML: `<html><body><p>페이지를 찾을 수 없습니다.</p></body></html>`,
	})

	assert.Equal(t, 1, result.NoData)
	assert.Empty(t, sink.players)
}

func TestRunMergesWorkerResults(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	sources := []PageSource{
		{PlayerID: 10, Series: "regular", RecordType: store.TypeBatting, HTML: battingDetailHTML},
		{PlayerID: 11, Series: "regular", RecordType: store.TypeBatting, HTML: battingDetailHTML},
		{PlayerID: 12, Series: "regular", RecordType: store.TypePitching, HTML: pitchingDetailHTML},
		{PlayerID: 13, Series: "regular", RecordType: store.TypeBatting, HTML: `<html><body></body></html>`},
	}

	result := proc.Run(context.Background(), sources, 3)

	assert.Equal(t, 2, result.BattingUpserted)
	assert.Equal(t, 1, result.PitchingUpserted)
	assert.Equal(t, 1, result.NoData)
	assert.Equal(t, 3, result.Inserted)
	assert.Empty(t, result.Errors)
}

func TestRunIsIdempotentAcrossBatches(t *testing.T) {
	sink := newMemSink()
	proc := NewProcessor(sink, nil)

	src := PageSource{PlayerID: 10, Series: "regular", RecordType: store.TypeBatting, HTML: battingDetailHTML}

	first := proc.Run(context.Background(), []PageSource{src}, 1)
	second := proc.Run(context.Background(), []PageSource{src}, 1)

	assert.Equal(t, 1, first.Inserted)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Updated)
	assert.Len(t, sink.batting, 1)
}
