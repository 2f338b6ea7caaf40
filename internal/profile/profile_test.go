package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawProfile = `선수명 : 김문수 등번호 : No.51 생년월일 : 1994년 3월 5일 ` +
	`포지션 : 내야수 (우투좌타) 신장/체중 : 182cm, 76kg ` +
	`경력 : 서울고 - 고려대 입단 계약금 : 3000만원 연봉 : 12000만원 ` +
	`지명순위 : 06 두산 2차 8라운드 59순위 입단년도 : 06 두산`

func TestTokenize(t *testing.T) {
	tokens := Tokenize(rawProfile)
	assert.Equal(t, "김문수", tokens["선수명"])
	assert.Equal(t, "No.51", tokens["등번호"])
	assert.Equal(t, "내야수 (우투좌타)", tokens["포지션"])
	assert.Equal(t, "06 두산 2차 8라운드 59순위", tokens["지명순위"])
	assert.Equal(t, "06 두산", tokens["입단년도"])
}

func TestParsePosition(t *testing.T) {
	hands := ParsePosition("내야수 (우투좌타)")
	require.NotNil(t, hands.Position)
	assert.Equal(t, "IF", *hands.Position)
	assert.Equal(t, "R", *hands.ThrowingHand)
	assert.Equal(t, "L", *hands.BattingHand)

	hands = ParsePosition("투수 (좌투좌타)")
	assert.Equal(t, "P", *hands.Position)
	assert.Equal(t, "L", *hands.ThrowingHand)

	hands = ParsePosition("외야수")
	assert.Equal(t, "OF", *hands.Position)
	assert.Nil(t, hands.ThrowingHand)

	hands = ParsePosition("")
	assert.Nil(t, hands.Position)
}

func TestParseBackNumber(t *testing.T) {
	require.NotNil(t, ParseBackNumber("No.51"))
	assert.Equal(t, 51, *ParseBackNumber("No.51"))
	assert.Equal(t, 7, *ParseBackNumber("7"))
	assert.Nil(t, ParseBackNumber(""))
	assert.Nil(t, ParseBackNumber("미정"))
}

func TestParseDraft(t *testing.T) {
	d := ParseDraft("06 두산 2차 8라운드 59순위")
	require.NotNil(t, d.Year)
	assert.Equal(t, 2006, *d.Year)
	assert.Equal(t, "OB", *d.TeamCode)
	assert.Equal(t, "2차", *d.Type)
	assert.Equal(t, 8, *d.Round)
	assert.Equal(t, 59, *d.PickOverall)

	d = ParseDraft("25 삼성 자유선발")
	require.NotNil(t, d.Year)
	assert.Equal(t, 2025, *d.Year)
	assert.Equal(t, "SS", *d.TeamCode)
	assert.Equal(t, "자유선발", *d.Type)
	assert.Nil(t, d.Round)
	assert.Nil(t, d.PickOverall)

	d = ParseDraft("")
	assert.Nil(t, d.Year)
}

func TestParseEntry(t *testing.T) {
	e := ParseEntry("16 NC")
	require.NotNil(t, e.Year)
	assert.Equal(t, 2016, *e.Year)
	assert.Equal(t, "NC", *e.TeamCode)

	e = ParseEntry("98 해태")
	assert.Equal(t, 1998, *e.Year)
	assert.Equal(t, "HT", *e.TeamCode)
}

func TestParsePath(t *testing.T) {
	assert.Equal(t, []string{"서울고", "고려대"}, ParsePath("서울고 - 고려대"))
	assert.Equal(t, []string{"광주일고", "연세대", "상무"}, ParsePath("광주일고→연세대→상무"))
	assert.Nil(t, ParsePath(""))
}

func TestParseFullProfile(t *testing.T) {
	player := Parse(76232, rawProfile)

	assert.Equal(t, 76232, player.ID)
	assert.Equal(t, "김문수", player.Name)
	assert.Equal(t, 51, *player.BackNumber)
	assert.Equal(t, "1994-03-05", *player.BirthDate)
	assert.Equal(t, "IF", *player.Position)
	assert.Equal(t, 182, *player.HeightCm)
	assert.Equal(t, 76, *player.WeightKg)

	require.NotNil(t, player.SigningBonusAmount)
	assert.Equal(t, int64(30_000_000), *player.SigningBonusAmount)
	assert.Equal(t, "KRW", *player.SigningBonusCurrency)
	assert.Equal(t, int64(120_000_000), *player.SalaryAmount)

	assert.Equal(t, 2006, *player.DraftYear)
	assert.Equal(t, "OB", *player.DraftTeamCode)
	assert.Equal(t, 8, *player.DraftRound)
	assert.Equal(t, 2006, *player.EntryYear)
}
