// Package profile parses the free-text player profile block on detail
// pages. The block bundles several semantic values into one string with
// inconsistent delimiters, so parsing is a label tokenizer followed by a
// dedicated micro-parser per recognized label — never one monolithic
// regexp over the whole blob.
package profile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rkdansdlf/kbo-data/internal/parse"
	"github.com/rkdansdlf/kbo-data/internal/record"
)

// profile labels as printed on the site, in "label : value" runs.
const labels = `선수명|등번호|생년월일|포지션|신장/체중|경력|출신교|입단 계약금|연봉|지명순위|입단년도`

var labelRe = regexp.MustCompile(`(?s)(` + labels + `)\s*:\s*(.*?)(?:(?:` + labels + `)\s*:|\z)`)

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits a raw profile block into label → value tokens.
func Tokenize(raw string) map[string]string {
	raw = collapse(raw)
	tokens := make(map[string]string)
	for len(raw) > 0 {
		loc := labelRe.FindStringSubmatchIndex(raw)
		if loc == nil {
			break
		}
		key := raw[loc[2]:loc[3]]
		val := strings.TrimSpace(raw[loc[4]:loc[5]])
		tokens[key] = val
		// Resume at the next label, not past it.
		if loc[5] >= len(raw) {
			break
		}
		raw = raw[loc[5]:]
	}
	return tokens
}

var positionCodes = map[string]string{
	"투수":   "P",
	"포수":   "C",
	"내야수":  "IF",
	"외야수":  "OF",
	"지명타자": "DH",
}

var handCodes = map[string]string{"우": "R", "좌": "L", "양": "S"}

var handsRe = regexp.MustCompile(`\((.)\s*투(.)\s*타\)`)

// Hands holds parsed position and handedness codes.
type Hands struct {
	Position     *string
	ThrowingHand *string
	BattingHand  *string
}

// ParsePosition parses "내야수 (우투좌타)" style position strings.
func ParsePosition(value string) Hands {
	text := collapse(value)
	var out Hands
	positionTxt := strings.TrimSpace(strings.SplitN(text, "(", 2)[0])
	if code, ok := positionCodes[positionTxt]; ok {
		out.Position = &code
	}
	if m := handsRe.FindStringSubmatch(text); m != nil {
		if code, ok := handCodes[m[1]]; ok {
			out.ThrowingHand = &code
		}
		if code, ok := handCodes[m[2]]; ok {
			out.BattingHand = &code
		}
	}
	return out
}

var backNumberRe = regexp.MustCompile(`(?:No\.\s*)?(\d+)`)

// ParseBackNumber extracts a jersey number from strings like "No.51".
func ParseBackNumber(value string) *int {
	m := backNumberRe.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	n, _ := strconv.Atoi(m[1])
	return &n
}

// Draft is the decomposed 지명순위 field, e.g.
// "06 두산 2차 8라운드 59순위" or "25 삼성 자유선발".
type Draft struct {
	Year        *int
	TeamCode    *string
	Type        *string
	Round       *int
	PickOverall *int
}

var draftRe = regexp.MustCompile(
	`(\d{2})\s*(\S+)\s*(1차|2차|자유선발)?(?:\s*(\d+)라운드)?(?:\s*(\d+)순위)?`)

// ParseDraft decomposes a draft string. The two-digit year resolves through
// the shared century cutoff.
func ParseDraft(value string) Draft {
	m := draftRe.FindStringSubmatch(collapse(value))
	if m == nil {
		return Draft{}
	}

	yy, _ := strconv.Atoi(m[1])
	year := parse.ResolveYear(yy)
	out := Draft{Year: &year, TeamCode: record.ResolveTeamCode(m[2])}
	if m[3] != "" {
		out.Type = &m[3]
	}
	if m[4] != "" {
		n, _ := strconv.Atoi(m[4])
		out.Round = &n
	}
	if m[5] != "" {
		n, _ := strconv.Atoi(m[5])
		out.PickOverall = &n
	}
	return out
}

// Entry is the decomposed 입단년도 field ("16 NC").
type Entry struct {
	Year     *int
	TeamCode *string
}

var entryRe = regexp.MustCompile(`(\d{2})\s*(\S+)`)

// ParseEntry decomposes an entry year/team string.
func ParseEntry(value string) Entry {
	m := entryRe.FindStringSubmatch(collapse(value))
	if m == nil {
		return Entry{}
	}
	yy, _ := strconv.Atoi(m[1])
	year := parse.ResolveYear(yy)
	return Entry{Year: &year, TeamCode: record.ResolveTeamCode(m[2])}
}

// pathSepRe splits career/education paths on the various dashes and arrows
// the site has used over the years.
var pathSepRe = regexp.MustCompile(`\s*[-–—→,]\s*`)

// ParsePath splits a career or education path into its segments.
func ParsePath(value string) []string {
	var out []string
	for _, part := range pathSepRe.Split(strings.TrimSpace(value), -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Parse assembles a full identity record from one profile block.
// playerID comes from the detail-page URL, upstream of this parser.
func Parse(playerID int, raw string) record.Player {
	tokens := Tokenize(raw)

	player := record.Player{
		ID:         playerID,
		Name:       tokens["선수명"],
		BackNumber: ParseBackNumber(tokens["등번호"]),
		BirthDate:  parse.Date(tokens["생년월일"]),
	}

	hands := ParsePosition(tokens["포지션"])
	player.Position = hands.Position
	player.ThrowingHand = hands.ThrowingHand
	player.BattingHand = hands.BattingHand

	player.HeightCm, player.WeightKg = parse.HeightWeight(tokens["신장/체중"])

	if bonus := parse.ParseMoney(tokens["입단 계약금"]); bonus.Amount != nil {
		player.SigningBonusAmount = bonus.Amount
		if bonus.Currency != "" {
			player.SigningBonusCurrency = &bonus.Currency
		}
	}
	if salary := parse.ParseMoney(tokens["연봉"]); salary.Amount != nil {
		player.SalaryAmount = salary.Amount
		if salary.Currency != "" {
			player.SalaryCurrency = &salary.Currency
		}
	}

	draft := ParseDraft(tokens["지명순위"])
	player.DraftYear = draft.Year
	player.DraftTeamCode = draft.TeamCode
	player.DraftType = draft.Type
	player.DraftRound = draft.Round
	player.DraftPickOverall = draft.PickOverall

	entry := ParseEntry(tokens["입단년도"])
	player.EntryYear = entry.Year
	player.EntryTeamCode = entry.TeamCode

	return player
}
