package parse

import (
	"regexp"
	"strings"
)

// Money is a parsed contract/salary amount. Original keeps the source text
// verbatim because unit detection is heuristic and operators want to audit it.
type Money struct {
	Amount   *int64
	Currency string // "KRW", "USD", or "" when the unit was unrecognized
	Original string
}

var moneyRe = regexp.MustCompile(`([\d,]+)\s*(만원|달러)?`)

// ParseMoney parses strings like "3000만원" (30,000,000 KRW) or
// "200000달러" (200,000 USD). 만원 is a 10,000-won unit. Only the first
// number in the string counts; page scrapes can carry trailing noise. An
// amount with an unknown unit is kept as a bare integer with empty
// currency rather than discarded.
func ParseMoney(s string) Money {
	original := strings.TrimSpace(s)
	if original == "" || placeholders[original] {
		return Money{}
	}

	m := moneyRe.FindStringSubmatch(original)
	if m == nil {
		return Money{Original: original}
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	if digits == "" {
		return Money{Original: original}
	}
	var amount int64
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Money{Original: original}
		}
		amount = amount*10 + int64(r-'0')
	}

	switch m[2] {
	case "달러":
		return Money{Amount: &amount, Currency: "USD", Original: original}
	case "만원":
		amount *= 10_000
		return Money{Amount: &amount, Currency: "KRW", Original: original}
	}
	return Money{Amount: &amount, Original: original}
}
