// Package parse provides unit parsers for raw cell text scraped from KBO
// stat tables. Every parser tolerates malformed input: a cell that cannot
// be understood yields nil, never an error, so one bad cell cannot abort
// an otherwise valid record.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// placeholder tokens the source site uses for "no value".
var placeholders = map[string]bool{
	"":    true,
	"-":   true,
	"—":   true,
	"N/A": true,
	"n/a": true,
	"null": true,
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}

// IsPlaceholder reports whether the raw cell denotes an absent value.
func IsPlaceholder(s string) bool {
	return placeholders[strings.TrimSpace(s)]
}

// Int parses a raw cell into an integer. Thousands separators are stripped,
// placeholder tokens and non-numeric remainders yield nil.
func Int(s string) *int {
	raw := clean(s)
	if placeholders[raw] {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// Float parses a raw cell into a float64 with the same tolerance as Int.
func Float(s string) *float64 {
	raw := clean(s)
	if placeholders[raw] {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Plausible adult ranges. A combined height/weight string that parses but
// falls outside these bounds is a mis-parse, not a little person.
const (
	minHeightCm = 140
	maxHeightCm = 220
	minWeightKg = 45
	maxWeightKg = 150
)

var heightWeightRe = regexp.MustCompile(`(?i)(\d{2,3})\s*cm\s*[,/]\s*(\d{2,3})\s*kg`)

// HeightWeight parses combined profile strings like "180cm/80kg" or
// "182cm, 76kg". Both values must pass the sanity range check or the pair
// is rejected as a whole.
func HeightWeight(s string) (heightCm, weightKg *int) {
	m := heightWeightRe.FindStringSubmatch(s)
	if m == nil {
		return nil, nil
	}
	h, _ := strconv.Atoi(m[1])
	w, _ := strconv.Atoi(m[2])
	if h < minHeightCm || h > maxHeightCm || w < minWeightKg || w > maxWeightKg {
		return nil, nil
	}
	return &h, &w
}

// IntPtr and FloatPtr are conveniences for tests and fixtures.
func IntPtr(n int) *int             { return &n }
func FloatPtr(f float64) *float64   { return &f }
