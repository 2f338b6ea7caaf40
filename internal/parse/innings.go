package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// KBO partial innings are thirds of an inning. Canonical storage is an
// integer outs count (innings*3 + partial outs): exact under addition,
// unlike innings-as-decimal. Display innings are derived on read.

// Outs parses an innings cell into an outs count. Accepted grammars:
//
//	"5"        whole innings
//	"5 1/3"    spelled fraction
//	"5⅓"       vulgar fraction
//	"5.1"      KBO dot notation, fraction digit is outs (0..2)
//	"5:2"      colon notation, remainder is outs
//
// Standalone fractions ("1/3", "⅔") are accepted as zero whole innings.
func Outs(s string) *int {
	raw := clean(s)
	if placeholders[raw] {
		return nil
	}

	frac := 0
	switch {
	case strings.ContainsRune(raw, '⅓'):
		frac = 1
		raw = strings.TrimSpace(strings.ReplaceAll(raw, "⅓", ""))
	case strings.ContainsRune(raw, '⅔'):
		frac = 2
		raw = strings.TrimSpace(strings.ReplaceAll(raw, "⅔", ""))
	case strings.HasSuffix(raw, "1/3"):
		frac = 1
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "1/3"))
	case strings.HasSuffix(raw, "2/3"):
		frac = 2
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "2/3"))
	}

	if raw == "" {
		return &frac
	}

	if i := strings.IndexAny(raw, ".:"); i >= 0 && frac == 0 {
		whole, err := strconv.Atoi(raw[:i])
		if err != nil {
			return nil
		}
		rest := raw[i+1:]
		if rest == "" {
			outs := whole * 3
			return &outs
		}
		part, err := strconv.Atoi(rest[:1])
		if err != nil || part > 2 {
			return nil
		}
		outs := whole*3 + part
		return &outs
	}

	whole, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	outs := whole*3 + frac
	return &outs
}

// FormatOuts renders an outs count as display innings ("5", "5 1/3", "5 2/3").
func FormatOuts(outs int) string {
	whole, part := outs/3, outs%3
	if part == 0 {
		return strconv.Itoa(whole)
	}
	if whole == 0 {
		return fmt.Sprintf("%d/3", part)
	}
	return fmt.Sprintf("%d %d/3", whole, part)
}

// Innings converts an outs count to decimal innings for ratio formulas
// (ERA, WHIP). Only used transiently; never stored.
func Innings(outs int) float64 {
	return float64(outs) / 3.0
}
