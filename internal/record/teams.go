package record

import (
	"sort"
	"strings"
)

// teamCodes maps every team display name observed across four decades of
// pages to its canonical short code. Franchise lineages collapse onto the
// code the teams table uses (KIA rows keep the Haitai HT code; Kiwoom
// keeps the Heroes WO code). Extending this is a data edit, not a code
// change.
var teamCodes = map[string]string{
	// Active franchises
	"삼성": "SS", "삼성 라이온즈": "SS",
	"롯데": "LT", "롯데 자이언츠": "LT",
	"두산": "OB", "두산 베어스": "OB", "OB": "OB", "OB베어스": "OB",
	"LG": "LG", "LG 트윈스": "LG",
	"KIA": "HT", "KIA 타이거즈": "HT", "기아": "HT", "기아 타이거즈": "HT",
	"한화": "HH", "한화 이글스": "HH",
	"KT": "KT", "KT 위즈": "KT", "kt": "KT", "kt wiz": "KT",
	"NC": "NC", "NC 다이노스": "NC", "nc": "NC",
	"키움": "WO", "키움 히어로즈": "WO",
	"SSG": "SSG", "SSG 랜더스": "SSG",
	"SK": "SK", "SK 와이번스": "SK",

	// Heroes lineage
	"넥센": "NX", "넥센 히어로즈": "NX",
	"우리": "WO", "우리 히어로즈": "WO",

	// Dissolved and renamed franchises
	"현대": "HU", "현대 유니콘스": "HU",
	"태평양": "TP", "태평양 돌핀스": "TP",
	"청보": "CB", "청보 핀토스": "CB",
	"삼미": "SM", "삼미 슈퍼스타즈": "SM",
	"해태": "HT", "해태 타이거즈": "HT",
	"MBC": "MBC", "MBC 청룡": "MBC", "MBC청룡": "MBC",
	"빙그레": "BE", "빙그레 이글스": "BE",
	"쌍방울": "SL", "쌍방울 레이더스": "SL",
}

// teamPrefixes orders the display names longest-first for the
// glued-suffix fallback, so "SSG랜더스" resolves through "SSG" and never
// through the shorter "SS" key regardless of map iteration order.
var teamPrefixes = func() []string {
	prefixes := make([]string, 0, len(teamCodes))
	for name := range teamCodes {
		if len(name) >= 2 {
			prefixes = append(prefixes, name)
		}
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	return prefixes
}()

// ResolveTeamCode maps a raw team display name to its canonical code.
// Unknown names return nil; the record builder keeps the raw name in
// extra stats so no source data is lost.
func ResolveTeamCode(name string) *string {
	trimmed := strings.Join(strings.Fields(name), " ")
	if trimmed == "" {
		return nil
	}
	if code, ok := teamCodes[trimmed]; ok {
		return &code
	}
	// Tolerate glued suffixes like "두산베어스".
	for _, prefix := range teamPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			code := teamCodes[prefix]
			return &code
		}
	}
	return nil
}

// positionCodes maps the defense table's Korean position labels to the
// site's English position IDs.
var positionCodes = map[string]string{
	"포수":   "C",
	"1루수":  "1B",
	"2루수":  "2B",
	"3루수":  "3B",
	"유격수":  "SS",
	"좌익수":  "LF",
	"중견수":  "CF",
	"우익수":  "RF",
	"외야수":  "OF",
	"내야수":  "IF",
	"지명타자": "DH",
	"투수":   "P",
}

// ResolvePositionCode maps a raw position label to its code. Labels
// already in code form pass through upper-cased; an empty result means
// the cell carried no position at all.
func ResolvePositionCode(name string) string {
	trimmed := strings.Join(strings.Fields(name), " ")
	if code, ok := positionCodes[trimmed]; ok {
		return code
	}
	return strings.ToUpper(trimmed)
}
