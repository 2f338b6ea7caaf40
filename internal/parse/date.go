package parse

import (
	"fmt"
	"regexp"
	"strconv"
)

// Date layouts drifted across four decades of page formats; all of these
// appear in the wild on profile and schedule pages.
var dateRes = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`),
	regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`),
	regexp.MustCompile(`^(\d{4})\.(\d{1,2})\.(\d{1,2})$`),
	regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`),
	regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`),
}

// Date normalizes a raw date cell to "YYYY-MM-DD". Out-of-range month or
// day values are rejected as nil rather than stored.
func Date(s string) *string {
	raw := clean(s)
	if placeholders[raw] {
		return nil
	}
	for _, re := range dateRes {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return nil
		}
		out := fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
		return &out
	}
	return nil
}
