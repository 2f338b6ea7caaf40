package parse

// YearCutoff is the single two-digit-year century pivot used everywhere a
// YY token appears (draft year, entry year). 00..49 resolve to the 2000s,
// 50..99 to the 1900s. The source site's draft strings ("06 두산 2차 ...")
// never predate the league's 1982 founding, so 50 is safe through 2049.
const YearCutoff = 50

// ResolveYear expands a two-digit year using YearCutoff.
func ResolveYear(yy int) int {
	return ResolveYearWith(yy, YearCutoff)
}

// ResolveYearWith expands a two-digit year against an explicit pivot.
func ResolveYearWith(yy, cutoff int) int {
	if yy < cutoff {
		return 2000 + yy
	}
	return 1900 + yy
}
