// Package record defines the canonical season-record shapes every parsed
// table normalizes into, plus the era-profile configuration and the builder
// that assembles them. The storage schema and upsert writers never change
// when a new page layout appears — only this package's data tables do.
package record

// Competition tiers (league column). Mirrors the site's series selector.
const (
	LeagueRegular      = "REGULAR"
	LeagueExhibition   = "EXHIBITION"
	LeaguePlayoff      = "PLAYOFF"
	LeagueKoreanSeries = "KOREAN_SERIES"
	LeagueFutures      = "FUTURES"
)

// Record levels (league tier).
const (
	LevelKBO1 = "KBO1" // primary league
	LevelKBO2 = "KBO2" // Futures / secondary league
)

// Collection sources. CRAWLER rows come from season stat pages aggregated
// per event; PROFILE rows are cumulative snapshots lifted off a player's
// profile page.
const (
	SourceCrawler = "CRAWLER"
	SourceProfile = "PROFILE"
)

// Key is the compound natural key shared by both record types. At most one
// stored row exists per key; re-ingestion updates it in place.
type Key struct {
	PlayerID int
	Season   int
	League   string
	Level    string
}

// BattingLine is one subject's canonical batting record for one
// (season, tier, level). Pointer fields distinguish "source had no value"
// (nil) from a literal zero.
type BattingLine struct {
	Key
	TeamCode *string
	Source   string

	Games            *int
	PlateAppearances *int
	AtBats           *int
	Runs             *int
	Hits             *int
	Doubles          *int
	Triples          *int
	HomeRuns         *int
	RBI              *int
	Walks            *int
	IntentionalWalks *int
	HitByPitch       *int
	Strikeouts       *int
	StolenBases      *int
	CaughtStealing   *int
	SacrificeHits    *int
	SacrificeFlies   *int
	GDP              *int
	Errors           *int

	AVG   *float64
	OBP   *float64
	SLG   *float64
	OPS   *float64
	ISO   *float64
	BABIP *float64

	// Columns the era profile did not anticipate; preserved verbatim so
	// no source data is silently lost.
	ExtraStats map[string]string
}

// PitchingLine is the canonical pitching record. Innings are stored as an
// outs count; display innings are derived on read.
type PitchingLine struct {
	Key
	TeamCode *string
	Source   string

	Games           *int
	GamesStarted    *int
	Wins            *int
	Losses          *int
	Saves           *int
	Holds           *int
	InningsOuts     *int
	HitsAllowed     *int
	RunsAllowed     *int
	EarnedRuns      *int
	HomeRunsAllowed *int
	WalksAllowed    *int
	IntentionalWalks *int
	HitBatters      *int
	Strikeouts      *int
	WildPitches     *int
	Balks           *int

	ERA       *float64
	WHIP      *float64
	FIP       *float64
	KPerNine  *float64
	BBPerNine *float64
	KPerBB    *float64

	ExtraStats map[string]string
}

// FieldingLine is the canonical fielding record. A player fields several
// positions in one season, so the position code joins the natural key.
// Innings follow the pitching convention and are stored as an outs count.
type FieldingLine struct {
	Key
	Position string
	TeamCode *string
	Source   string

	Games        *int
	GamesStarted *int
	InningsOuts  *int
	Errors       *int
	Pickoffs     *int
	Putouts      *int
	Assists      *int
	DoublePlays  *int

	FieldingPct *float64

	ExtraStats map[string]string
}

// Player is the subject identity record: stable ID plus denormalized
// "current" snapshot attributes. History lives in the season tables.
type Player struct {
	ID           int
	Name         string
	TeamCode     *string
	BackNumber   *int
	Position     *string
	ThrowingHand *string
	BattingHand  *string
	HeightCm     *int
	WeightKg     *int
	BirthDate    *string // YYYY-MM-DD
	IsActive     *bool
	IsForeign    *bool

	DraftYear        *int
	DraftTeamCode    *string
	DraftType        *string
	DraftRound       *int
	DraftPickOverall *int
	EntryYear        *int
	EntryTeamCode    *string

	SigningBonusAmount   *int64
	SigningBonusCurrency *string
	SalaryAmount         *int64
	SalaryCurrency       *string
}
