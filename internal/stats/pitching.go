package stats

import (
	"github.com/rkdansdlf/kbo-data/internal/parse"
	"github.com/rkdansdlf/kbo-data/internal/record"
)

// FillPitching computes ERA, WHIP, K/9, BB/9, and K/BB in place for any of
// them the source did not supply. All formulas divide by innings derived
// from the stored outs count; zero outs leaves every rate nil.
func FillPitching(line *record.PitchingLine) {
	if line.InningsOuts == nil || *line.InningsOuts == 0 {
		fillKPerBB(line)
		return
	}
	innings := parse.Innings(*line.InningsOuts)

	if line.ERA == nil && line.EarnedRuns != nil {
		era := round3(float64(*line.EarnedRuns) * 9 / innings)
		line.ERA = &era
	}

	if line.WHIP == nil && line.HitsAllowed != nil && line.WalksAllowed != nil {
		whip := round3(float64(*line.HitsAllowed+*line.WalksAllowed) / innings)
		line.WHIP = &whip
	}

	if line.KPerNine == nil && line.Strikeouts != nil {
		k9 := round3(float64(*line.Strikeouts) * 9 / innings)
		line.KPerNine = &k9
	}

	if line.BBPerNine == nil && line.WalksAllowed != nil {
		bb9 := round3(float64(*line.WalksAllowed) * 9 / innings)
		line.BBPerNine = &bb9
	}

	fillKPerBB(line)
}

func fillKPerBB(line *record.PitchingLine) {
	if line.KPerBB == nil && line.Strikeouts != nil && line.WalksAllowed != nil && *line.WalksAllowed > 0 {
		kbb := round3(float64(*line.Strikeouts) / float64(*line.WalksAllowed))
		line.KPerBB = &kbb
	}
}
