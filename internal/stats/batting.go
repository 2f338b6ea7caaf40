// Package stats fills derived metrics from raw counting fields. A value
// directly supplied by the source is always trusted over recomputation —
// the site's own definitions can carry nuances (park factors, era-specific
// rules) these formulas cannot replicate. A derived field is computed only
// when it is nil and its required inputs are present; a zero denominator
// leaves it nil, never zero and never a panic.
package stats

import (
	"math"

	"github.com/rkdansdlf/kbo-data/internal/record"
)

// Rounding policy for derived ratios: three decimal places, matching the
// site's display precision.
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func orZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// FillBatting computes AVG, OBP, SLG, OPS, ISO, and BABIP in place for any
// of them the source did not supply. Sacrifice flies are an optional input
// (legacy tables omit them); they contribute zero when absent.
func FillBatting(line *record.BattingLine) {
	if line.AVG == nil && line.Hits != nil && line.AtBats != nil && *line.AtBats > 0 {
		avg := round3(float64(*line.Hits) / float64(*line.AtBats))
		line.AVG = &avg
	}

	if line.OBP == nil && line.Hits != nil && line.Walks != nil && line.HitByPitch != nil && line.AtBats != nil {
		denom := *line.AtBats + *line.Walks + *line.HitByPitch + orZero(line.SacrificeFlies)
		if denom > 0 {
			obp := round3(float64(*line.Hits+*line.Walks+*line.HitByPitch) / float64(denom))
			line.OBP = &obp
		}
	}

	if line.SLG == nil && line.Hits != nil && line.Doubles != nil && line.Triples != nil &&
		line.HomeRuns != nil && line.AtBats != nil && *line.AtBats > 0 {
		singles := *line.Hits - *line.Doubles - *line.Triples - *line.HomeRuns
		totalBases := singles + 2**line.Doubles + 3**line.Triples + 4**line.HomeRuns
		slg := round3(float64(totalBases) / float64(*line.AtBats))
		line.SLG = &slg
	}

	if line.OPS == nil && line.OBP != nil && line.SLG != nil {
		ops := round3(*line.OBP + *line.SLG)
		line.OPS = &ops
	}

	if line.ISO == nil && line.SLG != nil && line.AVG != nil {
		iso := round3(*line.SLG - *line.AVG)
		line.ISO = &iso
	}

	if line.BABIP == nil && line.Hits != nil && line.HomeRuns != nil &&
		line.AtBats != nil && line.Strikeouts != nil {
		denom := *line.AtBats - *line.Strikeouts - *line.HomeRuns + orZero(line.SacrificeFlies)
		if denom > 0 {
			babip := round3(float64(*line.Hits-*line.HomeRuns) / float64(denom))
			line.BABIP = &babip
		}
	}
}
