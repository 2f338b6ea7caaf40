package stats

import (
	"github.com/rkdansdlf/kbo-data/internal/record"
)

// FillFielding computes fielding percentage in place when the source did
// not supply it: (PO + A) / (PO + A + E). Zero total chances leaves it
// nil.
func FillFielding(line *record.FieldingLine) {
	if line.FieldingPct != nil {
		return
	}
	if line.Putouts == nil || line.Assists == nil || line.Errors == nil {
		return
	}
	chances := *line.Putouts + *line.Assists + *line.Errors
	if chances == 0 {
		return
	}
	pct := round3(float64(*line.Putouts+*line.Assists) / float64(chances))
	line.FieldingPct = &pct
}
