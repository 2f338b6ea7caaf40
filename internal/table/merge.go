package table

import (
	"log/slog"
	"strings"
)

// aggregateMarkers flag subtotal/career rows in the join-key column. Those
// rows are a different concept from a season record and must never be
// stored as one.
var aggregateMarkers = []string{"통산", "합계", "Career", "Total"}

// IsAggregateRow reports whether a join-key cell denotes a totals row.
func IsAggregateRow(keyCell string) bool {
	for _, marker := range aggregateMarkers {
		if strings.Contains(keyCell, marker) {
			return true
		}
	}
	return false
}

// Merge joins two physically split tables sharing a row-key column into
// wide records, one per key value present in either table. The site splits
// batting stats into "basic" and "advanced" tables rendered side by side.
//
// On a (never expected) column collision the left table wins: table order
// reflects page reading order and the earlier table is the primary source.
// Aggregate rows are excluded. Output preserves left-table row order, then
// right-only rows in their own order. skipped counts structurally broken
// rows dropped from either table.
func Merge(left, right RawTable, joinKey string, logger *slog.Logger) (merged []map[string]string, skipped int) {
	leftRows, skippedLeft := left.DictRows(logger)
	rightRows, skippedRight := right.DictRows(logger)
	skipped = skippedLeft + skippedRight

	rightByKey := make(map[string]map[string]string, len(rightRows))
	var rightOrder []string
	for _, row := range rightRows {
		key := row[joinKey]
		if key == "" || IsAggregateRow(key) {
			continue
		}
		if _, dup := rightByKey[key]; !dup {
			rightOrder = append(rightOrder, key)
		}
		rightByKey[key] = row
	}

	seen := make(map[string]bool)
	for _, row := range leftRows {
		key := row[joinKey]
		if key == "" || IsAggregateRow(key) {
			continue
		}
		wide := make(map[string]string, len(row))
		for k, v := range row {
			wide[k] = v
		}
		if other, ok := rightByKey[key]; ok {
			for k, v := range other {
				if _, taken := wide[k]; !taken {
					wide[k] = v
				}
			}
		}
		merged = append(merged, wide)
		seen[key] = true
	}

	for _, key := range rightOrder {
		if !seen[key] {
			merged = append(merged, rightByKey[key])
		}
	}
	return merged, skipped
}
