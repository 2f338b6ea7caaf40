package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunResultAdd(t *testing.T) {
	var total RunResult
	total.Add(RunResult{BattingUpserted: 3, Inserted: 2, Updated: 1, NoData: 1})
	total.Add(RunResult{PitchingUpserted: 2, FieldingUpserted: 4, FieldsDefaulted: 7, Errors: []string{"x"}})

	assert.Equal(t, 3, total.BattingUpserted)
	assert.Equal(t, 2, total.PitchingUpserted)
	assert.Equal(t, 4, total.FieldingUpserted)
	assert.Equal(t, 2, total.Inserted)
	assert.Equal(t, 1, total.Updated)
	assert.Equal(t, 1, total.NoData)
	assert.Equal(t, 7, total.FieldsDefaulted)
	assert.Len(t, total.Errors, 1)
}

func TestRunResultSummary(t *testing.T) {
	r := RunResult{BattingUpserted: 5, Inserted: 4, Updated: 1}
	r.AddErrorf("upsert player %d: %v", 7, "boom")

	s := r.Summary()
	assert.Contains(t, s, "batting=5")
	assert.Contains(t, s, "inserted=4")
	assert.Contains(t, s, "errors=1")
}
