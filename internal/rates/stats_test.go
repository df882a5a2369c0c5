package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func values(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		out[i] = d(s)
	}
	return out
}

func TestComputeSeriesStats(t *testing.T) {
	stats := ComputeSeriesStats(values("0.90", "0.95", "0.87", "0.99"))

	assert.True(t, stats.Min.Equal(d("0.87")))
	assert.True(t, stats.Max.Equal(d("0.99")))
	assert.True(t, stats.Mean.Equal(d("0.9275")))
	assert.True(t, stats.Change.Equal(d("0.09")))
	assert.True(t, stats.ChangePct.Equal(d("10")))
}

func TestComputeSeriesStats_MeanRoundsToSixPlaces(t *testing.T) {
	stats := ComputeSeriesStats(values("1", "1", "2"))

	assert.True(t, stats.Mean.Equal(d("1.333333")), "got %s", stats.Mean)
}

func TestComputeSeriesStats_SinglePoint(t *testing.T) {
	stats := ComputeSeriesStats(values("1.25"))

	assert.True(t, stats.Min.Equal(d("1.25")))
	assert.True(t, stats.Max.Equal(d("1.25")))
	assert.True(t, stats.Mean.Equal(d("1.25")))
	assert.True(t, stats.Change.IsZero(), "change is zero with fewer than two points")
	assert.True(t, stats.ChangePct.IsZero())
}

func TestComputeSeriesStats_Empty(t *testing.T) {
	stats := ComputeSeriesStats(nil)

	assert.True(t, stats.Min.IsZero())
	assert.True(t, stats.Max.IsZero())
	assert.True(t, stats.Mean.IsZero())
}
