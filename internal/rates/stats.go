package rates

import "github.com/shopspring/decimal"

// SeriesStats summarizes a rate series within a history window.
type SeriesStats struct {
	Min decimal.Decimal
	Max decimal.Decimal
	// Mean is rounded to 6 decimal places.
	Mean decimal.Decimal
	// Change and ChangePct compare the first and last point of the
	// window; both are zero when the window has fewer than two points.
	Change    decimal.Decimal
	ChangePct decimal.Decimal
}

// ComputeSeriesStats derives min/max/mean and first-to-last change for an
// ordered series of rate values.
func ComputeSeriesStats(values []decimal.Decimal) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}

	stats := SeriesStats{Min: values[0], Max: values[0]}
	sum := decimal.Zero
	for _, v := range values {
		if v.LessThan(stats.Min) {
			stats.Min = v
		}
		if v.GreaterThan(stats.Max) {
			stats.Max = v
		}
		sum = sum.Add(v)
	}
	stats.Mean = sum.Div(decimal.NewFromInt(int64(len(values)))).Round(6)

	if len(values) < 2 {
		return stats
	}

	first := values[0]
	last := values[len(values)-1]
	stats.Change = last.Sub(first)
	if !first.IsZero() {
		stats.ChangePct = stats.Change.Div(first).Mul(decimal.NewFromInt(100)).Round(6)
	}
	return stats
}
