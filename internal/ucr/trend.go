package ucr

import "math"

// Trend classification thresholds, in percent. The trend threshold decides
// direction labels; the significance threshold flags large swings in
// comparison output. They are separate knobs.
const (
	TrendThreshold        = 1.0
	SignificanceThreshold = 10.0
)

// Direction labels a series trend.
type Direction string

const (
	DirectionIncreasing Direction = "Increasing"
	DirectionDecreasing Direction = "Decreasing"
	DirectionStable     Direction = "Stable"
	// DirectionUndefined is reported when the first value is zero, making
	// percent change undefined.
	DirectionUndefined Direction = "Undefined"
)

// TrendSummary is the classified first-vs-last movement of a series.
type TrendSummary struct {
	Direction     Direction `json:"direction"`
	PercentChange float64   `json:"percent_change"`
	Defined       bool      `json:"defined"`
	First         float64   `json:"first"`
	Last          float64   `json:"last"`
}

// PercentChange computes the relative change from first to last, in percent.
// The second return is false when first is zero and the change is undefined.
func PercentChange(first, last float64) (float64, bool) {
	if first == 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}

// ClassifyTrend classifies a series by its first and last values. Changes
// within ±TrendThreshold percent are Stable; a zero first value yields
// DirectionUndefined rather than a spurious label.
func ClassifyTrend(values []float64) TrendSummary {
	if len(values) == 0 {
		return TrendSummary{Direction: DirectionUndefined}
	}
	first, last := values[0], values[len(values)-1]
	pct, ok := PercentChange(first, last)
	if !ok {
		return TrendSummary{Direction: DirectionUndefined, First: first, Last: last}
	}
	summary := TrendSummary{PercentChange: pct, Defined: true, First: first, Last: last}
	switch {
	case pct > TrendThreshold:
		summary.Direction = DirectionIncreasing
	case pct < -TrendThreshold:
		summary.Direction = DirectionDecreasing
	default:
		summary.Direction = DirectionStable
	}
	return summary
}

// ClassifyForecastTrend classifies the predicted values of a forecast.
func ClassifyForecastTrend(points []ForecastPoint) TrendSummary {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Predicted
	}
	return ClassifyTrend(values)
}

// ClassifyAnnualTrend classifies a history series by its annual totals,
// including partial years.
func ClassifyAnnualTrend(totals []AnnualTotal) TrendSummary {
	values := make([]float64, len(totals))
	for i, t := range totals {
		values[i] = float64(t.Total)
	}
	return ClassifyTrend(values)
}

// Significant reports whether a defined percent change exceeds the
// significance threshold in either direction.
func Significant(pct float64, defined bool) bool {
	return defined && math.Abs(pct) > SignificanceThreshold
}
