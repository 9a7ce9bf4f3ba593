// Package ucr implements the crime-statistics domain core: the data model,
// trend classification, the typed backend gateway, comparison ranking, and
// response rendering. Every value here is created fresh per tool invocation;
// nothing is cached or shared between calls.
package ucr

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// Period is a year-month, the time granularity of both backends.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses "YYYY-MM", "YYYY-MM-DD", or the FBI API's "MM-YYYY".
func ParsePeriod(s string) (Period, error) {
	layouts := []string{"2006-01", "2006-01-02", "01-2006"}
	for _, layout := range layouts {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return Period{Year: t.Year(), Month: t.Month()}, nil
		}
	}
	return Period{}, fmt.Errorf("unrecognized period %q", s)
}

// String renders the canonical YYYY-MM form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Display renders the short human form, e.g. "Jan 2025".
func (p Period) Display() string {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// LongDisplay renders the long human form, e.g. "January 2025".
func (p Period) LongDisplay() string {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p precedes other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// MarshalJSON encodes the period as its canonical "YYYY-MM" string.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts any of the formats ParsePeriod understands.
func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ForecastPoint is one month of a forecast with its confidence bounds.
// Invariant: Lower <= Predicted <= Upper.
type ForecastPoint struct {
	Period    Period  `json:"period"`
	Predicted float64 `json:"predicted"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
}

// ModelInfo describes the model that produced a forecast. MAPE is the
// backend-reported error rate; lower is better, and it is never converted
// into an "accuracy" figure.
type ModelInfo struct {
	ModelType   string          `json:"model_type"`
	MAPE        float64         `json:"mape"`
	TrainingEnd Period          `json:"training_end"`
	Parameters  ModelParameters `json:"parameters,omitempty"`
}

// ModelParameters carries the algorithm configuration reported by the model
// registry. Empty slices mean the backend did not report them.
type ModelParameters struct {
	Order         []int `json:"order,omitempty"`
	SeasonalOrder []int `json:"seasonal_order,omitempty"`
}

// Seasonal reports whether the model carries a seasonal component.
func (m ModelInfo) Seasonal() bool {
	return len(m.Parameters.SeasonalOrder) > 0
}

// ForecastResult is the reconciled output of a forecast fetch. History is
// populated only when the caller requested recent context.
type ForecastResult struct {
	Offense vocab.Offense   `json:"offense"`
	Region  vocab.Region    `json:"region"`
	Points  []ForecastPoint `json:"predictions"`
	Model   ModelInfo       `json:"model"`
	History []HistoryPoint  `json:"history,omitempty"`
}

// HistoryPoint is one month of reported actuals. Rate and Population are
// optional per-capita context from the history backend.
type HistoryPoint struct {
	Period     Period   `json:"period"`
	Actual     int64    `json:"actual"`
	Rate       *float64 `json:"rate,omitempty"`
	Population *int64   `json:"population,omitempty"`
}

// HistoricalSeries is an ordered multi-year series of monthly actuals.
// Invariant: periods strictly increasing, no duplicates.
type HistoricalSeries struct {
	Offense  vocab.Offense  `json:"offense"`
	Region   vocab.Region   `json:"region"`
	FromYear int            `json:"from_year"`
	ToYear   int            `json:"to_year"`
	Points   []HistoryPoint `json:"monthly_data"`
}

// AnnualTotal is the sum of monthly actuals for one calendar year. A year is
// partial when fewer than 12 months were reported.
type AnnualTotal struct {
	Year    int   `json:"year"`
	Total   int64 `json:"total"`
	Months  int   `json:"months_reported"`
	Partial bool  `json:"partial"`
}

// AnnualTotals groups the monthly actuals by year, ascending.
func (s *HistoricalSeries) AnnualTotals() []AnnualTotal {
	byYear := make(map[int]*AnnualTotal)
	for _, p := range s.Points {
		t, ok := byYear[p.Period.Year]
		if !ok {
			t = &AnnualTotal{Year: p.Period.Year}
			byYear[p.Period.Year] = t
		}
		t.Total += p.Actual
		t.Months++
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	out := make([]AnnualTotal, 0, len(years))
	for _, y := range years {
		t := byYear[y]
		t.Partial = t.Months < 12
		out = append(out, *t)
	}
	return out
}

// ModelDescriptor is one entry from the prediction backend's model registry.
// The core only relays and formats it.
type ModelDescriptor struct {
	Offense     string          `json:"offense"`
	Location    string          `json:"location"`
	ModelType   string          `json:"model_type"`
	MAPE        float64         `json:"mape"`
	TrainingEnd Period          `json:"training_end"`
	Parameters  ModelParameters `json:"parameters,omitempty"`
}

// Metric selects how comparison rows report change.
type Metric string

const (
	// MetricPercentChange ranks and reports rows by percent change.
	MetricPercentChange Metric = "percent_change"
	// MetricAbsolute ranks rows by absolute change and omits the change column.
	MetricAbsolute Metric = "absolute"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricPercentChange, MetricAbsolute:
		return Metric(s), true
	case "":
		return MetricPercentChange, true
	default:
		return "", false
	}
}

// ComparisonRow is one offense's slot in a comparison table. Unavailable rows
// keep their requested offense and the failure note instead of values.
type ComparisonRow struct {
	Offense       vocab.Offense `json:"offense"`
	Current       float64       `json:"current"`
	Forecast      float64       `json:"forecast"`
	Change        float64       `json:"change"`
	PercentChange float64       `json:"percent_change"`
	ChangeDefined bool          `json:"change_defined"`
	Significant   bool          `json:"significant"`
	ModelType     string        `json:"model_type,omitempty"`
	TrainingEnd   Period        `json:"training_end,omitzero"`
	Available     bool          `json:"available"`
	Unavailable   string        `json:"unavailable_reason,omitempty"`
}

// ComparisonTable is the assembled, ordered result of a compare call.
type ComparisonTable struct {
	Region      vocab.Region    `json:"region"`
	MonthsAhead int             `json:"months_ahead"`
	Metric      Metric          `json:"metric"`
	Rows        []ComparisonRow `json:"rows"`
}
