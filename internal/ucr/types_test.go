package ucr

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input    string
		expected Period
	}{
		{"2025-01", Period{2025, time.January}},
		{"2024-12", Period{2024, time.December}},
		{"2025-01-15", Period{2025, time.January}},
		{"01-2025", Period{2025, time.January}},
		{"10-2024", Period{2024, time.October}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePeriod(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestParsePeriodInvalid(t *testing.T) {
	for _, input := range []string{"", "2025", "13-2025", "2025-13", "January 2025"} {
		_, err := ParsePeriod(input)
		assert.Error(t, err, "input %q should fail", input)
	}
}

func TestPeriodNext(t *testing.T) {
	assert.Equal(t, Period{2025, time.February}, Period{2025, time.January}.Next())
	assert.Equal(t, Period{2026, time.January}, Period{2025, time.December}.Next())
}

func TestPeriodDisplay(t *testing.T) {
	p := Period{2024, time.October}
	assert.Equal(t, "2024-10", p.String())
	assert.Equal(t, "Oct 2024", p.Display())
	assert.Equal(t, "October 2024", p.LongDisplay())
}

func TestPeriodBefore(t *testing.T) {
	assert.True(t, Period{2024, time.December}.Before(Period{2025, time.January}))
	assert.True(t, Period{2025, time.January}.Before(Period{2025, time.February}))
	assert.False(t, Period{2025, time.February}.Before(Period{2025, time.February}))
}

func TestPeriodJSON(t *testing.T) {
	p := Period{2025, time.March}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03"`, string(data))

	var decoded Period
	// The FBI wire format must decode into the same value
	require.NoError(t, json.Unmarshal([]byte(`"03-2025"`), &decoded))
	assert.Equal(t, p, decoded)
}

func TestAnnualTotals(t *testing.T) {
	series := &HistoricalSeries{
		Offense: vocab.ViolentCrime,
		Region:  vocab.National,
		Points:  monthlyPoints(t, 2023, 12, 100, 2024, 10, 200),
	}

	totals := series.AnnualTotals()
	require.Len(t, totals, 2)

	assert.Equal(t, 2023, totals[0].Year)
	assert.Equal(t, int64(1200), totals[0].Total)
	assert.Equal(t, 12, totals[0].Months)
	assert.False(t, totals[0].Partial)

	assert.Equal(t, 2024, totals[1].Year)
	assert.Equal(t, int64(2000), totals[1].Total)
	assert.Equal(t, 10, totals[1].Months)
	assert.True(t, totals[1].Partial, "a 10-month year must be marked partial")
}

// monthlyPoints builds a flat series: months of each (year, count, perMonth)
// triple in order.
func monthlyPoints(t *testing.T, args ...int) []HistoryPoint {
	t.Helper()
	require.Zero(t, len(args)%3)
	var out []HistoryPoint
	for i := 0; i < len(args); i += 3 {
		year, months, value := args[i], args[i+1], args[i+2]
		for m := 1; m <= months; m++ {
			out = append(out, HistoryPoint{
				Period: Period{Year: year, Month: time.Month(m)},
				Actual: int64(value),
			})
		}
	}
	return out
}

func TestParseMetric(t *testing.T) {
	m, ok := ParseMetric("")
	assert.True(t, ok)
	assert.Equal(t, MetricPercentChange, m)

	m, ok = ParseMetric("absolute")
	assert.True(t, ok)
	assert.Equal(t, MetricAbsolute, m)

	_, ok = ParseMetric("delta")
	assert.False(t, ok)
}

func TestModelInfoSeasonal(t *testing.T) {
	assert.False(t, ModelInfo{}.Seasonal())
	assert.True(t, ModelInfo{Parameters: ModelParameters{SeasonalOrder: []int{1, 1, 1, 12}}}.Seasonal())
}
