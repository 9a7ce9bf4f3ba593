package ucr

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.Nil(t, err)
	assert.Equal(t, FormatSummary, f)

	f, err = ParseFormat("detailed")
	require.Nil(t, err)
	assert.Equal(t, FormatDetailed, f)

	_, err = ParseFormat("verbose")
	require.NotNil(t, err)
	assert.Equal(t, errors.CodeInvalidFormat, err.Code)
}

func sampleForecast() *ForecastResult {
	return &ForecastResult{
		Offense: vocab.ViolentCrime,
		Region:  vocab.National,
		Points: []ForecastPoint{
			{Period: Period{2025, time.January}, Predicted: 95000, Lower: 92000, Upper: 98000},
			{Period: Period{2025, time.February}, Predicted: 94000, Lower: 91000, Upper: 97000},
			{Period: Period{2025, time.March}, Predicted: 93000, Lower: 90000, Upper: 96000},
		},
		Model: ModelInfo{ModelType: "SARIMA", MAPE: 5.8, TrainingEnd: Period{2024, time.December}},
	}
}

func TestRenderForecastSummary(t *testing.T) {
	out, err := RenderForecast(sampleForecast(), FormatSummary)
	require.Nil(t, err)

	assert.Contains(t, out, "Violent Crime Forecast (National, next 3 months):")
	assert.Contains(t, out, "- Jan 2025: ~95,000 (range: 92,000 - 98,000)")
	assert.Contains(t, out, "Trend: Decreasing (-2.1%)")
	assert.Contains(t, out, "Model: SARIMA | Error rate (MAPE): 5.8% | Data through: Dec 2024")
}

func TestRenderForecastSummaryWithHistory(t *testing.T) {
	res := sampleForecast()
	res.History = []HistoryPoint{
		{Period: Period{2024, time.November}, Actual: 96500},
		{Period: Period{2024, time.December}, Actual: 95800},
	}

	out, err := RenderForecast(res, FormatSummary)
	require.Nil(t, err)
	assert.Contains(t, out, "Recent History:")
	assert.Contains(t, out, "- Nov 2024: 96,500 incidents")
}

func TestRenderForecastNeverSaysAccuracy(t *testing.T) {
	// MAPE is an error rate; inverting it into "accuracy" misleads readers
	out, err := RenderForecast(sampleForecast(), FormatSummary)
	require.Nil(t, err)
	assert.Contains(t, out, "Error rate (MAPE)")
	assert.NotContains(t, out, "accuracy")
	assert.NotContains(t, out, "Accuracy")
}

func TestRenderForecastUndefinedTrend(t *testing.T) {
	res := sampleForecast()
	res.Points[0].Predicted = 0

	out, err := RenderForecast(res, FormatSummary)
	require.Nil(t, err)
	assert.Contains(t, out, "Trend: Undefined")
	assert.NotContains(t, out, "Stable")
}

func TestRenderForecastDetailed(t *testing.T) {
	out, err := RenderForecast(sampleForecast(), FormatDetailed)
	require.Nil(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(3), decoded["months_ahead"])
	assert.NotNil(t, decoded["trend"])
	assert.NotNil(t, decoded["predictions"])
}

func sampleHistory() *HistoricalSeries {
	points := monthlyPointsHelper(2023, 12, 100000)
	points = append(points, monthlyPointsHelper(2024, 10, 95000)...)
	return &HistoricalSeries{
		Offense:  vocab.Burglary,
		Region:   vocab.National,
		FromYear: 2023,
		ToYear:   2024,
		Points:   points,
	}
}

func monthlyPointsHelper(year, months, value int) []HistoryPoint {
	out := make([]HistoryPoint, 0, months)
	for m := 1; m <= months; m++ {
		out = append(out, HistoryPoint{
			Period: Period{Year: year, Month: time.Month(m)},
			Actual: int64(value),
		})
	}
	return out
}

func TestRenderHistorySummary(t *testing.T) {
	out, err := RenderHistory(sampleHistory(), FormatSummary)
	require.Nil(t, err)

	assert.Contains(t, out, "Burglary Historical Data (National)")
	assert.Contains(t, out, "Period: 2023 - 2024")
	assert.Contains(t, out, "Source: FBI Crime Data Explorer (UCR)")
	assert.Contains(t, out, "- 2023: 1,200,000 incidents")
	assert.Contains(t, out, "- 2024: 950,000 incidents (partial: 10 of 12 months reported)")
	assert.Contains(t, out, "Overall Trend:")
	assert.Contains(t, out, "Monthly data points: 22")
}

func TestRenderHistoryDetailed(t *testing.T) {
	out, err := RenderHistory(sampleHistory(), FormatDetailed)
	require.Nil(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	totals, ok := decoded["annual_totals"].([]interface{})
	require.True(t, ok)
	assert.Len(t, totals, 2)
}

func sampleComparison() *ComparisonTable {
	return &ComparisonTable{
		Region:      vocab.National,
		MonthsAhead: 6,
		Metric:      MetricPercentChange,
		Rows: []ComparisonRow{
			{
				Offense: vocab.MotorVehicleTheft, Current: 70000, Forecast: 83822,
				Change: 13822, PercentChange: 19.745, ChangeDefined: true,
				Significant: true, ModelType: "SARIMA",
				TrainingEnd: Period{2024, time.October}, Available: true,
			},
			{
				Offense: vocab.Burglary, Current: 110000, Forecast: 104500,
				Change: -5500, PercentChange: -5.0, ChangeDefined: true,
				ModelType: "SARIMA", TrainingEnd: Period{2024, time.October}, Available: true,
			},
		},
	}
}

func TestRenderComparisonSummary(t *testing.T) {
	out, err := RenderComparison(sampleComparison(), FormatSummary)
	require.Nil(t, err)

	assert.Contains(t, out, "Crime Trend Comparison - National (6-month forecast):")
	assert.Contains(t, out, "+19.7% *")
	assert.Contains(t, out, "-5.0%")
	assert.Contains(t, out, "* projected change exceeds 10%")
	assert.Contains(t, out, "Models: SARIMA (data through Oct 2024)")

	// Ranked first
	assert.Less(t, strings.Index(out, "Motor Vehicle Theft"), strings.Index(out, "Burglary"))
}

func TestRenderComparisonUnavailableSection(t *testing.T) {
	table := sampleComparison()
	table.Rows = append(table.Rows, ComparisonRow{
		Offense:     vocab.Homicide,
		Unavailable: "prediction backend returned 404",
	})

	out, err := RenderComparison(table, FormatSummary)
	require.Nil(t, err)
	assert.Contains(t, out, "Unavailable:")
	assert.Contains(t, out, "homicide: prediction backend returned 404")
}

func TestRenderComparisonNoSignificantFootnote(t *testing.T) {
	table := sampleComparison()
	table.Rows = table.Rows[1:] // only the -5.0% row

	out, err := RenderComparison(table, FormatSummary)
	require.Nil(t, err)
	assert.NotContains(t, out, "* projected change exceeds")
}

func TestRenderComparisonAbsoluteMetric(t *testing.T) {
	table := sampleComparison()
	table.Metric = MetricAbsolute

	out, err := RenderComparison(table, FormatSummary)
	require.Nil(t, err)
	assert.Contains(t, out, "+13,822")
	assert.Contains(t, out, "-5,500")
}

func TestRenderComparisonDetailed(t *testing.T) {
	out, err := RenderComparison(sampleComparison(), FormatDetailed)
	require.Nil(t, err)

	var decoded ComparisonTable
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 6, decoded.MonthsAhead)
	require.Len(t, decoded.Rows, 2)
	assert.True(t, decoded.Rows[0].Significant)
}

func TestRenderModelsList(t *testing.T) {
	models := []ModelDescriptor{
		{Offense: "burglary", ModelType: "SARIMA", MAPE: 4.2, TrainingEnd: Period{2024, time.October}},
		{Offense: "homicide", ModelType: "SARIMA", MAPE: 7.1, TrainingEnd: Period{2024, time.October}},
	}

	out := RenderModelsList(models, vocab.National)
	assert.Contains(t, out, "Available Forecast Models (National):")
	assert.Contains(t, out, "1. Burglary")
	assert.Contains(t, out, "2. Homicide")
	assert.Contains(t, out, "Error rate (MAPE): 4.2%")
	assert.Contains(t, out, "Supported states")
}

func TestRenderModelsListEmpty(t *testing.T) {
	out := RenderModelsList(nil, vocab.National)
	assert.Contains(t, out, "No models are currently registered")
}

func TestRenderModelDetails(t *testing.T) {
	model := &ModelDescriptor{
		Offense:     "motor-vehicle-theft",
		ModelType:   "SARIMA",
		MAPE:        6.3,
		TrainingEnd: Period{2024, time.October},
		Parameters:  ModelParameters{Order: []int{1, 1, 1}, SeasonalOrder: []int{1, 1, 1, 12}},
	}

	out := RenderModelDetails(vocab.MotorVehicleTheft, model, vocab.National)
	assert.Contains(t, out, "Motor Vehicle Theft (National)")
	assert.Contains(t, out, "Definition:")
	assert.Contains(t, out, "- Type: SARIMA (seasonal)")
	assert.Contains(t, out, "- Error rate (MAPE): 6.3% (lower is better)")
	assert.Contains(t, out, "- Order: (1, 1, 1)")
	assert.Contains(t, out, "- Seasonal order: (1, 1, 1, 12)")
}

func TestRenderModelDetailsNoModel(t *testing.T) {
	out := RenderModelDetails(vocab.Homicide, nil, vocab.National)
	assert.Contains(t, out, "Definition:")
	assert.Contains(t, out, "No forecast model is currently registered")
}
