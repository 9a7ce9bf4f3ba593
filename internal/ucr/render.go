package ucr

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
)

// Format selects the output rendering of a tool call.
type Format string

const (
	// FormatSummary is compact deterministic prose for direct agent use.
	FormatSummary Format = "summary"
	// FormatDetailed is the full structured payload as indented JSON.
	FormatDetailed Format = "detailed"
)

// ParseFormat validates a format name. Empty defaults to summary.
func ParseFormat(s string) (Format, *errors.Error) {
	switch Format(s) {
	case FormatSummary, FormatDetailed:
		return Format(s), nil
	case "":
		return FormatSummary, nil
	default:
		return "", errors.NewInvalidFormat(s)
	}
}

// printer renders counts with US thousands separators. Rendering is
// deterministic: same input, same output, byte for byte.
var printer = message.NewPrinter(language.AmericanEnglish)

// formatCount renders a rounded count with thousands separators.
func formatCount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// formatSignedCount renders a rounded count with an explicit sign.
func formatSignedCount(v float64) string {
	rounded := int64(math.Round(v))
	if rounded >= 0 {
		return "+" + printer.Sprintf("%d", rounded)
	}
	return printer.Sprintf("%d", rounded)
}

// formatPercent renders a signed percent with one decimal, e.g. "-2.1%".
func formatPercent(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct)
}

// trendLine renders the classified trend. An undefined trend is stated
// outright instead of being mislabeled as stable.
func trendLine(label string, t TrendSummary) string {
	if !t.Defined {
		return fmt.Sprintf("%s: Undefined (first value is zero, so percent change cannot be computed)", label)
	}
	return fmt.Sprintf("%s: %s (%s)", label, t.Direction, formatPercent(t.PercentChange))
}

// modelLine renders the model provenance footer. MAPE is always framed as an
// error rate; it is never inverted into an accuracy percentage.
func modelLine(m ModelInfo) string {
	line := fmt.Sprintf("Model: %s | Error rate (MAPE): %.1f%%", m.ModelType, m.MAPE)
	if !m.TrainingEnd.IsZero() {
		line += fmt.Sprintf(" | Data through: %s", m.TrainingEnd.Display())
	}
	return line
}

// RenderForecast renders a forecast result in the requested format.
func RenderForecast(res *ForecastResult, format Format) (string, *errors.Error) {
	if format == FormatDetailed {
		return renderForecastDetailed(res)
	}
	return renderForecastSummary(res), nil
}

func renderForecastSummary(res *ForecastResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Forecast (%s, next %d months):\n",
		res.Offense.DisplayName(), res.Region.DisplayName(), len(res.Points))

	if len(res.History) > 0 {
		b.WriteString("\nRecent History:\n")
		for _, h := range res.History {
			fmt.Fprintf(&b, "- %s: %s incidents\n", h.Period.Display(), formatCount(float64(h.Actual)))
		}
	}

	b.WriteString("\nPredicted Incidents:\n")
	for _, p := range res.Points {
		fmt.Fprintf(&b, "- %s: ~%s (range: %s - %s)\n",
			p.Period.Display(), formatCount(p.Predicted), formatCount(p.Lower), formatCount(p.Upper))
	}

	b.WriteString("\n")
	b.WriteString(trendLine("Trend", ClassifyForecastTrend(res.Points)))
	b.WriteString("\n")
	b.WriteString(modelLine(res.Model))
	b.WriteString("\n")
	return b.String()
}

func renderForecastDetailed(res *ForecastResult) (string, *errors.Error) {
	detail := struct {
		*ForecastResult
		MonthsAhead int          `json:"months_ahead"`
		Trend       TrendSummary `json:"trend"`
	}{
		ForecastResult: res,
		MonthsAhead:    len(res.Points),
		Trend:          ClassifyForecastTrend(res.Points),
	}
	return marshalDetailed(detail)
}

// RenderHistory renders a historical series in the requested format. The
// summary reports annual totals with partial-year markers and a trend over
// those totals.
func RenderHistory(series *HistoricalSeries, format Format) (string, *errors.Error) {
	if format == FormatDetailed {
		return renderHistoryDetailed(series)
	}
	return renderHistorySummary(series), nil
}

func renderHistorySummary(series *HistoricalSeries) string {
	totals := series.AnnualTotals()

	var b strings.Builder
	fmt.Fprintf(&b, "%s Historical Data (%s)\n", series.Offense.DisplayName(), series.Region.DisplayName())
	fmt.Fprintf(&b, "Period: %d - %d\n", series.FromYear, series.ToYear)
	b.WriteString("Source: FBI Crime Data Explorer (UCR)\n")

	b.WriteString("\nAnnual Totals:\n")
	for _, t := range totals {
		fmt.Fprintf(&b, "- %d: %s incidents", t.Year, formatCount(float64(t.Total)))
		if t.Partial {
			fmt.Fprintf(&b, " (partial: %d of 12 months reported)", t.Months)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(trendLine("Overall Trend", ClassifyAnnualTrend(totals)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Monthly data points: %d\n", len(series.Points))
	return b.String()
}

func renderHistoryDetailed(series *HistoricalSeries) (string, *errors.Error) {
	totals := series.AnnualTotals()
	detail := struct {
		*HistoricalSeries
		AnnualTotals []AnnualTotal `json:"annual_totals"`
		Trend        TrendSummary  `json:"trend"`
	}{
		HistoricalSeries: series,
		AnnualTotals:     totals,
		Trend:            ClassifyAnnualTrend(totals),
	}
	return marshalDetailed(detail)
}

// RenderComparison renders a ranked comparison table in the requested format.
func RenderComparison(table *ComparisonTable, format Format) (string, *errors.Error) {
	if format == FormatDetailed {
		return marshalDetailed(table)
	}
	return renderComparisonSummary(table), nil
}

func renderComparisonSummary(table *ComparisonTable) string {
	type line struct {
		offense, current, forecast, change string
		significant                        bool
	}

	var lines []line
	var unavailable []ComparisonRow
	for _, row := range table.Rows {
		if !row.Available {
			unavailable = append(unavailable, row)
			continue
		}
		change := "n/a"
		if row.ChangeDefined {
			if table.Metric == MetricAbsolute {
				change = formatSignedCount(row.Change)
			} else {
				change = formatPercent(row.PercentChange)
			}
		}
		lines = append(lines, line{
			offense:     row.Offense.DisplayName(),
			current:     formatCount(row.Current),
			forecast:    formatCount(row.Forecast),
			change:      change,
			significant: row.Significant,
		})
	}

	offenseW, currentW, forecastW := len("Offense"), len("Current"), len("Predicted")
	for _, l := range lines {
		offenseW = maxInt(offenseW, len(l.offense))
		currentW = maxInt(currentW, len(l.current))
		forecastW = maxInt(forecastW, len(l.forecast))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Crime Trend Comparison - %s (%d-month forecast):\n\n",
		table.Region.DisplayName(), table.MonthsAhead)
	fmt.Fprintf(&b, "%-*s  %*s  %*s  %s\n", offenseW, "Offense", currentW, "Current", forecastW, "Predicted", "Change")
	b.WriteString(strings.Repeat("-", offenseW+currentW+forecastW+14))
	b.WriteString("\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "%-*s  %*s  %*s  %s", offenseW, l.offense, currentW, l.current, forecastW, l.forecast, l.change)
		if l.significant {
			b.WriteString(" *")
		}
		b.WriteString("\n")
	}

	hasSignificant := false
	for _, l := range lines {
		if l.significant {
			hasSignificant = true
			break
		}
	}
	if hasSignificant {
		fmt.Fprintf(&b, "\n* projected change exceeds %.0f%%\n", SignificanceThreshold)
	}

	if len(unavailable) > 0 {
		b.WriteString("\nUnavailable:\n")
		for _, row := range unavailable {
			fmt.Fprintf(&b, "- %s: %s\n", row.Offense, row.Unavailable)
		}
	}

	if footer := modelsFooter(table.Rows); footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}
	return b.String()
}

// modelsFooter summarizes the distinct models behind the available rows, in
// row order.
func modelsFooter(rows []ComparisonRow) string {
	seen := make(map[string]bool)
	var parts []string
	for _, row := range rows {
		if !row.Available || row.ModelType == "" {
			continue
		}
		key := row.ModelType + "|" + row.TrainingEnd.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		if row.TrainingEnd.IsZero() {
			parts = append(parts, row.ModelType)
		} else {
			parts = append(parts, fmt.Sprintf("%s (data through %s)", row.ModelType, row.TrainingEnd.Display()))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Models: " + strings.Join(parts, ", ")
}

func marshalDetailed(v any) (string, *errors.Error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.New(errors.CodeInternal, errors.InternalError,
			fmt.Sprintf("failed to render detailed output: %v", err))
	}
	return string(b), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
