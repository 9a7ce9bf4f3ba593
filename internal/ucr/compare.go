package ucr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// Comparison cardinality bounds.
const (
	MinCompareOffenses = 2
	MaxCompareOffenses = 5
)

// ValidateCompareOffenses checks the offense list cardinality and rejects
// duplicates after normalization, so "mvt" and "motor-vehicle-theft" in the
// same request fail rather than producing two rows for one offense.
func ValidateCompareOffenses(offenses []vocab.Offense) *errors.Error {
	if len(offenses) < MinCompareOffenses || len(offenses) > MaxCompareOffenses {
		return errors.NewInvalidCardinality(
			fmt.Sprintf("Comparison requires between %d and %d offense types, got %d",
				MinCompareOffenses, MaxCompareOffenses, len(offenses)))
	}
	seen := make(map[vocab.Offense]bool, len(offenses))
	for _, o := range offenses {
		if seen[o] {
			return errors.NewInvalidCardinality(
				fmt.Sprintf("Offense %q appears more than once after normalization", o))
		}
		seen[o] = true
	}
	return nil
}

// BuildComparison fetches current and forecast values for every offense
// concurrently and assembles the ranked table. Per-offense failures degrade
// to annotated unavailable rows; only when every offense fails does the whole
// call fail with the first error.
func BuildComparison(ctx context.Context, svc Service, logger *zap.Logger, offenses []vocab.Offense, region vocab.Region, monthsAhead int, metric Metric) (*ComparisonTable, *errors.Error) {
	if err := ValidateCompareOffenses(offenses); err != nil {
		return nil, err
	}
	if err := ValidateMonthsAhead(monthsAhead); err != nil {
		return nil, err
	}

	// One slot per offense, written only by that offense's goroutine.
	rows := make([]ComparisonRow, len(offenses))
	var wg sync.WaitGroup
	for i, offense := range offenses {
		wg.Add(1)
		go func(i int, offense vocab.Offense) {
			defer wg.Done()
			rows[i] = fetchRow(ctx, svc, offense, region, monthsAhead)
		}(i, offense)
	}
	wg.Wait()

	available := 0
	var firstErr string
	for _, row := range rows {
		if row.Available {
			available++
		} else if firstErr == "" {
			firstErr = row.Unavailable
		}
	}
	if available == 0 {
		logger.Warn("Comparison failed for all offenses",
			zap.Int("offenses", len(offenses)),
			zap.String("region", string(region)),
		)
		return nil, errors.NewBackendUnavailable("comparison backends",
			fmt.Sprintf("Could not retrieve data for any of the requested offenses: %s", firstErr), true)
	}

	sortRows(rows, metric)

	return &ComparisonTable{
		Region:      region,
		MonthsAhead: monthsAhead,
		Metric:      metric,
		Rows:        rows,
	}, nil
}

// fetchRow builds one comparison row: the latest actual as the current value
// and the final predicted month as the forecast value.
func fetchRow(ctx context.Context, svc Service, offense vocab.Offense, region vocab.Region, monthsAhead int) ComparisonRow {
	row := ComparisonRow{Offense: offense}

	history, herr := svc.FetchRecentHistory(ctx, offense, region, 1)
	if herr != nil {
		row.Unavailable = herr.Message
		return row
	}
	if len(history) == 0 {
		row.Unavailable = fmt.Sprintf("No recent history reported for %s", offense)
		return row
	}
	forecast, ferr := svc.FetchForecast(ctx, offense, region, monthsAhead)
	if ferr != nil {
		row.Unavailable = ferr.Message
		return row
	}

	row.Current = float64(history[len(history)-1].Actual)
	row.Forecast = forecast.Points[len(forecast.Points)-1].Predicted
	row.Change = row.Forecast - row.Current
	row.PercentChange, row.ChangeDefined = PercentChange(row.Current, row.Forecast)
	row.Significant = Significant(row.PercentChange, row.ChangeDefined)
	row.ModelType = forecast.Model.ModelType
	row.TrainingEnd = forecast.Model.TrainingEnd
	row.Available = true
	return row
}

// sortRows orders rows by signed change descending (largest increase first),
// with ties broken by offense name. Unavailable rows and rows with undefined
// change sink below every ranked row, themselves ordered by offense name.
func sortRows(rows []ComparisonRow, metric Metric) {
	rank := func(r ComparisonRow) float64 {
		if metric == MetricAbsolute {
			return r.Change
		}
		return r.PercentChange
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		aRanked := a.Available && a.ChangeDefined
		bRanked := b.Available && b.ChangeDefined
		if aRanked != bRanked {
			return aRanked
		}
		if !aRanked {
			return strings.Compare(string(a.Offense), string(b.Offense)) < 0
		}
		if rank(a) != rank(b) {
			return rank(a) > rank(b)
		}
		return strings.Compare(string(a.Offense), string(b.Offense)) < 0
	})
}
