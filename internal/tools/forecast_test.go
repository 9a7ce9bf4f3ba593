package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
)

func TestForecastToolExecute(t *testing.T) {
	svc := &stubService{}
	tool := NewForecastTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense":      "burglary",
		"months_ahead": 3.0,
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Burglary Forecast (National, next 3 months):")
	assert.Contains(t, text, "Error rate (MAPE)")
	assert.Equal(t, 1, svc.forecastCalls)
	assert.Zero(t, svc.recentCalls, "history must not be fetched unless requested")
}

func TestForecastToolAcceptsAliases(t *testing.T) {
	tool := NewForecastTool(&stubService{}, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense": "car theft",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Motor Vehicle Theft")
}

func TestForecastToolInvalidOffense(t *testing.T) {
	tool := NewForecastTool(&stubService{}, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense": "burglry",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Unknown offense type")
	assert.Contains(t, text, "💡 **Suggestion:**")
	assert.Contains(t, text, `"burglary"`)
}

func TestForecastToolMissingOffense(t *testing.T) {
	tool := NewForecastTool(&stubService{}, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "offense")
}

func TestForecastToolMonthsOutOfRange(t *testing.T) {
	svc := &stubService{
		forecastErr: errors.NewOutOfRange("months_ahead", 24, ucr.MinMonthsAhead, ucr.MaxMonthsAhead, ucr.MaxMonthsAhead),
	}
	tool := NewForecastTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense":      "homicide",
		"months_ahead": 24.0,
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "months_ahead must be between 1 and 12")
	assert.Contains(t, text, "months_ahead=12", "suggestion carries the nearest valid value")
}

func TestForecastToolIncludeHistory(t *testing.T) {
	svc := &stubService{
		recent: []ucr.HistoryPoint{
			{Period: ucr.Period{Year: 2024, Month: time.December}, Actual: 950},
		},
	}
	tool := NewForecastTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense":         "burglary",
		"include_history": true,
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Recent History:")
	assert.Equal(t, 1, svc.recentCalls)
}

func TestForecastToolHistoryFailureIsNotFatal(t *testing.T) {
	svc := &stubService{
		recentErr: errors.NewBackendUnavailable("UCR prediction service", "history endpoint down", true),
	}
	tool := NewForecastTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense":         "burglary",
		"include_history": true,
	})
	require.NoError(t, err)
	assert.False(t, result.IsError, "forecast must still render when the history context fails")

	text := resultText(t, result)
	assert.NotContains(t, text, "Recent History:")
	assert.Contains(t, text, "Predicted Incidents:")
}

func TestForecastToolBackendError(t *testing.T) {
	svc := &stubService{
		forecastErr: errors.NewBackendUnavailable("UCR prediction service", "connection refused", true),
	}
	tool := NewForecastTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense": "homicide",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Try again in a few minutes")
}

func TestForecastToolDetailedErrorIsJSON(t *testing.T) {
	tool := NewForecastTool(&stubService{}, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense": "arson",
		"format":  "detailed",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"code":"INVALID_OFFENSE"`)
	assert.Contains(t, text, `"valid_offenses"`)
}

func TestForecastToolMetadata(t *testing.T) {
	tool := NewForecastTool(&stubService{}, zap.NewNop())
	assert.Equal(t, "ucr_forecast", tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.NotNil(t, tool.InputSchema())
	assert.Equal(t, 30*time.Second, tool.DefaultTimeout())

	ann := tool.Annotations()
	require.NotNil(t, ann)
	assert.True(t, ann.ReadOnlyHint)
	require.NotNil(t, ann.OpenWorldHint)
	assert.False(t, *ann.OpenWorldHint)
}
