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

func TestHistoryToolExecute(t *testing.T) {
	svc := &stubService{}
	tool := NewHistoryTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense":   "homicide",
		"from_year": 2021.0,
		"to_year":   2023.0,
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Homicide Historical Data (National)")
	assert.Contains(t, text, "Period: 2021 - 2023")
	assert.Contains(t, text, "Source: FBI Crime Data Explorer (UCR)")
	assert.Equal(t, 1, svc.historyCalls)
}

func TestHistoryToolDefaultsPassThrough(t *testing.T) {
	svc := &stubService{}
	tool := NewHistoryTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense": "burglary",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	// The gateway owns year defaulting; the tool passes 0 for to_year
	// untouched so "current year" is resolved in one place.
	assert.Equal(t, ucr.DefaultFromYear, svc.historyFrom)
	assert.Zero(t, svc.historyTo)
}

func TestHistoryToolYearRangeError(t *testing.T) {
	svc := &stubService{
		historyErr: errors.NewYearRange("from_year must be 2015 or later, got 2010", map[string]any{
			"from_year": 2010, "min_year": 2015,
		}),
	}
	tool := NewHistoryTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense":   "burglary",
		"from_year": 2010.0,
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "from_year must be 2015 or later")
}

func TestHistoryToolNoDataError(t *testing.T) {
	svc := &stubService{
		historyErr: errors.NewBackendUnavailable("FBI Crime Data Explorer",
			"No Homicide data reported for California between 2020 and 2024", false),
	}
	tool := NewHistoryTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense": "homicide",
		"state":   "CA",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No Homicide data reported")
}

func TestHistoryToolUnsupportedState(t *testing.T) {
	svc := &stubService{}
	tool := NewHistoryTool(svc, zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"offense": "burglary",
		"state":   "WA",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "not supported")
	assert.Contains(t, text, "aggregate")
	assert.Zero(t, svc.historyCalls, "validation failures must not reach the backend")
}

func TestHistoryToolMetadata(t *testing.T) {
	tool := NewHistoryTool(&stubService{}, zap.NewNop())
	assert.Equal(t, "ucr_history", tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.Equal(t, 30*time.Second, tool.DefaultTimeout())
}
