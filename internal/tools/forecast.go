package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
)

// recentHistoryMonths is how much trailing context include_history adds.
const recentHistoryMonths = 3

// ForecastTool predicts future incident counts for one offense type.
type ForecastTool struct {
	*BaseTool
}

// NewForecastTool creates a new tool instance
func NewForecastTool(svc ucr.Service, logger *zap.Logger) *ForecastTool {
	return &ForecastTool{
		BaseTool: NewBaseTool(svc, logger),
	}
}

// Name returns the tool name
func (t *ForecastTool) Name() string {
	return "ucr_forecast"
}

// Annotations returns tool hints for LLMs
func (t *ForecastTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Crime Forecast")
}

// Description returns the tool description
func (t *ForecastTool) Description() string {
	return `Forecast future crime incident counts for a US offense category using trained time-series models.

**When to use:**
- Questions about expected or projected crime levels ("will burglaries go up next quarter?")
- Planning horizons up to 12 months ahead, nationally or for a supported state

**Notes:**
- Forecasts come with confidence ranges and the model's error rate (MAPE); treat them as estimates, not facts
- Offense aliases like "mvt" or "car theft" are accepted and normalized`
}

// InputSchema returns the input schema
func (t *ForecastTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"offense": map[string]interface{}{
				"type":        "string",
				"description": "Offense type: violent-crime, property-crime, homicide, burglary, or motor-vehicle-theft (common aliases accepted)",
			},
			"months_ahead": map[string]interface{}{
				"type":        "integer",
				"description": "Forecast horizon in months, 1-12 (default 6)",
				"minimum":     1,
				"maximum":     12,
				"default":     6,
			},
			"include_history": map[string]interface{}{
				"type":        "boolean",
				"description": "Include the most recent actual counts before the forecast (default false)",
				"default":     false,
			},
			"state": map[string]interface{}{
				"type":        "string",
				"description": "Optional 2-letter state code (CA, TX, FL, NY, IL). Omit for national data",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Output format: 'summary' (default) or 'detailed'",
				"enum":        []string{"summary", "detailed"},
			},
		},
		"required": []string{"offense"},
	}
}

// DefaultTimeout returns the recommended timeout
func (t *ForecastTool) DefaultTimeout() time.Duration {
	return 30 * time.Second
}

// Execute executes the tool
func (t *ForecastTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	offense, region, format, derr := resolveCommonParams(arguments)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}

	monthsAhead, err := GetIntParam(arguments, "months_ahead", ucr.DefaultMonthsAhead)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	includeHistory, err := GetBoolParam(arguments, "include_history", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	result, derr := t.svc.FetchForecast(ctx, offense, region, monthsAhead)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}

	if includeHistory {
		history, herr := t.svc.FetchRecentHistory(ctx, offense, region, recentHistoryMonths)
		if herr != nil {
			// The forecast stands on its own; missing context is not fatal.
			t.logger.Warn("Recent history unavailable for forecast context",
				zap.String("offense", string(offense)),
				zap.String("error", herr.Message),
			)
		} else {
			result.History = history
		}
	}

	text, derr := ucr.RenderForecast(result, format)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}
	return NewToolResultText(text), nil
}
