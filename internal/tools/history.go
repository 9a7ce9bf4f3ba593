package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
)

// HistoryTool retrieves reported incident counts from the FBI Crime Data
// Explorer.
type HistoryTool struct {
	*BaseTool
}

// NewHistoryTool creates a new tool instance
func NewHistoryTool(svc ucr.Service, logger *zap.Logger) *HistoryTool {
	return &HistoryTool{
		BaseTool: NewBaseTool(svc, logger),
	}
}

// Name returns the tool name
func (t *HistoryTool) Name() string {
	return "ucr_history"
}

// Annotations returns tool hints for LLMs
func (t *HistoryTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Crime History")
}

// Description returns the tool description
func (t *HistoryTool) Description() string {
	return `Retrieve reported crime incident counts from the FBI Crime Data Explorer (Uniform Crime Reporting data).

**When to use:**
- Questions about actual reported crime levels over past years ("how has homicide changed since 2020?")
- Grounding a forecast discussion in what really happened

**Notes:**
- Data covers whole calendar years from 2015 onward; the most recent year is usually incomplete and is marked partial
- These are reported incidents, subject to agency reporting gaps`
}

// InputSchema returns the input schema
func (t *HistoryTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"offense": map[string]interface{}{
				"type":        "string",
				"description": "Offense type: violent-crime, property-crime, homicide, burglary, or motor-vehicle-theft (common aliases accepted)",
			},
			"from_year": map[string]interface{}{
				"type":        "integer",
				"description": "First year of the window, 2015 or later (default 2020)",
				"minimum":     2015,
				"default":     2020,
			},
			"to_year": map[string]interface{}{
				"type":        "integer",
				"description": "Last year of the window (default: current year)",
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
func (t *HistoryTool) DefaultTimeout() time.Duration {
	return 30 * time.Second
}

// Execute executes the tool
func (t *HistoryTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	offense, region, format, derr := resolveCommonParams(arguments)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}

	fromYear, err := GetIntParam(arguments, "from_year", ucr.DefaultFromYear)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	toYear, err := GetIntParam(arguments, "to_year", 0)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	series, derr := t.svc.FetchHistory(ctx, offense, region, fromYear, toYear)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}

	t.logger.Debug("History retrieved",
		zap.String("offense", string(offense)),
		zap.String("region", string(region)),
		zap.Int("points", len(series.Points)),
	)

	text, derr := ucr.RenderHistory(series, format)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}
	return NewToolResultText(text), nil
}
