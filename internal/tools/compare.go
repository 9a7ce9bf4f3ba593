package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// CompareTool ranks projected trends across multiple offense types.
type CompareTool struct {
	*BaseTool
}

// NewCompareTool creates a new tool instance
func NewCompareTool(svc ucr.Service, logger *zap.Logger) *CompareTool {
	return &CompareTool{
		BaseTool: NewBaseTool(svc, logger),
	}
}

// Name returns the tool name
func (t *CompareTool) Name() string {
	return "ucr_compare"
}

// Annotations returns tool hints for LLMs
func (t *CompareTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Crime Trend Comparison")
}

// Description returns the tool description
func (t *CompareTool) Description() string {
	return `Compare projected trends across 2-5 offense types side by side, ranked by projected change.

**When to use:**
- "Which crime types are rising fastest?"
- Prioritizing attention across offense categories for a region

**Notes:**
- Rows are ranked largest projected increase first; changes beyond 10% are flagged as significant
- If data for some offenses cannot be retrieved, the comparison still returns the rest with the failures noted`
}

// InputSchema returns the input schema
func (t *CompareTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"offenses": map[string]interface{}{
				"type":        "array",
				"description": "2-5 distinct offense types to compare",
				"items": map[string]interface{}{
					"type": "string",
				},
				"minItems": 2,
				"maxItems": 5,
			},
			"months_ahead": map[string]interface{}{
				"type":        "integer",
				"description": "Forecast horizon in months, 1-12 (default 6)",
				"minimum":     1,
				"maximum":     12,
				"default":     6,
			},
			"metric": map[string]interface{}{
				"type":        "string",
				"description": "Ranking metric: 'percent_change' (default) or 'absolute'",
				"enum":        []string{"percent_change", "absolute"},
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
		"required": []string{"offenses"},
	}
}

// DefaultTimeout returns the recommended timeout. Comparison fans out several
// backend calls, so it gets more headroom than the single-offense tools.
func (t *CompareTool) DefaultTimeout() time.Duration {
	return 60 * time.Second
}

// Execute executes the tool
func (t *CompareTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	formatStr, err := GetStringParam(arguments, "format", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	format, derr := ucr.ParseFormat(formatStr)
	if derr != nil {
		return HandleDomainError(derr, ucr.FormatSummary), nil
	}

	rawOffenses, err := GetStringSliceParam(arguments, "offenses", true)
	if err != nil {
		return NewToolResultErrorWithSuggestion(err.Error(),
			"Provide between 2 and 5 distinct offense types."), nil
	}

	offenses := make([]vocab.Offense, 0, len(rawOffenses))
	for _, raw := range rawOffenses {
		offense, derr := vocab.NormalizeOffense(raw)
		if derr != nil {
			return HandleDomainError(derr, format), nil
		}
		offenses = append(offenses, offense)
	}

	region, derr := resolveRegion(arguments)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}

	monthsAhead, err := GetIntParam(arguments, "months_ahead", ucr.DefaultMonthsAhead)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	metricStr, err := GetStringParam(arguments, "metric", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	metric, ok := ucr.ParseMetric(metricStr)
	if !ok {
		derr := errors.New(errors.CodeInvalidFormat, errors.ValidationError,
			fmt.Sprintf("Invalid metric %q", metricStr)).
			WithSuggestion("Use 'percent_change' or 'absolute'.")
		return HandleDomainError(derr, format), nil
	}

	table, derr := ucr.BuildComparison(ctx, t.svc, t.logger, offenses, region, monthsAhead, metric)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}

	t.logger.Debug("Comparison assembled",
		zap.Int("offenses", len(offenses)),
		zap.String("region", string(region)),
		zap.String("metric", string(metric)),
	)

	text, derr := ucr.RenderComparison(table, format)
	if derr != nil {
		return HandleDomainError(derr, format), nil
	}
	return NewToolResultText(text), nil
}
