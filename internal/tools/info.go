package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// InfoTool describes the available offense categories and forecast models.
type InfoTool struct {
	*BaseTool
}

// NewInfoTool creates a new tool instance
func NewInfoTool(svc ucr.Service, logger *zap.Logger) *InfoTool {
	return &InfoTool{
		BaseTool: NewBaseTool(svc, logger),
	}
}

// Name returns the tool name
func (t *InfoTool) Name() string {
	return "ucr_info"
}

// Annotations returns tool hints for LLMs
func (t *InfoTool) Annotations() *mcp.ToolAnnotations {
	return ReferenceAnnotations("Crime Data Reference")
}

// Description returns the tool description
func (t *InfoTool) Description() string {
	return `Describe the supported offense categories, their UCR definitions, and the forecast models behind them.

**When to use:**
- Before forecasting, to check which offenses and states are covered
- To understand what a category includes (e.g. what counts as violent crime)
- To inspect a model's type, parameters, and error rate

Call without an offense for the full list, or with one for its detailed entry.`
}

// InputSchema returns the input schema
func (t *InfoTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"offense": map[string]interface{}{
				"type":        "string",
				"description": "Optional offense type for a detailed entry. Omit to list all available models",
			},
			"state": map[string]interface{}{
				"type":        "string",
				"description": "Optional 2-letter state code (CA, TX, FL, NY, IL). Omit for national models",
			},
		},
	}
}

// DefaultTimeout returns the recommended timeout
func (t *InfoTool) DefaultTimeout() time.Duration {
	return 15 * time.Second
}

// Execute executes the tool
func (t *InfoTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	region, derr := resolveRegion(arguments)
	if derr != nil {
		return HandleDomainError(derr, ucr.FormatSummary), nil
	}

	offenseStr, err := GetStringParam(arguments, "offense", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	models, derr := t.svc.FetchModels(ctx, region)
	if derr != nil {
		return HandleDomainError(derr, ucr.FormatSummary), nil
	}

	if offenseStr == "" {
		return NewToolResultText(ucr.RenderModelsList(models, region)), nil
	}

	offense, derr := vocab.NormalizeOffense(offenseStr)
	if derr != nil {
		return HandleDomainError(derr, ucr.FormatSummary), nil
	}

	var match *ucr.ModelDescriptor
	for i := range models {
		if models[i].Offense == string(offense) {
			match = &models[i]
			break
		}
	}
	if match == nil {
		t.logger.Debug("No registered model for offense",
			zap.String("offense", string(offense)),
			zap.String("region", string(region)),
		)
	}

	return NewToolResultText(ucr.RenderModelDetails(offense, match, region)), nil
}
