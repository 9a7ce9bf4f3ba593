package tools

import (
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
)

// GetAllTools returns all available MCP tools. This factory function
// centralizes tool creation and makes it easy to add new tools.
func GetAllTools(svc ucr.Service, logger *zap.Logger) []Tool {
	return []Tool{
		NewForecastTool(svc, logger),
		NewHistoryTool(svc, logger),
		NewCompareTool(svc, logger),
		NewInfoTool(svc, logger),
	}
}
