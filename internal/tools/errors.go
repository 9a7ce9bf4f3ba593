package tools

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
)

// NewToolResultText creates a successful tool result with text content
func NewToolResultText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: text,
			},
		},
	}
}

// NewToolResultError creates a new tool result with an error message
func NewToolResultError(message string) *mcp.CallToolResult {
	if message == "" {
		message = "An unknown error occurred"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: message,
			},
		},
		IsError: true,
	}
}

// NewToolResultErrorWithSuggestion creates a tool result with an error and recovery guidance
func NewToolResultErrorWithSuggestion(message, suggestion string) *mcp.CallToolResult {
	fullMessage := fmt.Sprintf("%s\n\n💡 **Suggestion:** %s", message, suggestion)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fullMessage,
			},
		},
		IsError: true,
	}
}

// HandleDomainError converts a structured domain error into a tool error
// result. Detailed format gets the full JSON error object so the caller can
// inspect code, details, and the transient flag; summary format gets the
// message with its recovery suggestion.
func HandleDomainError(derr *errors.Error, format ucr.Format) *mcp.CallToolResult {
	if format == ucr.FormatDetailed {
		return NewToolResultError(derr.ToJSON())
	}
	if derr.Suggestion != "" {
		return NewToolResultErrorWithSuggestion(derr.Message, derr.Suggestion)
	}
	return NewToolResultError(derr.Message)
}
