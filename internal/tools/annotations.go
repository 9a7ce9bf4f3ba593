package tools

import "github.com/modelcontextprotocol/go-sdk/mcp"

// Annotation helper functions to create common annotation patterns.
// Every tool in this server is read-only: nothing mutates backend state.

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// QueryAnnotations returns annotations for tools that query the backends.
// Results depend on live backend data, so repeated calls are safe but not
// guaranteed identical.
func QueryAnnotations(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:          title,
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false), // bounded offense and region vocabulary
	}
}

// ReferenceAnnotations returns annotations for tools that mostly serve
// static reference material.
func ReferenceAnnotations(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:          title,
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}
