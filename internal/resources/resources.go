// Package resources provides MCP resource handlers for the UCR server.
// Resources expose read-only data to MCP clients for context and status information.
package resources

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/audit"
	"github.com/crimetrends/ucr-mcp-server/internal/config"
	"github.com/crimetrends/ucr-mcp-server/internal/metrics"
	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// Registry holds all registered resources and their handlers
type Registry struct {
	config  *config.Config
	metrics *metrics.Metrics
	audit   *audit.Logger
	logger  *zap.Logger
	version string
}

// NewRegistry creates a new resource registry
func NewRegistry(cfg *config.Config, m *metrics.Metrics, a *audit.Logger, logger *zap.Logger, version string) *Registry {
	return &Registry{
		config:  cfg,
		metrics: m,
		audit:   a,
		logger:  logger,
		version: version,
	}
}

// RegisteredResource represents a resource with its definition and handler
type RegisteredResource struct {
	Resource *mcp.Resource
	Handler  mcp.ResourceHandler
}

// GetResources returns all registered resources with their handlers
func (r *Registry) GetResources() []RegisteredResource {
	return []RegisteredResource{
		r.aboutResource(),
		r.vocabularyResource(),
		r.configResource(),
		r.statsResource(),
	}
}

// jsonResource marshals a payload into a single-content resource result
func (r *Registry) jsonResource(uri string, payload interface{}) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		r.logger.Error("Failed to marshal resource", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}

// aboutResource returns the about://service resource
func (r *Registry) aboutResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "about://service",
			Name:        "about://service",
			Title:       "About UCR Crime Data Server",
			Description: "Service information, data sources, and capabilities",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			aboutInfo := map[string]interface{}{
				"service": map[string]interface{}{
					"name":        "UCR Crime Data MCP Server",
					"description": "Forecasts and historical data for US crime statistics (FBI Uniform Crime Reporting)",
				},
				"data_sources": map[string]interface{}{
					"predictions": map[string]string{
						"name":        "UCR prediction service",
						"description": "Trained time-series models per offense and region; forecasts carry confidence ranges and an error rate (MAPE)",
					},
					"history": map[string]string{
						"name":        "FBI Crime Data Explorer API",
						"description": "Reported monthly incident counts from UCR summarized data, 2015 onward",
					},
				},
				"mcp_server": map[string]interface{}{
					"version":      r.version,
					"tools":        []string{"ucr_forecast", "ucr_history", "ucr_compare", "ucr_info"},
					"capabilities": []string{"tools", "prompts", "resources"},
				},
			}
			return r.jsonResource("about://service", aboutInfo)
		},
	}
}

// vocabularyResource returns the vocab://offenses resource with the full
// offense and region vocabulary, including accepted aliases.
func (r *Registry) vocabularyResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "vocab://offenses",
			Name:        "vocab://offenses",
			Title:       "Offense and Region Vocabulary",
			Description: "Canonical offense types, accepted aliases, and supported regions",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			payload := map[string]interface{}{
				"offenses":         vocab.Offenses(),
				"aliases":          vocab.Aliases(),
				"supported_states": vocab.States(),
				"default_region":   string(vocab.National),
			}
			return r.jsonResource("vocab://offenses", payload)
		},
	}
}

// configResource returns the config://current resource
func (r *Registry) configResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "config://current",
			Name:        "config://current",
			Title:       "Server Configuration",
			Description: "Current server configuration (sensitive values masked)",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			redacted := r.config.Redact()
			safeConfig := map[string]interface{}{
				"predict_service_url": redacted.PredictServiceURL,
				"history_service_url": redacted.HistoryServiceURL,
				"history_api_key":     redacted.HistoryAPIKey,
				"timeout":             redacted.Timeout.String(),
				"rate_limit":          redacted.RateLimit,
				"rate_limit_burst":    redacted.RateLimitBurst,
				"rate_limit_enabled":  redacted.EnableRateLimit,
				"tracing_enabled":     redacted.EnableTracing,
				"health_port":         redacted.HealthPort,
				"log_level":           redacted.LogLevel,
			}
			return r.jsonResource("config://current", safeConfig)
		},
	}
}

// statsResource returns the stats://server resource with operational metrics
// and recent audit activity.
func (r *Registry) statsResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "stats://server",
			Name:        "stats://server",
			Title:       "Server Statistics",
			Description: "Operational metrics and recent tool activity",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			stats := r.metrics.GetStats()
			payload := map[string]interface{}{
				"backend_requests": map[string]interface{}{
					"total":            stats.TotalRequests,
					"successful":       stats.SuccessfulRequests,
					"failed":           stats.FailedRequests,
					"rate_limit_waits": stats.RateLimitWaits,
					"avg_latency":      stats.AverageLatency.String(),
				},
				"tool_usage":  stats.ToolUsage,
				"tool_errors": stats.ToolErrors,
				"audit":       r.audit.GetStats(),
			}
			return r.jsonResource("stats://server", payload)
		},
	}
}
