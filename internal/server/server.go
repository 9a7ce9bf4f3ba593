// Package server provides the MCP server implementation for the UCR crime
// data service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/audit"
	"github.com/crimetrends/ucr-mcp-server/internal/client"
	"github.com/crimetrends/ucr-mcp-server/internal/config"
	"github.com/crimetrends/ucr-mcp-server/internal/health"
	"github.com/crimetrends/ucr-mcp-server/internal/metrics"
	"github.com/crimetrends/ucr-mcp-server/internal/prompts"
	"github.com/crimetrends/ucr-mcp-server/internal/resources"
	"github.com/crimetrends/ucr-mcp-server/internal/tools"
	"github.com/crimetrends/ucr-mcp-server/internal/tracing"
	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
)

// Server represents the MCP server
type Server struct {
	mcpServer    *mcp.Server
	apiClient    *client.Client
	gateway      *ucr.Gateway
	config       *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	audit        *audit.Logger
	version      string
	healthServer *health.Server
}

// New creates a new MCP server instance.
func New(cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	metricsTracker := metrics.New(logger)
	apiClient := client.New(cfg, logger, version)
	apiClient.SetRecorder(metricsTracker)
	gateway := ucr.NewGateway(apiClient, logger)

	// Create MCP server with tools, prompts, and resources capabilities
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "UCR Crime Data MCP Server",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasPrompts:   true,
		HasResources: true,
	})

	s := &Server{
		mcpServer: mcpServer,
		apiClient: apiClient,
		gateway:   gateway,
		config:    cfg,
		logger:    logger,
		metrics:   metricsTracker,
		audit:     audit.NewLogger(logger, true),
		version:   version,
	}

	// Create health server if port is configured (port > 0)
	if cfg.HealthPort > 0 {
		healthChecker := health.New(apiClient, cfg, logger)
		s.healthServer = health.NewServer(healthChecker, logger, cfg.HealthPort, cfg.HealthBindAddr, cfg.MetricsEndpoint)
	}

	s.registerTools()
	s.registerPrompts()
	s.registerResources()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	for _, t := range tools.GetAllTools(s.gateway, s.logger) {
		s.registerTool(t)
	}
	s.logger.Info("Registered all MCP tools")
}

// registerTool wraps a tool with metrics, tracing, and audit logging and
// registers it with the MCP server.
func (s *Server) registerTool(t tools.Tool) {
	toolName := t.Name()

	mcpTool := &mcp.Tool{
		Name:        toolName,
		Description: t.Description(),
		InputSchema: t.InputSchema(),
		Annotations: t.Annotations(),
	}

	handler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		ctx, span := tracing.ToolSpan(ctx, toolName)
		defer span.End()

		var args map[string]interface{}
		if len(request.Params.Arguments) > 0 {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				s.metrics.RecordToolExecution(toolName, false, time.Since(start))
				tracing.RecordError(span, err)
				return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
			}
		}

		result, err := t.Execute(ctx, args)
		duration := time.Since(start)
		success := err == nil && (result == nil || !result.IsError)

		s.metrics.RecordToolExecution(toolName, success, duration)
		if err != nil {
			tracing.RecordError(span, err)
		} else if success {
			tracing.SetSuccess(span)
		}

		offense, _ := args["offense"].(string)
		region, _ := args["state"].(string)
		s.audit.LogToolExecution(ctx, toolName, offense, region, success, duration, err)

		return result, err
	}

	s.mcpServer.AddTool(mcpTool, handler)
	s.logger.Debug("Registered tool", zap.String("tool", mcpTool.Name))
}

// registerPrompts registers all available MCP prompts
func (s *Server) registerPrompts() {
	registry := prompts.NewRegistry(s.logger)

	for _, p := range registry.GetPrompts() {
		s.mcpServer.AddPrompt(p.Prompt, p.Handler)
		s.logger.Debug("Registered prompt", zap.String("prompt", p.Prompt.Name))
	}

	s.logger.Info("Registered all MCP prompts", zap.Int("count", len(registry.GetPrompts())))
}

// registerResources registers all available MCP resources
func (s *Server) registerResources() {
	registry := resources.NewRegistry(s.config, s.metrics, s.audit, s.logger, s.version)

	for _, r := range registry.GetResources() {
		s.mcpServer.AddResource(r.Resource, r.Handler)
		s.logger.Debug("Registered resource", zap.String("uri", r.Resource.URI))
	}

	s.logger.Info("Registered all MCP resources", zap.Int("count", len(registry.GetResources())))
}

// Start starts the MCP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server")

	// Start health HTTP server in background if configured
	if s.healthServer != nil {
		go func() {
			if err := s.healthServer.Start(); err != nil {
				s.logger.Error("Health server error", zap.Error(err))
			}
		}()
		s.healthServer.SetReady(true)
	}

	defer func() {
		// Log final metrics on shutdown
		s.metrics.LogStats()

		if s.healthServer != nil {
			s.healthServer.SetReady(false)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.healthServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Failed to shutdown health server", zap.Error(err))
			}
		}

		if err := s.apiClient.Close(); err != nil {
			s.logger.Error("Failed to close API client", zap.Error(err))
		}
	}()

	// Serve over stdio transport
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// GetMetrics returns the server's metrics tracker for external access
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.metrics
}
