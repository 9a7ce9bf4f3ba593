// Package main implements the UCR crime data MCP (Model Context Protocol)
// server.
//
// This server exposes MCP tools for US crime statistics: forecasts from
// trained time-series models, historical data from the FBI Crime Data
// Explorer, trend comparisons across offense types, and a reference tool
// describing the supported categories and models.
//
// The server communicates using the MCP protocol over stdio. All logging and
// tracing goes to stderr so stdout stays clean for the transport.
//
// Configuration is provided through environment variables:
//   - UCR_PREDICT_URL: Base URL of the prediction service (required)
//   - FBI_API_KEY: API key for the FBI Crime Data Explorer (required)  // pragma: allowlist secret
//   - FBI_API_BASE_URL: (Optional) Override for the FBI API endpoint
//   - UCR_HEALTH_PORT: (Optional) Port for the health/metrics HTTP server
//   - ENVIRONMENT: (Optional) Set to "production" for production logging
//
// Example usage:
//
//	export UCR_PREDICT_URL="https://predict.example.com"
//	export FBI_API_KEY="<your-api-key>"
//	./ucr-mcp-server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/config"
	"github.com/crimetrends/ucr-mcp-server/internal/server"
	"github.com/crimetrends/ucr-mcp-server/internal/tracing"
)

// Build information - set at build time via ldflags
var (
	version = "dev"     // e.g., "v0.2.0" or "dev"
	commit  = "unknown" // Git commit SHA
	builtBy = "manual"  // "goreleaser" or "manual"
)

// main is the entry point for the UCR crime data MCP server.
// It initializes the server, loads configuration, and handles graceful shutdown.
func main() {
	// Load .env file if it exists (optional, for development)
	_ = godotenv.Load()

	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Ignore error on cleanup
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// A missing API key or prediction URL is a startup failure, not a
	// per-call error.
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting UCR Crime Data MCP Server",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("built_by", builtBy),
		zap.String("predict_endpoint", cfg.PredictServiceURL),
		zap.String("history_endpoint", cfg.HistoryServiceURL),
	)

	// Initialize tracing if enabled
	shutdownTracing, err := tracing.InitOTel(tracing.OTelConfig{
		ServiceName:    "ucr-mcp-server",
		ServiceVersion: version,
		Environment:    os.Getenv("ENVIRONMENT"),
		Enabled:        cfg.EnableTracing,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to shutdown tracing", zap.Error(err))
		}
	}()

	mcpServer, err := server.New(cfg, logger, version)
	if err != nil {
		logger.Fatal("Failed to create MCP server", zap.Error(err))
	}

	// Setup graceful shutdown with timeout
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- mcpServer.Start(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
		cancel()
		return
	}

	logger.Info("Initiating graceful shutdown", zap.Duration("timeout", cfg.ShutdownTimeout))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	select {
	case <-serverDone:
		logger.Info("Server shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout exceeded, forcing exit",
			zap.Duration("timeout", cfg.ShutdownTimeout))
	}

	// Allow a brief moment for final cleanup
	time.Sleep(100 * time.Millisecond)
}

// initLogger initializes and returns a zap logger.
// It creates a production logger if ENVIRONMENT=production, otherwise returns
// a development logger with more verbose output. Both write to stderr.
func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
