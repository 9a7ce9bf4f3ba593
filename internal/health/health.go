package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/client"
	"github.com/crimetrends/ucr-mcp-server/internal/config"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result
type Check struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Checker performs health checks against the configuration and both backends.
type Checker struct {
	client *client.Client
	config *config.Config
	logger *zap.Logger
}

// New creates a new health checker
func New(c *client.Client, cfg *config.Config, logger *zap.Logger) *Checker {
	return &Checker{
		client: c,
		config: cfg,
		logger: logger,
	}
}

// CheckAll performs all health checks. A single unreachable backend degrades
// the server rather than failing it: the other backend's tools still work.
func (c *Checker) CheckAll(ctx context.Context) (Status, []Check) {
	checks := []Check{
		c.checkConfiguration(),
		c.checkPredictBackend(ctx),
		c.checkHistoryBackend(ctx),
	}

	unhealthy := 0
	for _, check := range checks {
		if check.Status == StatusUnhealthy {
			unhealthy++
		}
	}
	switch {
	case unhealthy == 0:
		return StatusHealthy, checks
	case unhealthy < len(checks):
		return StatusDegraded, checks
	default:
		return StatusUnhealthy, checks
	}
}

// checkConfiguration verifies the required configuration is present
func (c *Checker) checkConfiguration() Check {
	start := time.Now()
	check := Check{
		Name:      "configuration",
		Timestamp: start,
	}

	err := c.config.Validate()
	check.Duration = time.Since(start)

	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Configuration invalid: %v", err)
		c.logger.Error("Health check failed: configuration", zap.Error(err))
	} else {
		check.Status = StatusHealthy
		check.Message = "Configuration valid"
	}

	return check
}

// checkPredictBackend verifies the prediction service is reachable by listing
// its model registry.
func (c *Checker) checkPredictBackend(ctx context.Context) Check {
	return c.checkBackend(ctx, "prediction_backend", &client.Request{
		Backend: client.PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	})
}

// checkHistoryBackend verifies the FBI API is reachable with a minimal
// one-year national query.
func (c *Checker) checkHistoryBackend(ctx context.Context) Check {
	year := time.Now().Year() - 1
	return c.checkBackend(ctx, "history_backend", &client.Request{
		Backend: client.HistoryBackend,
		Method:  http.MethodGet,
		Path:    "/summarized/national/homicide",
		Query: map[string]string{
			"from": fmt.Sprintf("01-%d", year),
			"to":   fmt.Sprintf("12-%d", year),
		},
	})
}

func (c *Checker) checkBackend(ctx context.Context, name string, req *client.Request) Check {
	start := time.Now()
	check := Check{
		Name:      name,
		Timestamp: start,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.Do(checkCtx, req)
	check.Duration = time.Since(start)

	if err != nil {
		if check.Duration > 3*time.Second {
			check.Status = StatusDegraded
			check.Message = "Backend responding slowly"
		} else {
			check.Status = StatusUnhealthy
			check.Message = fmt.Sprintf("Backend unreachable: %s", err.Message)
		}
		c.logger.Warn("Health check failed: backend connectivity",
			zap.String("check", name),
			zap.String("error", err.Message),
			zap.Duration("duration", check.Duration),
		)
	} else {
		check.Status = StatusHealthy
		check.Message = "Backend reachable"
		c.logger.Debug("Health check passed: backend connectivity",
			zap.String("check", name),
			zap.Duration("duration", check.Duration),
		)
	}

	return check
}
