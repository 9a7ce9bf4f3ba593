// Package audit provides audit logging for tracking tool executions.
// Entries go to the structured log and to a bounded in-memory ring that the
// server-stats resource exposes.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/tracing"
)

// Entry represents a single audit log entry
type Entry struct {
	Timestamp time.Time     `json:"timestamp"`
	TraceID   string        `json:"trace_id,omitempty"`
	SpanID    string        `json:"span_id,omitempty"`
	Tool      string        `json:"tool"`
	Offense   string        `json:"offense,omitempty"`
	Region    string        `json:"region,omitempty"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration_ms"`
	ErrorMsg  string        `json:"error_message,omitempty"`
}

// Logger handles audit logging
type Logger struct {
	enabled bool
	logger  *zap.Logger

	// In-memory ring of recent entries
	mu         sync.RWMutex
	entries    []Entry
	maxEntries int
}

// NewLogger creates a new audit logger
func NewLogger(logger *zap.Logger, enabled bool) *Logger {
	return &Logger{
		enabled:    enabled,
		logger:     logger.Named("audit"),
		entries:    make([]Entry, 0, 1000),
		maxEntries: 1000,
	}
}

// Log records an audit entry
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if !l.enabled {
		return
	}

	traceInfo := tracing.FromContext(ctx)
	if traceInfo.TraceID != "" {
		entry.TraceID = traceInfo.TraceID
	}
	if traceInfo.SpanID != "" {
		entry.SpanID = traceInfo.SpanID
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.Time("timestamp", entry.Timestamp),
		zap.String("tool", entry.Tool),
		zap.Bool("success", entry.Success),
		zap.Duration("duration", entry.Duration),
	}
	if entry.TraceID != "" {
		fields = append(fields, zap.String("trace_id", entry.TraceID))
	}
	if entry.Offense != "" {
		fields = append(fields, zap.String("offense", entry.Offense))
	}
	if entry.Region != "" {
		fields = append(fields, zap.String("region", entry.Region))
	}
	if entry.ErrorMsg != "" {
		fields = append(fields, zap.String("error_message", entry.ErrorMsg))
	}

	l.logger.Info("audit", fields...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.maxEntries {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
}

// LogToolExecution is a convenience method for logging tool executions
func (l *Logger) LogToolExecution(ctx context.Context, toolName, offense, region string, success bool, duration time.Duration, err error) {
	entry := Entry{
		Tool:     toolName,
		Offense:  offense,
		Region:   region,
		Success:  success,
		Duration: duration,
	}
	if err != nil {
		entry.ErrorMsg = err.Error()
	}
	l.Log(ctx, entry)
}

// GetRecentEntries returns the most recent audit entries, newest first
func (l *Logger) GetRecentEntries(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}

	start := len(l.entries) - limit
	result := make([]Entry, limit)
	copy(result, l.entries[start:])

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return result
}

// GetStats returns statistics about audit entries
func (l *Logger) GetStats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		TotalEntries: len(l.entries),
		ToolUsage:    make(map[string]int),
		OffenseUsage: make(map[string]int),
	}

	var successCount int
	var totalDuration time.Duration

	for _, entry := range l.entries {
		stats.ToolUsage[entry.Tool]++
		if entry.Offense != "" {
			stats.OffenseUsage[entry.Offense]++
		}
		if entry.Success {
			successCount++
		}
		totalDuration += entry.Duration
	}

	if len(l.entries) > 0 {
		stats.SuccessRate = float64(successCount) / float64(len(l.entries)) * 100
		stats.AverageDuration = totalDuration / time.Duration(len(l.entries))
	}

	return stats
}

// Stats contains aggregated audit statistics
type Stats struct {
	TotalEntries    int            `json:"total_entries"`
	SuccessRate     float64        `json:"success_rate_pct"`
	AverageDuration time.Duration  `json:"average_duration"`
	ToolUsage       map[string]int `json:"tool_usage"`
	OffenseUsage    map[string]int `json:"offense_usage"`
}

// ToJSON returns the stats as JSON
func (s Stats) ToJSON() string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

// Clear clears all audit entries (useful for testing)
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// IsEnabled returns whether audit logging is enabled
func (l *Logger) IsEnabled() bool {
	return l.enabled
}
