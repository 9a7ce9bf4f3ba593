// Package client provides the HTTP transport shared by both backend gateways.
// It is a single-attempt, fail-fast boundary: transport failures and non-2xx
// statuses are mapped to typed backend errors, never retried here.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crimetrends/ucr-mcp-server/internal/config"
	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/tracing"
)

// Backend identifies which upstream service a request targets.
type Backend string

const (
	// PredictBackend is the time-series prediction service.
	PredictBackend Backend = "UCR prediction service"
	// HistoryBackend is the FBI Crime Data Explorer API.
	HistoryBackend Backend = "FBI Crime Data Explorer API"
)

// Recorder receives per-request metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordRequest(backend string, success bool, latency time.Duration, statusCode int)
	RecordRateLimitWait()
}

// Client is the HTTP client for both upstream services.
type Client struct {
	httpClient  *http.Client
	config      *config.Config
	logger      *zap.Logger
	rateLimiter *rate.Limiter
	recorder    Recorder
	version     string
}

// New creates a new backend client.
func New(cfg *config.Config, logger *zap.Logger, version string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	var rateLimiter *rate.Limiter
	if cfg.EnableRateLimit {
		rateLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	}

	if version == "" {
		version = "dev"
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config:      cfg,
		logger:      logger,
		rateLimiter: rateLimiter,
		version:     version,
	}
}

// SetRecorder attaches a metrics recorder. Must be called before the client
// serves requests.
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// Request represents an HTTP request to one of the backends.
type Request struct {
	Backend Backend
	Method  string
	Path    string
	Query   map[string]string
	Body    interface{}
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Do executes a single request attempt against the requested backend. The
// history backend's API key is injected here so callers never handle the
// credential.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, *errors.Error) {
	if c.rateLimiter != nil && !c.rateLimiter.Allow() {
		if c.recorder != nil {
			c.recorder.RecordRateLimitWait()
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, c.classify(req.Backend, fmt.Errorf("rate limit wait failed: %w", err))
		}
	}

	ctx, span := tracing.BackendSpan(ctx, string(req.Backend), req.Method, req.Path)
	defer span.End()

	requestURL, err := c.buildURL(req)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, errors.InternalError, err.Error())
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.New(errors.CodeInternal, errors.InternalError,
				fmt.Sprintf("failed to marshal request body: %v", err))
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, requestURL, bodyReader)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, errors.InternalError,
			fmt.Sprintf("failed to create request: %v", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", fmt.Sprintf("ucr-mcp-server/%s", c.version))

	c.logger.Debug("Executing HTTP request",
		zap.String("backend", string(req.Backend)),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("HTTP request failed",
			zap.Error(err),
			zap.String("backend", string(req.Backend)),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Duration("duration", duration),
		)
		tracing.RecordError(span, err)
		if c.recorder != nil {
			c.recorder.RecordRequest(string(req.Backend), false, duration, 0)
		}
		return nil, c.classify(req.Backend, err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.classify(req.Backend, fmt.Errorf("failed to read response body: %w", err))
	}

	c.logger.Debug("HTTP request completed",
		zap.String("backend", string(req.Backend)),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", duration),
		zap.Int("response_size", len(body)),
	)

	if c.recorder != nil {
		c.recorder.RecordRequest(string(req.Backend), httpResp.StatusCode < 400, duration, httpResp.StatusCode)
	}

	if httpResp.StatusCode >= 400 {
		statusErr := StatusError(req.Backend, httpResp.StatusCode, string(body))
		tracing.RecordError(span, statusErr)
		return nil, statusErr
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

// buildURL resolves the base URL for the target backend and appends path and
// query parameters. The FBI API_KEY query parameter is added for the history
// backend only.
func (c *Client) buildURL(req *Request) (string, error) {
	var baseURL string
	switch req.Backend {
	case PredictBackend:
		baseURL = c.config.PredictServiceURL
	case HistoryBackend:
		baseURL = c.config.HistoryServiceURL
	default:
		return "", fmt.Errorf("unknown backend: %q", req.Backend)
	}

	requestURL := baseURL + req.Path
	params := url.Values{}
	for k, v := range req.Query {
		params.Add(k, v)
	}
	if req.Backend == HistoryBackend {
		params.Add("API_KEY", c.config.HistoryAPIKey)
	}
	if len(params) > 0 {
		requestURL = fmt.Sprintf("%s?%s", requestURL, params.Encode())
	}
	return requestURL, nil
}

// classify maps a transport error to a typed backend error. Timeouts and
// connectivity failures are transient; context cancellation is not retryable
// but surfaces as transient since the backend state is unknown.
func (c *Client) classify(backend Backend, err error) *errors.Error {
	transient := true
	if stderrors.Is(err, context.Canceled) {
		transient = false
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewBackendUnavailable(string(backend),
			fmt.Sprintf("The %s is not responding (request timed out)", backend), true)
	}
	return errors.NewBackendUnavailable(string(backend),
		fmt.Sprintf("Could not reach the %s: %v", backend, err), transient)
}

// StatusError maps a non-success HTTP status to a typed backend error.
// 5xx is transient, 4xx permanent.
func StatusError(backend Backend, statusCode int, body string) *errors.Error {
	if len(body) > 200 {
		body = body[:200]
	}
	switch {
	case statusCode == http.StatusNotFound:
		return errors.NewBackendUnavailable(string(backend),
			fmt.Sprintf("The %s has no data for this request (HTTP 404)", backend), false)
	case statusCode == http.StatusTooManyRequests:
		return errors.NewBackendUnavailable(string(backend),
			fmt.Sprintf("The %s rate limit was hit (HTTP 429)", backend), true)
	case statusCode >= 500:
		return errors.NewBackendUnavailable(string(backend),
			fmt.Sprintf("The %s is experiencing issues (HTTP %d)", backend, statusCode), true)
	default:
		return errors.NewBackendUnavailable(string(backend),
			fmt.Sprintf("The %s rejected the request (HTTP %d): %s", backend, statusCode, body), false)
	}
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
