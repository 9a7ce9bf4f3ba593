package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/config"
	"github.com/crimetrends/ucr-mcp-server/internal/errors"
)

func testConfig(predictURL, historyURL string) *config.Config {
	return &config.Config{
		PredictServiceURL: predictURL,
		HistoryServiceURL: historyURL,
		HistoryAPIKey:     "secret-test-key",
		Timeout:           5 * time.Second,
		MaxIdleConns:      2,
		IdleConnTimeout:   time.Second,
		EnableRateLimit:   false,
	}
}

func TestDoInjectsAPIKeyForHistoryBackend(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("API_KEY")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(testConfig("http://unused", srv.URL), zap.NewNop(), "test")
	_, err := c.Do(context.Background(), &Request{
		Backend: HistoryBackend,
		Method:  http.MethodGet,
		Path:    "/summarized/national/homicide",
		Query:   map[string]string{"from": "01-2023", "to": "12-2023"},
	})
	require.Nil(t, err)
	assert.Equal(t, "secret-test-key", gotKey)
}

func TestDoOmitsAPIKeyForPredictBackend(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, "http://unused"), zap.NewNop(), "test")
	_, err := c.Do(context.Background(), &Request{
		Backend: PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	})
	require.Nil(t, err)
	assert.NotContains(t, query, "API_KEY", "credential must never leak to the prediction backend")
}

func TestDoSetsHeaders(t *testing.T) {
	var userAgent, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, "http://unused"), zap.NewNop(), "1.2.3")
	_, err := c.Do(context.Background(), &Request{
		Backend: PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	})
	require.Nil(t, err)
	assert.Equal(t, "ucr-mcp-server/1.2.3", userAgent)
	assert.Equal(t, "application/json", accept)
}

func TestDoMapsServerErrorToTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, "http://unused"), zap.NewNop(), "test")
	_, err := c.Do(context.Background(), &Request{
		Backend: PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	})
	require.NotNil(t, err)
	assert.Equal(t, errors.CodeBackendUnavailable, err.Code)
	assert.True(t, err.Transient)
}

func TestDoMapsNotFoundToPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, "http://unused"), zap.NewNop(), "test")
	_, err := c.Do(context.Background(), &Request{
		Backend: PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/predict/homicide",
	})
	require.NotNil(t, err)
	assert.False(t, err.Transient)
	assert.Contains(t, err.Message, "404")
}

func TestDoUnreachableBackend(t *testing.T) {
	c := New(testConfig("http://127.0.0.1:1", "http://unused"), zap.NewNop(), "test")
	_, err := c.Do(context.Background(), &Request{
		Backend: PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	})
	require.NotNil(t, err)
	assert.Equal(t, errors.CodeBackendUnavailable, err.Code)
	assert.Equal(t, errors.BackendError, err.Category)
}

func TestStatusErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"not found", http.StatusNotFound, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"bad request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StatusError(HistoryBackend, tt.status, "")
			assert.Equal(t, tt.transient, err.Transient)
			assert.Equal(t, string(HistoryBackend), err.Backend)
		})
	}
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	err := StatusError(PredictBackend, http.StatusBadRequest, string(long))
	assert.Less(t, len(err.Message), 300)
}

type fakeRecorder struct {
	requests    int
	waits       int
	lastSuccess bool
	lastStatus  int
}

func (f *fakeRecorder) RecordRequest(_ string, success bool, _ time.Duration, statusCode int) {
	f.requests++
	f.lastSuccess = success
	f.lastStatus = statusCode
}

func (f *fakeRecorder) RecordRateLimitWait() {
	f.waits++
}

func TestDoRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	c := New(testConfig(srv.URL, "http://unused"), zap.NewNop(), "test")
	c.SetRecorder(rec)

	_, err := c.Do(context.Background(), &Request{
		Backend: PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	})
	require.Nil(t, err)
	assert.Equal(t, 1, rec.requests)
	assert.True(t, rec.lastSuccess)
	assert.Equal(t, http.StatusOK, rec.lastStatus)
	assert.Zero(t, rec.waits)
}

func TestDoRecordsFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	c := New(testConfig(srv.URL, "http://unused"), zap.NewNop(), "test")
	c.SetRecorder(rec)

	_, err := c.Do(context.Background(), &Request{
		Backend: PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	})
	require.NotNil(t, err)
	assert.Equal(t, 1, rec.requests)
	assert.False(t, rec.lastSuccess)
	assert.Equal(t, http.StatusBadGateway, rec.lastStatus)
}
