package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lexiqai/voice-tutor/internal/resilience"
)

func resetLogger(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	mu.Lock()
	initialized = false
	mu.Unlock()
	initLogger(buf, "debug", false)
}

func TestLogger_SessionAndCorrelation(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf)

	SetSessionID("session-1")
	logger := WithCorrelationID("turn-1")
	logger.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["session_id"] != "session-1" {
		t.Errorf("Expected session_id 'session-1', got %v", entry["session_id"])
	}
	if entry["correlation_id"] != "turn-1" {
		t.Errorf("Expected correlation_id 'turn-1', got %v", entry["correlation_id"])
	}
}

func TestWithCorrelationID_Generated(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf)

	logger := WithCorrelationID("")
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"correlation_id":"`) {
		t.Errorf("Expected a generated correlation id, got %q", buf.String())
	}
}

func TestNewCorrelationID(t *testing.T) {
	a, b := NewCorrelationID(), NewCorrelationID()
	if a == "" || a == b {
		t.Errorf("Expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestHealthCheckHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheckHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Service != "voice-tutor" || status.Status != "healthy" {
		t.Errorf("Unexpected health status %+v", status)
	}
}

func TestReadinessHandler(t *testing.T) {
	healthy := func(ctx context.Context) (bool, error) { return true, nil }
	failing := func(ctx context.Context) (bool, error) { return false, errors.New("circuit open") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheckFunc
		wantCode   int
		wantStatus string
	}{
		{"all healthy", map[string]HealthCheckFunc{"stt": healthy, "llm": healthy}, http.StatusOK, "ready"},
		{"one failing", map[string]HealthCheckFunc{"stt": healthy, "tts": failing}, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ReadinessHandler(tt.checks)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}

			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, status.Status)
			}
			if len(status.Dependencies) != len(tt.checks) {
				t.Errorf("Expected %d dependencies, got %d", len(tt.checks), len(status.Dependencies))
			}
		})
	}
}

func TestBreakerCheck(t *testing.T) {
	cb := resilience.NewCircuitBreaker("stt", 1, time.Minute)
	check := BreakerCheck(cb)

	if ok, err := check(context.Background()); !ok || err != nil {
		t.Errorf("Expected closed breaker to be healthy, got %v, %v", ok, err)
	}

	cb.RecordResult(false)
	ok, err := check(context.Background())
	if ok {
		t.Error("Expected open breaker to be unhealthy")
	}
	if err == nil || !strings.Contains(err.Error(), "open") {
		t.Errorf("Expected error naming the open circuit, got %v", err)
	}
}

func scrape(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(NewServer(":0", nil).Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestWriteJSON_EncodeFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf)

	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "Failed to encode health response") {
		t.Errorf("Expected encode failure to be logged, got %q", buf.String())
	}
}

func TestTrackCircuitBreaker(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf)

	cb := resilience.NewCircuitBreaker("tracked", 1, time.Minute)
	TrackCircuitBreaker(cb)

	if body := scrape(t); !strings.Contains(body, `voice_tutor_circuit_breaker_state{service="tracked"} 0`) {
		t.Error("Expected closed breaker to be exported as 0")
	}

	cb.Call(func() error { return errors.New("down") })

	body := scrape(t)
	if !strings.Contains(body, `voice_tutor_circuit_breaker_state{service="tracked"} 1`) {
		t.Error("Expected open breaker to be exported as 1")
	}
	if !strings.Contains(body, `voice_tutor_circuit_breaker_failures_total{service="tracked"} 1`) {
		t.Error("Expected one breaker opening to be counted")
	}
	if !strings.Contains(buf.String(), "Circuit breaker state changed") {
		t.Error("Expected transition to be logged")
	}
}

func TestTurnMetrics(t *testing.T) {
	m := NewTurnMetrics("turn-1")
	m.RecordSTTStart()
	m.RecordSTTEnd(false)
	m.RecordLLMStart()
	m.RecordLLMEnd(true)
	m.RecordTurnEnd(OutcomeLLMError)
	SetHistoryTurns(5)

	body := scrape(t)
	for _, want := range []string{
		`voice_tutor_turns_total{outcome="llm_error"}`,
		`voice_tutor_stt_requests_total{status="error"}`,
		`voice_tutor_llm_requests_total{status="success"}`,
		`voice_tutor_history_turns 5`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics output to contain %s", want)
		}
	}
	if m.CorrelationID() != "turn-1" {
		t.Errorf("Expected correlation id 'turn-1', got %q", m.CorrelationID())
	}
}

func TestNewServer_Routes(t *testing.T) {
	srv := NewServer(":0", map[string]HealthCheckFunc{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	for _, path := range []string{"/metrics", "/health", "/ready"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200 from %s, got %d", path, resp.StatusCode)
		}
	}
}
