package observability

import (
	"sync"
	"time"

	"github.com/lexiqai/voice-tutor/internal/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn outcomes
const (
	OutcomeAnswered   = "answered"
	OutcomeNoSpeech   = "no_speech"
	OutcomeEmpty      = "empty_transcript"
	OutcomeExit       = "exit"
	OutcomeCaptureErr = "capture_error"
	OutcomeSTTError   = "stt_error"
	OutcomeLLMError   = "llm_error"
	OutcomeTTSError   = "tts_error"
	OutcomeSuperseded = "superseded"
)

var (
	// Turn metrics
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_tutor_turns_total",
		Help: "Conversation turns by outcome",
	}, []string{"outcome"})

	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_tutor_turn_duration_seconds",
		Help:    "Time from end of capture to end of playback",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	captureTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_tutor_capture_timeouts_total",
		Help: "Listening windows that ended without speech",
	})

	historyTurns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voice_tutor_history_turns",
		Help: "Number of turns in the active session history",
	})

	// STT metrics
	sttRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_tutor_stt_requests_total",
		Help: "Total number of STT requests",
	}, []string{"status"})

	sttLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_tutor_stt_latency_seconds",
		Help:    "STT processing latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	// LLM metrics
	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_tutor_llm_requests_total",
		Help: "Total number of generation requests",
	}, []string{"status"})

	llmLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_tutor_llm_latency_seconds",
		Help:    "Generation latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 20.0},
	})

	// TTS metrics
	ttsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_tutor_tts_requests_total",
		Help: "Total number of TTS requests",
	}, []string{"status"})

	ttsLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_tutor_tts_latency_seconds",
		Help:    "Synthesis and playback latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 20.0},
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_tutor_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voice_tutor_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_tutor_circuit_breaker_failures_total",
		Help: "Times a circuit breaker opened",
	}, []string{"service"})

	// Audio metrics
	audioBytesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_tutor_audio_bytes_total",
		Help: "Total audio bytes processed",
	}, []string{"direction"}) // direction: "in" or "out"
)

// Metrics tracks stage timings for a single turn
type Metrics struct {
	correlationID string
	startTime     time.Time
	sttStartTime  time.Time
	llmStartTime  time.Time
	ttsStartTime  time.Time
	mu            sync.Mutex
}

// NewTurnMetrics creates a new metrics tracker for a turn
func NewTurnMetrics(correlationID string) *Metrics {
	return &Metrics{
		correlationID: correlationID,
		startTime:     time.Now(),
	}
}

// CorrelationID returns the turn's correlation id
func (m *Metrics) CorrelationID() string {
	return m.correlationID
}

// RecordTurnEnd records the outcome and duration of the turn
func (m *Metrics) RecordTurnEnd(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAnswered {
		turnDuration.Observe(time.Since(m.startTime).Seconds())
	}
}

// RecordCaptureTimeout records a listening window without speech
func (m *Metrics) RecordCaptureTimeout() {
	captureTimeouts.Inc()
}

// RecordSTTStart records the start of STT processing
func (m *Metrics) RecordSTTStart() {
	m.mu.Lock()
	m.sttStartTime = time.Now()
	m.mu.Unlock()
}

// RecordSTTEnd records the end of STT processing
func (m *Metrics) RecordSTTEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	observe(sttLatency, sttRequests, m.sttStartTime, success)
}

// RecordLLMStart records the start of generation
func (m *Metrics) RecordLLMStart() {
	m.mu.Lock()
	m.llmStartTime = time.Now()
	m.mu.Unlock()
}

// RecordLLMEnd records the end of generation
func (m *Metrics) RecordLLMEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	observe(llmLatency, llmRequests, m.llmStartTime, success)
}

// RecordTTSStart records the start of synthesis and playback
func (m *Metrics) RecordTTSStart() {
	m.mu.Lock()
	m.ttsStartTime = time.Now()
	m.mu.Unlock()
}

// RecordTTSEnd records the end of synthesis and playback
func (m *Metrics) RecordTTSEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	observe(ttsLatency, ttsRequests, m.ttsStartTime, success)
}

func observe(latency prometheus.Histogram, requests *prometheus.CounterVec, start time.Time, success bool) {
	if !start.IsZero() {
		latency.Observe(time.Since(start).Seconds())
	}

	status := "success"
	if !success {
		status = "error"
	}
	requests.WithLabelValues(status).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordAudioBytes records audio bytes processed
func RecordAudioBytes(direction string, bytes int64) {
	audioBytesProcessed.WithLabelValues(direction).Add(float64(bytes))
}

// SetHistoryTurns records the size of the session history
func SetHistoryTurns(n int) {
	historyTurns.Set(float64(n))
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}

// TrackCircuitBreaker exports the breaker's state and logs transitions
func TrackCircuitBreaker(cb *resilience.CircuitBreaker) {
	UpdateCircuitBreakerState(cb.Name(), int(cb.GetState()))

	cb.OnStateChange(func(name string, from, to resilience.CircuitState) {
		UpdateCircuitBreakerState(name, int(to))
		if to == resilience.StateOpen {
			IncrementCircuitBreakerFailures(name)
		}

		logger := GetLogger()
		logger.Warn().
			Str("service", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Circuit breaker state changed")
	})
}
