package observability

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu           sync.RWMutex
	globalLogger zerolog.Logger
	initialized  bool
)

// InitLogger initializes the global structured logger
// Logs go to stderr so the conversation transcript on stdout stays readable
func InitLogger(level string, pretty bool) {
	initLogger(os.Stderr, level, pretty)
}

func initLogger(out io.Writer, level string, pretty bool) {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return
	}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	globalLogger = zerolog.New(out).With().Timestamp().Logger()
	log.Logger = globalLogger

	initialized = true
}

// GetLogger returns the global logger
func GetLogger() zerolog.Logger {
	mu.RLock()
	ok := initialized
	mu.RUnlock()

	if !ok {
		InitLogger("info", false)
	}

	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// SetSessionID stamps every subsequent log line with the session id
func SetSessionID(sessionID string) {
	logger := GetLogger().With().Str("session_id", sessionID).Logger()

	mu.Lock()
	globalLogger = logger
	log.Logger = logger
	mu.Unlock()
}

// WithCorrelationID creates a logger with a correlation ID
func WithCorrelationID(correlationID string) zerolog.Logger {
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}
	return GetLogger().With().Str("correlation_id", correlationID).Logger()
}

// WithComponent creates a logger tagged with a component name
func WithComponent(component string) zerolog.Logger {
	return GetLogger().With().Str("component", component).Logger()
}

// NewCorrelationID generates a new correlation ID
func NewCorrelationID() string {
	return uuid.New().String()
}

// NewSessionID generates a new session ID
func NewSessionID() string {
	return uuid.New().String()
}
