package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/observability"
	"github.com/lexiqai/voice-tutor/internal/resilience"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// guard runs provider calls with retry inside and a circuit breaker per attempt
type guard struct {
	provider string
	breaker  *resilience.CircuitBreaker
	retry    *resilience.RetryConfig
	logger   zerolog.Logger
}

func newGuard(provider string, cfg *config.Config, breaker *resilience.CircuitBreaker) guard {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.RetryMaxAttempts
	retry.InitialBackoff = time.Duration(cfg.RetryInitialBackoff) * time.Millisecond

	return guard{
		provider: provider,
		breaker:  breaker,
		retry:    retry,
		logger:   observability.WithComponent("stt").With().Str("provider", provider).Logger(),
	}
}

func (g guard) transcribe(ctx context.Context, path string, call func() (string, error)) (string, error) {
	var text string
	attempt := 0

	err := resilience.Retry(ctx, func() error {
		attempt++
		return g.breaker.Call(func() error {
			var callErr error
			text, callErr = call()
			if callErr != nil {
				g.logger.Warn().Err(callErr).Int("attempt", attempt).Str("file", path).Msg("Transcription attempt failed")
			}
			return callErr
		})
	}, g.retry, isRetryable)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTranscription, g.provider, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTranscript
	}

	g.logger.Debug().Int("chars", len(text)).Int("attempts", attempt).Msg("Transcription received")
	return text, nil
}

// isRetryable accepts throttling, server errors and transient network failures
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return true
		default:
			return false
		}
	}

	return resilience.IsRetryableNetworkError(err)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
