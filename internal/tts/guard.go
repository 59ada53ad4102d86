package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/observability"
	"github.com/lexiqai/voice-tutor/internal/resilience"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// StatusError is a non-2xx answer from a plain HTTP provider
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

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
		logger:   observability.WithComponent("tts").With().Str("provider", provider).Logger(),
	}
}

func (g guard) synthesize(ctx context.Context, call func() ([]byte, error)) (*Audio, error) {
	var data []byte
	attempt := 0

	err := resilience.Retry(ctx, func() error {
		attempt++
		return g.breaker.Call(func() error {
			var callErr error
			data, callErr = call()
			if callErr != nil {
				g.logger.Warn().Err(callErr).Int("attempt", attempt).Msg("Synthesis attempt failed")
			}
			return callErr
		})
	}, g.retry, isRetryable)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSynthesis, g.provider, err)
	}

	// drop a trailing odd byte rather than misalign every sample
	data = data[:len(data)&^1]
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrSynthesis, g.provider, ErrEmptyAudio)
	}

	g.logger.Debug().Int("bytes", len(data)).Int("attempts", attempt).Msg("Synthesis received")
	return &Audio{Data: data, SampleRate: outputSampleRate}, nil
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.StatusCode)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return resilience.IsRetryableNetworkError(err)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
