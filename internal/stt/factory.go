package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/resilience"
)

// New returns the transcriber selected by STT_PROVIDER
func New(ctx context.Context, cfg *config.Config, breaker *resilience.CircuitBreaker) (Transcriber, error) {
	switch strings.ToLower(cfg.STTProvider) {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, breaker), nil
	case config.ProviderDeepgram:
		return NewDeepgramClient(cfg, breaker), nil
	case config.ProviderGoogle:
		return NewGoogleClient(ctx, cfg, breaker)
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.STTProvider)
	}
}
