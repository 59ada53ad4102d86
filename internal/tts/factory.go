package tts

import (
	"fmt"
	"strings"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/resilience"
)

// New returns the synthesizer selected by TTS_PROVIDER
func New(cfg *config.Config, breaker *resilience.CircuitBreaker) (Synthesizer, error) {
	switch strings.ToLower(cfg.TTSProvider) {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, breaker), nil
	case config.ProviderCartesia:
		return NewCartesiaClient(cfg, breaker), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", cfg.TTSProvider)
	}
}
