package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/resilience"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient synthesizes speech with the OpenAI speech endpoint
type OpenAIClient struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	speed  float64
	guard  guard
}

// NewOpenAIClient creates a speech client returning raw 24 kHz PCM
func NewOpenAIClient(cfg *config.Config, breaker *resilience.CircuitBreaker) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.SpeechModel(cfg.TTSModel),
		voice:  openai.SpeechVoice(cfg.TTSVoice),
		speed:  cfg.TTSSpeed,
		guard:  newGuard(config.ProviderOpenAI, cfg, breaker),
	}
}

// Synthesize converts text to PCM audio
func (c *OpenAIClient) Synthesize(ctx context.Context, text string) (*Audio, error) {
	return c.guard.synthesize(ctx, func() ([]byte, error) {
		resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          c.model,
			Input:          text,
			Voice:          c.voice,
			ResponseFormat: openai.SpeechResponseFormatPcm,
			Speed:          c.speed,
		})
		if err != nil {
			return nil, err
		}
		defer resp.Close()

		data, err := io.ReadAll(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to read speech audio: %w", err)
		}
		return data, nil
	})
}
