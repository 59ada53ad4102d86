package stt

import (
	"context"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/resilience"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient transcribes with the Whisper transcription endpoint
type OpenAIClient struct {
	client   *openai.Client
	model    string
	language string
	guard    guard
}

// NewOpenAIClient creates a Whisper client
func NewOpenAIClient(cfg *config.Config, breaker *resilience.CircuitBreaker) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.STTModel,
		language: cfg.STTLanguage,
		guard:    newGuard(config.ProviderOpenAI, cfg, breaker),
	}
}

// Transcribe uploads the clip and returns its text
func (c *OpenAIClient) Transcribe(ctx context.Context, path string) (string, error) {
	return c.guard.transcribe(ctx, path, func() (string, error) {
		resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    c.model,
			FilePath: path,
			Language: c.language,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}
