package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/observability"
	"github.com/lexiqai/voice-tutor/internal/resilience"
	"github.com/lexiqai/voice-tutor/internal/tutor"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// ErrGeneration wraps every failed generation call
var ErrGeneration = errors.New("generation failed")

// OpenAIGenerator produces tutor replies with the chat completions API
// Requests are not retried: a generation is not idempotent and the
// session decides what a failed turn means
type OpenAIGenerator struct {
	client   *openai.Client
	model    string
	sampling Sampling
	breaker  *resilience.CircuitBreaker
	logger   zerolog.Logger
}

// NewOpenAIGenerator creates a generator from configuration
func NewOpenAIGenerator(cfg *config.Config, breaker *resilience.CircuitBreaker) (*OpenAIGenerator, error) {
	sampling := SamplingFromConfig(cfg)
	if err := sampling.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sampling configuration: %w", err)
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.LLMModel,
		sampling: sampling,
		breaker:  breaker,
		logger:   observability.WithComponent("llm"),
	}, nil
}

// Generate returns the assistant reply for the conversation
func (g *OpenAIGenerator) Generate(ctx context.Context, turns []tutor.Turn) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:            g.model,
		Messages:         toMessages(turns),
		MaxTokens:        g.sampling.MaxTokens,
		Temperature:      g.sampling.Temperature,
		TopP:             g.sampling.TopP,
		FrequencyPenalty: g.sampling.FrequencyPenalty,
		PresencePenalty:  g.sampling.PresencePenalty,
		Stop:             g.sampling.Stop,
	}

	var resp openai.ChatCompletionResponse
	err := g.breaker.Call(func() error {
		var callErr error
		resp, callErr = g.client.CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		g.logger.Error().Err(err).Int("messages", len(req.Messages)).Msg("Chat completion failed")
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrGeneration)
	}

	g.logger.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("Chat completion received")

	return resp.Choices[0].Message.Content, nil
}

func toMessages(turns []tutor.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, t := range turns {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Content,
		}
	}
	return messages
}
