package llm

import (
	"fmt"

	"github.com/lexiqai/voice-tutor/internal/config"
)

// Sampling is the fixed decoding configuration sent with every request
type Sampling struct {
	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
	MaxTokens        int // 0 leaves the cap to the service
	Stop             []string
}

// SamplingFromConfig reads the LLM_* settings
func SamplingFromConfig(cfg *config.Config) Sampling {
	return Sampling{
		Temperature:      cfg.LLMTemperature,
		TopP:             cfg.LLMTopP,
		FrequencyPenalty: cfg.LLMFrequencyPenalty,
		PresencePenalty:  cfg.LLMPresencePenalty,
		MaxTokens:        cfg.LLMMaxTokens,
		Stop:             cfg.LLMStop,
	}
}

// Validate checks every value against the range the API accepts
func (s Sampling) Validate() error {
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature %v outside [0, 2]", s.Temperature)
	}
	if s.TopP < 0 || s.TopP > 1 {
		return fmt.Errorf("top_p %v outside [0, 1]", s.TopP)
	}
	if s.FrequencyPenalty < -2 || s.FrequencyPenalty > 2 {
		return fmt.Errorf("frequency_penalty %v outside [-2, 2]", s.FrequencyPenalty)
	}
	if s.PresencePenalty < -2 || s.PresencePenalty > 2 {
		return fmt.Errorf("presence_penalty %v outside [-2, 2]", s.PresencePenalty)
	}
	if s.MaxTokens < 0 {
		return fmt.Errorf("max_tokens %d is negative", s.MaxTokens)
	}
	if len(s.Stop) > 4 {
		return fmt.Errorf("at most 4 stop sequences are allowed, got %d", len(s.Stop))
	}
	return nil
}
