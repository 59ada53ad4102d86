package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported provider names
const (
	ProviderOpenAI   = "openai"
	ProviderDeepgram = "deepgram"
	ProviderGoogle   = "google"
	ProviderCartesia = "cartesia"
)

// Config holds all configuration for the voice tutor
type Config struct {
	// OpenAI credentials, used for generation and by the default speech providers
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""` // Optional; empty uses the public API

	// Persona instruction document seeding every session's system turn
	PersonaFile string `envconfig:"PERSONA_FILE" default:"prompt_en.txt"`
	// Optional YAML topic catalog; empty uses the built-in catalog
	TopicsFile string `envconfig:"TOPICS_FILE" default:""`

	// Generation (chat completion) configuration
	LLMModel            string   `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	LLMTemperature      float32  `envconfig:"LLM_TEMPERATURE" default:"0.3"`       // 0.0 - 2.0
	LLMTopP             float32  `envconfig:"LLM_TOP_P" default:"0.9"`             // 0.0 - 1.0
	LLMFrequencyPenalty float32  `envconfig:"LLM_FREQUENCY_PENALTY" default:"0.5"` // -2.0 - 2.0
	LLMPresencePenalty  float32  `envconfig:"LLM_PRESENCE_PENALTY" default:"0.5"`  // -2.0 - 2.0
	LLMMaxTokens        int      `envconfig:"LLM_MAX_TOKENS" default:"0"`          // 0 leaves the cap unset
	LLMStop             []string `envconfig:"LLM_STOP"`                            // Comma separated stop sequences
	HistoryMaxTurns     int      `envconfig:"HISTORY_MAX_TURNS" default:"0"`       // 0 sends the whole history

	// Speech-to-text configuration
	STTProvider           string `envconfig:"STT_PROVIDER" default:"openai"` // openai, deepgram, google
	STTModel              string `envconfig:"STT_MODEL" default:"whisper-1"`
	STTLanguage           string `envconfig:"STT_LANGUAGE" default:""` // Empty lets Whisper detect the language
	DeepgramAPIKey        string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel         string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"`
	DeepgramLanguage      string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`
	GoogleSpeechLanguage  string `envconfig:"GOOGLE_SPEECH_LANGUAGE" default:"en-US"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE" default:""` // Empty uses Application Default Credentials

	// Text-to-speech configuration
	TTSProvider      string  `envconfig:"TTS_PROVIDER" default:"openai"` // openai, cartesia
	TTSModel         string  `envconfig:"TTS_MODEL" default:"tts-1"`
	TTSVoice         string  `envconfig:"TTS_VOICE" default:"nova"`
	TTSSpeed         float64 `envconfig:"TTS_SPEED" default:"1.2"` // 1.0 is the normal rate
	CartesiaAPIKey   string  `envconfig:"CARTESIA_API_KEY" default:""`
	CartesiaVoiceID  string  `envconfig:"CARTESIA_VOICE_ID" default:""`
	CartesiaModelID  string  `envconfig:"CARTESIA_MODEL_ID" default:"sonic-english"`
	CartesiaLanguage string  `envconfig:"CARTESIA_LANGUAGE" default:"en"`

	// Audio capture configuration
	ListenTimeout      time.Duration `envconfig:"LISTEN_TIMEOUT" default:"5s"`        // Wait for speech to start
	PhraseTimeLimit    time.Duration `envconfig:"PHRASE_TIME_LIMIT" default:"10s"`    // Longest single phrase
	AmbientCalibration time.Duration `envconfig:"AMBIENT_CALIBRATION" default:"1s"`   // Noise sampling at startup
	VADEnergyThreshold float64       `envconfig:"VAD_ENERGY_THRESHOLD" default:"300"` // RMS energy threshold for VAD
	VADSilence         time.Duration `envconfig:"VAD_SILENCE" default:"800ms"`        // Silence that ends a phrase
	CaptureSampleRate  int           `envconfig:"CAPTURE_SAMPLE_RATE" default:"16000"`

	// Conversation loop configuration
	ExitKeyword   string `envconfig:"EXIT_KEYWORD" default:"종료"`
	Greeting      string `envconfig:"GREETING" default:"Hi! What happened today? Even small things are fine. Can you tell me about it?"`
	TopicGreeting string `envconfig:"TOPIC_GREETING" default:"Hi! Shall we practice English expressions for '%s' today? Are you ready?"`

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`             // Attempts for speech calls
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"`        // Initial backoff in milliseconds

	// Observability configuration
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`   // Log level: debug, info, warn, error
	LogPretty   bool   `envconfig:"LOG_PRETTY" default:"false"` // Pretty print logs (for development)
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`    // e.g. :9090; empty disables the listener
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges and provider credentials
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %v", c.LLMTemperature)
	}
	if c.LLMTopP < 0 || c.LLMTopP > 1 {
		return fmt.Errorf("LLM_TOP_P must be within [0, 1], got %v", c.LLMTopP)
	}
	if c.LLMFrequencyPenalty < -2 || c.LLMFrequencyPenalty > 2 {
		return fmt.Errorf("LLM_FREQUENCY_PENALTY must be within [-2, 2], got %v", c.LLMFrequencyPenalty)
	}
	if c.LLMPresencePenalty < -2 || c.LLMPresencePenalty > 2 {
		return fmt.Errorf("LLM_PRESENCE_PENALTY must be within [-2, 2], got %v", c.LLMPresencePenalty)
	}
	if c.LLMMaxTokens < 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must not be negative")
	}
	if c.HistoryMaxTurns < 0 {
		return fmt.Errorf("HISTORY_MAX_TURNS must not be negative")
	}

	switch strings.ToLower(c.STTProvider) {
	case ProviderOpenAI, ProviderGoogle:
	case ProviderDeepgram:
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required when STT_PROVIDER=deepgram")
		}
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STTProvider)
	}

	switch strings.ToLower(c.TTSProvider) {
	case ProviderOpenAI:
	case ProviderCartesia:
		if c.CartesiaAPIKey == "" {
			return fmt.Errorf("CARTESIA_API_KEY is required when TTS_PROVIDER=cartesia")
		}
		if c.CartesiaVoiceID == "" {
			return fmt.Errorf("CARTESIA_VOICE_ID is required when TTS_PROVIDER=cartesia")
		}
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
	}

	if c.TTSSpeed < 0.25 || c.TTSSpeed > 4.0 {
		return fmt.Errorf("TTS_SPEED must be within [0.25, 4.0], got %v", c.TTSSpeed)
	}
	if c.ListenTimeout <= 0 || c.PhraseTimeLimit <= 0 {
		return fmt.Errorf("LISTEN_TIMEOUT and PHRASE_TIME_LIMIT must be positive")
	}
	if c.CaptureSampleRate <= 0 {
		return fmt.Errorf("CAPTURE_SAMPLE_RATE must be positive")
	}
	if strings.TrimSpace(c.ExitKeyword) == "" {
		return fmt.Errorf("EXIT_KEYWORD must not be empty")
	}
	if !hasSingleStringVerb(c.TopicGreeting) {
		return fmt.Errorf("TOPIC_GREETING must contain exactly one %%s and no other verbs, got %q", c.TopicGreeting)
	}

	return nil
}

// hasSingleStringVerb reports whether format has one %s and no other verbs; %% is allowed
func hasSingleStringVerb(format string) bool {
	rest := strings.ReplaceAll(format, "%%", "")
	return strings.Count(rest, "%s") == 1 && strings.Count(rest, "%") == 1
}

// LoadPersona reads the persona instruction document
// A missing or empty document is a startup error
func LoadPersona(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read persona file %s: %w", path, err)
	}

	persona := string(data)
	if strings.TrimSpace(persona) == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}

	return persona, nil
}
