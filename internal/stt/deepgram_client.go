package stt

import (
	"context"
	"fmt"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/resilience"
)

// DeepgramClient transcribes recorded clips with Deepgram's pre-recorded API
type DeepgramClient struct {
	client  *api.Client
	options *interfaces.PreRecordedTranscriptionOptions
	guard   guard
}

// NewDeepgramClient creates a pre-recorded transcription client
func NewDeepgramClient(cfg *config.Config, breaker *resilience.CircuitBreaker) *DeepgramClient {
	rest := listenClient.NewREST(cfg.DeepgramAPIKey, &interfaces.ClientOptions{})

	return &DeepgramClient{
		client: api.New(rest),
		options: &interfaces.PreRecordedTranscriptionOptions{
			Model:       cfg.DeepgramModel,
			Language:    cfg.DeepgramLanguage,
			Punctuate:   true,
			SmartFormat: true,
		},
		guard: newGuard(config.ProviderDeepgram, cfg, breaker),
	}
}

// Transcribe uploads the clip and returns the first channel's best alternative
func (d *DeepgramClient) Transcribe(ctx context.Context, path string) (string, error) {
	return d.guard.transcribe(ctx, path, func() (string, error) {
		res, err := d.client.FromFile(ctx, path, d.options)
		if err != nil {
			return "", err
		}
		if res == nil || res.Results == nil {
			return "", fmt.Errorf("deepgram returned no results")
		}

		// mono clips carry a single channel
		channels := res.Results.Channels
		if len(channels) == 0 || len(channels[0].Alternatives) == 0 {
			return "", nil
		}
		return channels[0].Alternatives[0].Transcript, nil
	})
}
