package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/lexiqai/voice-tutor/internal/audio"
	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/resilience"
)

// GoogleClient transcribes with Google Cloud Speech-to-Text
// Credentials come from GOOGLE_CREDENTIALS_FILE or Application Default Credentials
type GoogleClient struct {
	client   *speech.Client
	language string
	guard    guard
}

// NewGoogleClient dials the Speech API
func NewGoogleClient(ctx context.Context, cfg *config.Config, breaker *resilience.CircuitBreaker) (*GoogleClient, error) {
	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleClient{
		client:   client,
		language: cfg.GoogleSpeechLanguage,
		guard:    newGuard(config.ProviderGoogle, cfg, breaker),
	}, nil
}

// Transcribe sends the clip as LINEAR16 and joins the best alternatives
func (g *GoogleClient) Transcribe(ctx context.Context, path string) (string, error) {
	samples, rate, err := audio.ReadWAV(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	req := recognizeRequest(audio.SamplesToBytes(samples), rate, g.language)
	return g.guard.transcribe(ctx, path, func() (string, error) {
		resp, err := g.client.Recognize(ctx, req)
		if err != nil {
			return "", err
		}
		return joinResults(resp), nil
	})
}

// Close releases the gRPC connection
func (g *GoogleClient) Close() error {
	return g.client.Close()
}

func recognizeRequest(pcm []byte, sampleRate int, language string) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(sampleRate),
			AudioChannelCount:          1,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	}
}

func joinResults(resp *speechpb.RecognizeResponse) string {
	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if text := strings.TrimSpace(alts[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
