package tts

import (
	"context"
	"fmt"

	"github.com/lexiqai/voice-tutor/internal/audio"
	"github.com/lexiqai/voice-tutor/internal/observability"
	"github.com/rs/zerolog"
)

// Speaker synthesizes text and plays it to completion
type Speaker struct {
	synth   Synthesizer
	player  audio.Player
	tempDir string
	logger  zerolog.Logger
}

// NewSpeaker creates a speaker writing temporary clips under tempDir
// An empty tempDir uses the system default
func NewSpeaker(synth Synthesizer, player audio.Player, tempDir string) *Speaker {
	return &Speaker{
		synth:   synth,
		player:  player,
		tempDir: tempDir,
		logger:  observability.WithComponent("speaker"),
	}
}

// Speak blocks until text has been played
// The temporary clip is removed on every path
func (s *Speaker) Speak(ctx context.Context, text string) error {
	out, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return err
	}

	samples, err := audio.BytesToSamples(out.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	path, err := audio.WriteTempWAV(s.tempDir, "reply-*.wav", samples, out.SampleRate)
	if err != nil {
		return err
	}
	clip := &audio.Clip{Path: path, SampleRate: out.SampleRate, Duration: audio.Duration(len(samples), out.SampleRate)}
	defer func() {
		if err := clip.Remove(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to remove reply clip")
		}
	}()

	observability.RecordAudioBytes("out", int64(len(out.Data)))
	s.logger.Debug().Str("file", path).Dur("duration", clip.Duration).Msg("Playing reply")

	if err := s.player.PlayFile(ctx, path); err != nil {
		return fmt.Errorf("failed to play reply: %w", err)
	}
	return nil
}
