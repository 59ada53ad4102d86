package tts

import (
	"context"
	"errors"
)

var (
	// ErrSynthesis wraps every failed synthesis call
	ErrSynthesis = errors.New("synthesis failed")
	// ErrEmptyAudio is returned when the service answers with no samples
	ErrEmptyAudio = errors.New("synthesis returned no audio")
)

// outputSampleRate is requested from every provider
const outputSampleRate = 24000

// Audio is raw signed 16-bit little-endian mono PCM
type Audio struct {
	Data       []byte
	SampleRate int
}

// Synthesizer converts reply text to speech audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}
