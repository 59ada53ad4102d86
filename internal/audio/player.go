package audio

import (
	"context"
	"fmt"
)

// Player plays an audio file to completion
type Player interface {
	PlayFile(ctx context.Context, path string) error
}

// PCMPlayer writes WAV audio to an output device frame by frame
type PCMPlayer struct {
	device OutputDevice
}

// NewPCMPlayer creates a player for device
func NewPCMPlayer(device OutputDevice) *PCMPlayer {
	return &PCMPlayer{device: device}
}

// PlayFile decodes a WAV file and blocks until it has been played
func (p *PCMPlayer) PlayFile(ctx context.Context, path string) error {
	samples, rate, err := ReadWAV(path)
	if err != nil {
		return err
	}
	return p.Play(ctx, samples, rate)
}

// Play resamples to the device rate and blocks until every frame is written
func (p *PCMPlayer) Play(ctx context.Context, samples []int16, sampleRate int) error {
	if len(samples) == 0 {
		return nil
	}

	stream, err := p.device.OpenOutput()
	if err != nil {
		return fmt.Errorf("failed to open speaker: %w", err)
	}
	defer stream.Close()

	out := Resample(samples, sampleRate, stream.SampleRate())
	frameSize := stream.FrameSize()
	if frameSize <= 0 {
		frameSize = len(out)
	}

	for off := 0; off < len(out); off += frameSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(off+frameSize, len(out))
		if err := stream.Write(out[off:end]); err != nil {
			return fmt.Errorf("failed to write to speaker: %w", err)
		}
	}
	return nil
}
