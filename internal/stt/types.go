package stt

import (
	"context"
	"errors"
)

var (
	// ErrTranscription wraps every failed transcription call
	ErrTranscription = errors.New("transcription failed")
	// ErrEmptyTranscript is returned when the service heard nothing intelligible
	ErrEmptyTranscript = errors.New("empty transcript")
)

// Transcriber converts a recorded single-channel WAV file to text
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}
