package loop

import (
	"context"
	"fmt"

	"github.com/lexiqai/voice-tutor/internal/audio"
)

// State is the loop's position in the turn cycle
type State int

const (
	AwaitingSpeech State = iota // Listening for the next utterance
	ProcessingTurn              // Generating and speaking a reply
	Terminal                    // Exit keyword heard or context done
)

func (s State) String() string {
	switch s {
	case AwaitingSpeech:
		return "awaiting_speech"
	case ProcessingTurn:
		return "processing_turn"
	case Terminal:
		return "terminal"
	}
	return "unknown"
}

// Stage names the step of a turn that failed
type Stage string

const (
	StageCapture    Stage = "capture"
	StageTranscribe Stage = "transcribe"
	StageGenerate   Stage = "generate"
	StageSpeak      Stage = "speak"
)

// TurnError is a non-fatal failure of one turn
type TurnError struct {
	Stage Stage
	Err   error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// Recorder captures one utterance as a clip the caller must remove
type Recorder interface {
	Capture(ctx context.Context) (*audio.Clip, error)
}

// Transcriber converts a clip file to text
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Responder produces the tutor's reply and owns the history
type Responder interface {
	GetResponse(ctx context.Context, userText string) (string, error)
	HistoryLen() int
}

// Speaker plays text aloud and blocks until done
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Display shows the transcript and operator notices
type Display interface {
	User(text string)
	Tutor(text string)
	Notice(msg string)
}
