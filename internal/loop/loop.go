package loop

import (
	"context"
	"errors"
	"strings"

	"github.com/lexiqai/voice-tutor/internal/audio"
	"github.com/lexiqai/voice-tutor/internal/observability"
	"github.com/lexiqai/voice-tutor/internal/stt"
	"github.com/lexiqai/voice-tutor/internal/tutor"
	"github.com/rs/zerolog"
)

// Operator notices
const (
	noticeNoSpeech   = "No speech detected. Please speak again."
	noticeEmpty      = "Sorry, I didn't catch that. Please try again."
	noticeGoodbye    = "Ending the conversation. Goodbye!"
	noticeTurnFailed = "Something went wrong with that turn. Please try again."
)

// Loop runs the capture, transcribe, reply and speak cycle
type Loop struct {
	recorder    Recorder
	transcriber Transcriber
	responder   Responder
	speaker     Speaker
	display     Display
	exitKeyword string

	state  State
	logger zerolog.Logger
}

// New creates a loop that ends when a transcript contains exitKeyword
func New(rec Recorder, tr Transcriber, resp Responder, sp Speaker, out Display, exitKeyword string) *Loop {
	return &Loop{
		recorder:    rec,
		transcriber: tr,
		responder:   resp,
		speaker:     sp,
		display:     out,
		exitKeyword: strings.ToLower(strings.TrimSpace(exitKeyword)),
		state:       AwaitingSpeech,
		logger:      observability.WithComponent("loop"),
	}
}

// State returns the current position in the turn cycle
func (l *Loop) State() State {
	return l.state
}

// Greet speaks an opening line without adding it to the history
// A failure is logged and shown but does not stop the session
func (l *Loop) Greet(ctx context.Context, text string) {
	l.display.Tutor(text)
	if err := l.speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		l.logger.Warn().Err(err).Msg("Failed to speak greeting")
		l.display.Notice(noticeTurnFailed)
	}
}

// Run processes turns until the exit keyword is heard or ctx is done
// It returns nil on the exit keyword and ctx.Err() on cancellation
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info().Msg("Conversation loop started")

	for {
		if err := ctx.Err(); err != nil {
			l.state = Terminal
			return err
		}

		metrics := observability.NewTurnMetrics(observability.NewCorrelationID())
		logger := observability.WithCorrelationID(metrics.CorrelationID()).With().Str("component", "loop").Logger()

		outcome, err := l.turn(ctx, metrics, logger)
		if ctx.Err() != nil {
			l.state = Terminal
			logger.Info().Msg("Conversation loop cancelled")
			return ctx.Err()
		}
		if err != nil {
			outcome = l.handleTurnError(err, metrics, logger)
		}
		metrics.RecordTurnEnd(outcome)
		observability.SetHistoryTurns(l.responder.HistoryLen())

		if outcome == observability.OutcomeExit {
			l.state = Terminal
			l.display.Notice(noticeGoodbye)
			logger.Info().Msg("Exit keyword heard")
			return nil
		}
		l.state = AwaitingSpeech
	}
}

// turn runs one cycle; every failure comes back as a *TurnError
func (l *Loop) turn(ctx context.Context, metrics *observability.Metrics, logger zerolog.Logger) (string, error) {
	l.state = AwaitingSpeech

	clip, err := l.capture(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := clip.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove captured clip")
		}
	}()
	logger.Debug().Dur("duration", clip.Duration).Str("file", clip.Path).Msg("Utterance captured")

	text, err := l.transcribe(ctx, clip, metrics)
	if err != nil {
		return "", err
	}
	l.display.User(text)
	logger.Info().Str("transcript", text).Msg("User turn")

	if l.isExit(text) {
		return observability.OutcomeExit, nil
	}

	l.state = ProcessingTurn
	reply, err := l.generate(ctx, text, metrics)
	if err != nil {
		return "", err
	}
	l.display.Tutor(reply)
	logger.Info().Str("reply", reply).Msg("Tutor turn")

	if err := l.speak(ctx, reply, metrics); err != nil {
		return "", err
	}
	return observability.OutcomeAnswered, nil
}

func (l *Loop) capture(ctx context.Context) (*audio.Clip, error) {
	clip, err := l.recorder.Capture(ctx)
	if err != nil {
		return nil, &TurnError{Stage: StageCapture, Err: err}
	}
	return clip, nil
}

func (l *Loop) transcribe(ctx context.Context, clip *audio.Clip, metrics *observability.Metrics) (string, error) {
	metrics.RecordSTTStart()
	text, err := l.transcriber.Transcribe(ctx, clip.Path)
	metrics.RecordSTTEnd(err == nil || errors.Is(err, stt.ErrEmptyTranscript))
	if err != nil {
		return "", &TurnError{Stage: StageTranscribe, Err: err}
	}
	return text, nil
}

func (l *Loop) generate(ctx context.Context, text string, metrics *observability.Metrics) (string, error) {
	metrics.RecordLLMStart()
	reply, err := l.responder.GetResponse(ctx, text)
	metrics.RecordLLMEnd(err == nil)
	if err != nil {
		return "", &TurnError{Stage: StageGenerate, Err: err}
	}
	return reply, nil
}

func (l *Loop) speak(ctx context.Context, text string, metrics *observability.Metrics) error {
	metrics.RecordTTSStart()
	err := l.speaker.Speak(ctx, text)
	metrics.RecordTTSEnd(err == nil)
	if err != nil {
		return &TurnError{Stage: StageSpeak, Err: err}
	}
	return nil
}

func (l *Loop) isExit(text string) bool {
	return l.exitKeyword != "" && strings.Contains(strings.ToLower(text), l.exitKeyword)
}

// handleTurnError logs, counts and reports a failed turn, returning its outcome
func (l *Loop) handleTurnError(err error, metrics *observability.Metrics, logger zerolog.Logger) string {
	switch {
	case errors.Is(err, audio.ErrNoSpeech):
		metrics.RecordCaptureTimeout()
		logger.Debug().Msg("Listen timeout without speech")
		l.display.Notice(noticeNoSpeech)
		return observability.OutcomeNoSpeech
	case errors.Is(err, stt.ErrEmptyTranscript):
		logger.Debug().Msg("Empty transcript")
		l.display.Notice(noticeEmpty)
		return observability.OutcomeEmpty
	case errors.Is(err, tutor.ErrSuperseded):
		logger.Info().Msg("Reply dropped after the session changed")
		return observability.OutcomeSuperseded
	}

	// every stage wrapper returns a *TurnError
	stage := StageSpeak
	var turnErr *TurnError
	if errors.As(err, &turnErr) {
		stage = turnErr.Stage
	}

	var outcome string
	switch stage {
	case StageCapture:
		outcome = observability.OutcomeCaptureErr
	case StageTranscribe:
		outcome = observability.OutcomeSTTError
	case StageGenerate:
		outcome = observability.OutcomeLLMError
	case StageSpeak:
		outcome = observability.OutcomeTTSError
	}

	metrics.RecordError(outcome, string(stage))
	logger.Error().Err(err).Str("stage", string(stage)).Msg("Turn failed")
	l.display.Notice(noticeTurnFailed)
	return outcome
}
