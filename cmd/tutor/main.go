package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-tutor/internal/audio"
	"github.com/lexiqai/voice-tutor/internal/audio/device"
	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/console"
	"github.com/lexiqai/voice-tutor/internal/llm"
	"github.com/lexiqai/voice-tutor/internal/loop"
	"github.com/lexiqai/voice-tutor/internal/observability"
	"github.com/lexiqai/voice-tutor/internal/resilience"
	"github.com/lexiqai/voice-tutor/internal/stt"
	"github.com/lexiqai/voice-tutor/internal/topic"
	"github.com/lexiqai/voice-tutor/internal/tts"
	"github.com/lexiqai/voice-tutor/internal/tutor"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so the transcript on stdout stays readable
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	observability.SetSessionID(observability.NewSessionID())
	logger := observability.GetLogger()

	logger.Info().
		Str("llm_model", cfg.LLMModel).
		Str("stt_provider", cfg.STTProvider).
		Str("tts_provider", cfg.TTSProvider).
		Str("log_level", cfg.LogLevel).
		Msg("Voice tutor starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("Voice tutor stopped")
		stop()
		os.Exit(1)
	}
	logger.Info().Msg("Voice tutor exited")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	persona, err := config.LoadPersona(cfg.PersonaFile)
	if err != nil {
		return err
	}

	catalog := topic.Default()
	if cfg.TopicsFile != "" {
		if catalog, err = topic.LoadFile(cfg.TopicsFile); err != nil {
			return err
		}
	}
	logger.Info().Int("topics", catalog.Len()).Msg("Topic catalog loaded")

	sttBreaker := newBreaker("stt", cfg)
	llmBreaker := newBreaker("llm", cfg)
	ttsBreaker := newBreaker("tts", cfg)

	gen, err := llm.NewOpenAIGenerator(cfg, llmBreaker)
	if err != nil {
		return err
	}

	var opts []tutor.Option
	if cfg.HistoryMaxTurns > 0 {
		opts = append(opts, tutor.WithWindow(tutor.KeepLastTurns(cfg.HistoryMaxTurns)))
	}
	session := tutor.NewSession(persona, catalog, gen, opts...)

	transcriber, err := stt.New(ctx, cfg, sttBreaker)
	if err != nil {
		return err
	}
	if closer, ok := transcriber.(io.Closer); ok {
		defer closer.Close()
	}

	synth, err := tts.New(cfg, ttsBreaker)
	if err != nil {
		return err
	}

	dev, err := device.Open()
	if err != nil {
		return err
	}
	defer dev.Close()

	if name, err := dev.DefaultInputName(); err == nil {
		logger.Info().Str("device", name).Msg("Using default microphone")
	}

	if cfg.MetricsAddr != "" {
		server := observability.NewServer(cfg.MetricsAddr, map[string]observability.HealthCheckFunc{
			"stt": observability.BreakerCheck(sttBreaker),
			"llm": observability.BreakerCheck(llmBreaker),
			"tts": observability.BreakerCheck(ttsBreaker),
		})
		observability.StartServer(server)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Metrics listener forced to shutdown")
			}
		}()
	}

	out := console.New(os.Stdout)
	out.Title("English voice tutor")

	recorder := audio.NewRecorder(dev, audio.RecorderConfigFromConfig(cfg))
	out.Notice("Measuring background noise, please stay quiet...")
	threshold, err := recorder.Calibrate(ctx)
	if err != nil {
		return fmt.Errorf("calibration failed: %w", err)
	}
	logger.Info().Float64("threshold", threshold).Msg("Microphone calibrated")

	name, err := console.PickTopic(session)
	if err != nil {
		return err
	}
	session.SetTopic(name)
	if name != tutor.FreeForm {
		out.Notice(fmt.Sprintf("%s: %s", name, session.TopicDescription(name)))
	}
	out.Notice(fmt.Sprintf("Say %q to finish.", cfg.ExitKeyword))
	logger.Info().Str("topic", name).Msg("Topic selected")

	speaker := tts.NewSpeaker(synth, audio.NewPCMPlayer(dev), "")
	l := loop.New(recorder, transcriber, session, speaker, out, cfg.ExitKeyword)
	l.Greet(ctx, console.Greeting(name, cfg.Greeting, cfg.TopicGreeting))

	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newBreaker(name string, cfg *config.Config) *resilience.CircuitBreaker {
	cb := resilience.NewCircuitBreaker(name, cfg.CircuitBreakerMaxFailures, time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second)
	observability.TrackCircuitBreaker(cb)
	return cb
}
