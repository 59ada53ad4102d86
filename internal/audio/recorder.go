package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexiqai/voice-tutor/internal/config"
	"github.com/lexiqai/voice-tutor/internal/observability"
)

// ErrNoSpeech is returned when the listen timeout elapses before speech starts
var ErrNoSpeech = errors.New("no speech detected")

// ambientRatio scales measured background energy into a speech threshold
const ambientRatio = 1.5

// RecorderConfig controls phrase capture
type RecorderConfig struct {
	ListenTimeout   time.Duration // Wait for speech to start
	PhraseTimeLimit time.Duration // Longest single phrase
	Silence         time.Duration // Silence that ends a phrase
	Calibration     time.Duration // Ambient noise sampling
	EnergyThreshold float64       // Minimum VAD threshold
	SampleRate      int           // Rate of the written clip
	FrameDuration   time.Duration
	PreRoll         time.Duration // Audio kept from before speech onset
	TempDir         string
}

// RecorderConfigFromConfig reads the capture settings
func RecorderConfigFromConfig(cfg *config.Config) RecorderConfig {
	return RecorderConfig{
		ListenTimeout:   cfg.ListenTimeout,
		PhraseTimeLimit: cfg.PhraseTimeLimit,
		Silence:         cfg.VADSilence,
		Calibration:     cfg.AmbientCalibration,
		EnergyThreshold: cfg.VADEnergyThreshold,
		SampleRate:      cfg.CaptureSampleRate,
		FrameDuration:   20 * time.Millisecond,
		PreRoll:         300 * time.Millisecond,
	}
}

// Recorder captures one spoken phrase at a time from an input device
type Recorder struct {
	device InputDevice
	cfg    RecorderConfig
	vad    *VADDetector

	preRoll     *SampleRing
	preRollRate int
}

// NewRecorder creates a recorder using cfg.EnergyThreshold until calibrated
func NewRecorder(device InputDevice, cfg RecorderConfig) *Recorder {
	if cfg.FrameDuration <= 0 {
		cfg.FrameDuration = 20 * time.Millisecond
	}
	silenceFrames := int(cfg.Silence / cfg.FrameDuration)
	if silenceFrames < 1 {
		silenceFrames = 1
	}
	return &Recorder{
		device: device,
		cfg:    cfg,
		vad:    NewVADDetector(&VADConfig{EnergyThreshold: cfg.EnergyThreshold, SilenceFrames: silenceFrames}),
	}
}

// Threshold returns the active speech energy threshold
func (r *Recorder) Threshold() float64 {
	return r.vad.Threshold()
}

// Calibrate samples background noise and raises the threshold above it
func (r *Recorder) Calibrate(ctx context.Context) (float64, error) {
	if r.cfg.Calibration <= 0 {
		return r.vad.Threshold(), nil
	}

	stream, err := r.device.OpenInput(r.cfg.FrameDuration)
	if err != nil {
		return 0, fmt.Errorf("failed to open microphone: %w", err)
	}
	defer stream.Close()

	var (
		elapsed time.Duration
		sum     float64
		frames  int
	)
	for elapsed < r.cfg.Calibration {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		frame, err := stream.Read()
		if err != nil {
			return 0, fmt.Errorf("failed to read microphone: %w", err)
		}
		sum += CalculateRMS(frame)
		frames++
		elapsed += Duration(len(frame), stream.SampleRate())
		if len(frame) == 0 {
			break
		}
	}

	if frames > 0 {
		threshold := r.cfg.EnergyThreshold
		if ambient := sum / float64(frames) * ambientRatio; ambient > threshold {
			threshold = ambient
		}
		r.vad.SetThreshold(threshold)
	}
	return r.vad.Threshold(), nil
}

// Capture waits for a phrase and stores it as a WAV clip
// The caller owns the clip and must Remove it
func (r *Recorder) Capture(ctx context.Context) (*Clip, error) {
	stream, err := r.device.OpenInput(r.cfg.FrameDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to open microphone: %w", err)
	}
	defer stream.Close()

	rate := stream.SampleRate()
	r.vad.Reset()
	preRoll := r.preRollFor(rate)

	var (
		phrase []int16
		waited time.Duration
		spoken time.Duration
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := stream.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read microphone: %w", err)
		}
		if len(frame) == 0 {
			return nil, fmt.Errorf("microphone returned an empty frame")
		}
		d := Duration(len(frame), rate)
		_, started, ended := r.vad.ProcessFrame(frame)

		if phrase == nil {
			if started {
				phrase = append(preRoll.Snapshot(), frame...)
				spoken = d
				continue
			}
			preRoll.Write(frame)
			waited += d
			if waited >= r.cfg.ListenTimeout {
				return nil, ErrNoSpeech
			}
			continue
		}

		phrase = append(phrase, frame...)
		spoken += d
		if ended || spoken >= r.cfg.PhraseTimeLimit {
			break
		}
	}

	samples := Resample(phrase, rate, r.cfg.SampleRate)
	path, err := WriteTempWAV(r.cfg.TempDir, "utterance-*.wav", samples, r.cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	observability.RecordAudioBytes("in", int64(len(samples)*2))

	return &Clip{
		Path:       path,
		SampleRate: r.cfg.SampleRate,
		Duration:   Duration(len(samples), r.cfg.SampleRate),
	}, nil
}

// preRollFor returns an empty pre-roll ring sized for rate
func (r *Recorder) preRollFor(rate int) *SampleRing {
	if r.preRoll == nil || r.preRollRate != rate {
		r.preRoll = NewSampleRing(int(r.cfg.PreRoll.Seconds() * float64(rate)))
		r.preRollRate = rate
		return r.preRoll
	}
	r.preRoll.Clear()
	return r.preRoll
}
