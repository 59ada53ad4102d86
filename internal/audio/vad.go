package audio

// VADConfig holds configuration for Voice Activity Detection
type VADConfig struct {
	EnergyThreshold float64 // RMS energy threshold for speech detection
	SilenceFrames   int     // Consecutive silent frames that end a phrase
}

// DefaultVADConfig returns a default VAD configuration for 20ms frames
func DefaultVADConfig() *VADConfig {
	return &VADConfig{
		EnergyThreshold: 300.0,
		SilenceFrames:   40, // 800ms
	}
}

// VADDetector performs energy-based Voice Activity Detection
type VADDetector struct {
	config         VADConfig
	silenceCounter int
	isSpeaking     bool
}

// NewVADDetector creates a new VAD detector
func NewVADDetector(config *VADConfig) *VADDetector {
	if config == nil {
		config = DefaultVADConfig()
	}
	return &VADDetector{config: *config}
}

// ProcessFrame processes an audio frame and returns whether speech is detected
// Returns: (isSpeaking, speechStarted, speechEnded)
func (v *VADDetector) ProcessFrame(samples []int16) (bool, bool, bool) {
	frameHasSpeech := CalculateRMS(samples) > v.config.EnergyThreshold

	var speechStarted, speechEnded bool

	if frameHasSpeech {
		v.silenceCounter = 0
		if !v.isSpeaking {
			speechStarted = true
			v.isSpeaking = true
		}
	} else {
		v.silenceCounter++
		if v.isSpeaking && v.silenceCounter >= v.config.SilenceFrames {
			speechEnded = true
			v.isSpeaking = false
			v.silenceCounter = 0
		}
	}

	return v.isSpeaking, speechStarted, speechEnded
}

// SetThreshold replaces the energy threshold, e.g. after calibration
func (v *VADDetector) SetThreshold(threshold float64) {
	v.config.EnergyThreshold = threshold
}

// Threshold returns the current energy threshold
func (v *VADDetector) Threshold() float64 {
	return v.config.EnergyThreshold
}

// Reset resets the VAD detector state
func (v *VADDetector) Reset() {
	v.silenceCounter = 0
	v.isSpeaking = false
}
