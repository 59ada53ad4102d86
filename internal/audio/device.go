package audio

import "time"

// InputStream delivers mono 16-bit frames from a microphone
type InputStream interface {
	// Read blocks until the next frame is available
	// The returned slice is only valid until the next call
	Read() ([]int16, error)
	SampleRate() int
	Close() error
}

// OutputStream accepts mono 16-bit frames for a speaker
type OutputStream interface {
	// Write blocks until the frame has been queued for playback
	Write(frame []int16) error
	SampleRate() int
	FrameSize() int
	Close() error
}

// InputDevice opens capture streams
type InputDevice interface {
	OpenInput(frameDuration time.Duration) (InputStream, error)
}

// OutputDevice opens playback streams
type OutputDevice interface {
	OpenOutput() (OutputStream, error)
}
