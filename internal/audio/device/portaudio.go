// Package device binds the audio interfaces to the host's default
// microphone and speaker through PortAudio.
package device

import (
	"errors"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/lexiqai/voice-tutor/internal/audio"
)

const outputFrameDuration = 20 * time.Millisecond

// PortAudio opens streams on the default host devices
type PortAudio struct{}

// Open initializes PortAudio; call Close when done
func Open() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &PortAudio{}, nil
}

// Close terminates PortAudio
func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

// DefaultInputName returns the name of the default microphone
func (p *PortAudio) DefaultInputName() (string, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return "", err
	}
	return dev.Name, nil
}

// OpenInput starts a mono capture stream at the device's native rate
func (p *PortAudio) OpenInput(frameDuration time.Duration) (audio.InputStream, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("no default input device: %w", err)
	}

	rate := dev.DefaultSampleRate
	buf := make([]int16, int(rate*frameDuration.Seconds()))
	stream, err := portaudio.OpenDefaultStream(1, 0, rate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}

	return &inputStream{stream: stream, buf: buf, rate: int(rate)}, nil
}

// OpenOutput starts a mono playback stream at the device's native rate
func (p *PortAudio) OpenOutput() (audio.OutputStream, error) {
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("no default output device: %w", err)
	}

	rate := dev.DefaultSampleRate
	buf := make([]int16, int(rate*outputFrameDuration.Seconds()))
	stream, err := portaudio.OpenDefaultStream(0, 1, rate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start output stream: %w", err)
	}

	return &outputStream{stream: stream, buf: buf, rate: int(rate)}, nil
}

type inputStream struct {
	stream *portaudio.Stream
	buf    []int16
	rate   int
}

func (s *inputStream) Read() ([]int16, error) {
	// Overflow only means frames were dropped while we were busy
	if err := s.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, err
	}
	return s.buf, nil
}

func (s *inputStream) SampleRate() int { return s.rate }

func (s *inputStream) Close() error {
	return closeStream(s.stream)
}

type outputStream struct {
	stream *portaudio.Stream
	buf    []int16
	rate   int
}

func (s *outputStream) Write(frame []int16) error {
	n := copy(s.buf, frame)
	clear(s.buf[n:])
	if err := s.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
		return err
	}
	return nil
}

func (s *outputStream) SampleRate() int { return s.rate }
func (s *outputStream) FrameSize() int  { return len(s.buf) }

func (s *outputStream) Close() error {
	return closeStream(s.stream)
}

func closeStream(stream *portaudio.Stream) error {
	stopErr := stream.Stop()
	closeErr := stream.Close()
	return errors.Join(stopErr, closeErr)
}
