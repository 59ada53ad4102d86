package audio

import (
	"errors"
	"time"
)

type fakeInput struct {
	rate   int
	frames [][]int16
	pos    int
	err    error
	closed bool
	reads  int
}

func (f *fakeInput) Read() ([]int16, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	frameLen := f.rate / 50
	if f.pos < len(f.frames) {
		frame := f.frames[f.pos]
		f.pos++
		return frame, nil
	}
	return make([]int16, frameLen), nil
}

func (f *fakeInput) SampleRate() int { return f.rate }

func (f *fakeInput) Close() error {
	f.closed = true
	return nil
}

type fakeInputDevice struct {
	stream  *fakeInput
	openErr error
	opened  int
}

func (d *fakeInputDevice) OpenInput(frameDuration time.Duration) (InputStream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened++
	d.stream.closed = false
	return d.stream, nil
}

type fakeOutput struct {
	rate      int
	frameSize int
	written   []int16
	writes    int
	failAfter int
	closed    bool
}

func (f *fakeOutput) Write(frame []int16) error {
	if f.failAfter > 0 && f.writes >= f.failAfter {
		return errors.New("device lost")
	}
	f.writes++
	f.written = append(f.written, frame...)
	return nil
}

func (f *fakeOutput) SampleRate() int { return f.rate }
func (f *fakeOutput) FrameSize() int  { return f.frameSize }

func (f *fakeOutput) Close() error {
	f.closed = true
	return nil
}

type fakeOutputDevice struct {
	stream *fakeOutput
	opened int
}

func (d *fakeOutputDevice) OpenOutput() (OutputStream, error) {
	d.opened++
	return d.stream, nil
}

func frames(n, size int, amplitude int16) [][]int16 {
	out := make([][]int16, n)
	for i := range out {
		out[i] = constantFrame(size, amplitude)
	}
	return out
}

func script(parts ...[][]int16) [][]int16 {
	var out [][]int16
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
