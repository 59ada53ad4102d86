package audio

import (
	"sync"
)

// SampleRing is a thread-safe ring of the most recent samples
// Writes past capacity overwrite the oldest samples
type SampleRing struct {
	buffer []int16
	size   int
	write  int
	count  int
	mu     sync.Mutex
}

// NewSampleRing creates a ring holding up to size samples
func NewSampleRing(size int) *SampleRing {
	if size < 0 {
		size = 0
	}
	return &SampleRing{
		buffer: make([]int16, size),
		size:   size,
	}
}

// Write appends samples, dropping the oldest when full
func (r *SampleRing) Write(samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return
	}
	if len(samples) > r.size {
		samples = samples[len(samples)-r.size:]
	}

	for _, s := range samples {
		r.buffer[r.write] = s
		r.write = (r.write + 1) % r.size
	}

	r.count += len(samples)
	if r.count > r.size {
		r.count = r.size
	}
}

// Snapshot returns the buffered samples, oldest first
func (r *SampleRing) Snapshot() []int16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int16, r.count)
	start := (r.write - r.count + r.size) % max(r.size, 1)
	for i := 0; i < r.count; i++ {
		out[i] = r.buffer[(start+i)%r.size]
	}
	return out
}

// Len returns the number of buffered samples
func (r *SampleRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Clear empties the ring
func (r *SampleRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.write = 0
	r.count = 0
}
