package audio

import (
	"errors"
	"io"
	"sync"
)

// Mixer sums the output of its sinks. It never ends: with nothing playing it
// produces silence.
type Mixer struct {
	mu    sync.RWMutex
	sinks []*Sink
}

// NewMixer returns a mixer over sinks.
func NewMixer(sinks ...*Sink) *Mixer {
	return &Mixer{sinks: append([]*Sink(nil), sinks...)}
}

// Add attaches another sink.
func (m *Mixer) Add(s *Sink) {
	m.mu.Lock()
	m.sinks = append(m.sinks, s)
	m.mu.Unlock()
}

// Read fills dst with the clipped sum of every sink. It always fills the
// whole buffer.
func (m *Mixer) Read(dst []float32) (int, error) {
	clear(dst)
	m.mu.RLock()
	for _, s := range m.sinks {
		s.mixInto(dst)
	}
	m.mu.RUnlock()
	for i, v := range dst {
		switch {
		case v > 1:
			dst[i] = 1
		case v < -1:
			dst[i] = -1
		}
	}
	return len(dst), nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
