package audio

import (
	"sync"
	"time"
)

// Sink plays one source at a time. It is safe for concurrent use by the
// engine and the output callback.
type Sink struct {
	mu         sync.Mutex
	sampleRate int

	src    Source
	track  Track
	open   Opener
	paused bool
	volume float32

	offset   time.Duration
	consumed int64
	scratch  []float32
	lastErr  error
}

// NewSink returns an empty, unpaused sink at unity volume.
func NewSink(sampleRate int) *Sink {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &Sink{sampleRate: sampleRate, volume: 1}
}

// Replace discards whatever is queued and installs src as the sink's only
// source. open is used to reposition the track on seek and may be nil.
// The pause flag is left untouched.
func (s *Sink) Replace(track Track, src Source, open Opener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	s.src = src
	s.track = track
	s.open = open
	s.offset = 0
	s.consumed = 0
	s.lastErr = nil
}

// Stop empties the sink.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Sink) closeLocked() {
	if s.src != nil {
		_ = s.src.Close()
	}
	s.src = nil
	s.open = nil
	s.track = Track{}
	s.offset = 0
	s.consumed = 0
}

// Empty reports whether no source is queued.
func (s *Sink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src == nil
}

func (s *Sink) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Play clears the pause flag.
func (s *Sink) Play() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

func (s *Sink) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetVolume sets the linear gain applied to every sample.
func (s *Sink) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = float32(v)
	s.mu.Unlock()
}

func (s *Sink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.volume)
}

// Position returns the playback position of the queued source, or zero.
func (s *Sink) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src == nil {
		return 0
	}
	frames := s.consumed / Channels
	return s.offset + time.Duration(frames)*time.Second/time.Duration(s.sampleRate)
}

// Track returns the queued track, if any.
func (s *Sink) Track() (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track, s.src != nil
}

// LastError returns the error that ended the previous source early, if any.
func (s *Sink) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// TrySeek repositions the queued source. An empty sink is left alone.
func (s *Sink) TrySeek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src == nil {
		return nil
	}
	if !s.track.Seekable() || s.open == nil {
		return ErrSeekUnsupported
	}
	if pos < 0 {
		pos = 0
	}
	next, err := s.open(pos)
	if err != nil {
		return err
	}
	_ = s.src.Close()
	s.src = next
	s.offset = pos
	s.consumed = 0
	return nil
}

// mixInto adds the sink's next len(dst) samples, scaled by volume, to dst.
// A source that ends or fails is closed and the sink becomes empty.
func (s *Sink) mixInto(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src == nil || s.paused {
		return
	}
	if cap(s.scratch) < len(dst) {
		s.scratch = make([]float32, len(dst))
	}
	buf := s.scratch[:len(dst)]

	filled := 0
	for filled < len(buf) {
		n, err := s.src.Read(buf[filled:])
		filled += n
		if err != nil {
			if !isEOF(err) {
				s.lastErr = err
			}
			s.closeLocked()
			break
		}
		if n == 0 {
			break
		}
	}
	vol := s.volume
	for i := 0; i < filled; i++ {
		dst[i] += buf[i] * vol
	}
	if s.src != nil {
		s.consumed += int64(filled)
	}
}
