package graph

import (
	"context"
	"sync"
	"time"
)

type snapshotSource struct {
	mu        sync.Mutex
	snapshots [][]Observation
	calls     int
	hold      bool
	err       error
	stopped   chan struct{}
}

func (s *snapshotSource) Stream(ctx context.Context, out chan<- Observation) error {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	var snap []Observation
	if n := len(s.snapshots); n > 0 {
		if idx >= n {
			idx = n - 1
		}
		snap = s.snapshots[idx]
	}
	s.mu.Unlock()

	for _, obs := range snap {
		select {
		case out <- obs:
		case <-ctx.Done():
			return nil
		}
	}
	if s.hold {
		<-ctx.Done()
		if s.stopped != nil {
			close(s.stopped)
		}
	}
	return s.err
}

func (s *snapshotSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingSessions struct {
	mu       sync.Mutex
	lines    []string
	sessions []*fakeSession
	startErr error
}

func (r *recordingSessions) Start(context.Context) (Session, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	s := &fakeSession{parent: r, done: make(chan struct{})}
	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	r.mu.Unlock()
	return s, nil
}

func (r *recordingSessions) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

type fakeSession struct {
	parent *recordingSessions
	done   chan struct{}
	once   sync.Once
}

func (s *fakeSession) Send(line string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.lines = append(s.parent.lines, line)
	return nil
}

func (s *fakeSession) Done() <-chan struct{} { return s.done }

func (s *fakeSession) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func device(id uint32, name string, kind DeviceKind) Observation {
	return Observation{Device: &AudioDevice{ID: id, Name: name, Nick: name, Kind: kind}}
}

func port(node, id uint32, name string) Observation {
	return Observation{Port: &Port{NodeID: node, PortID: id, Name: name}}
}

// micGraph returns a snapshot holding the virtual mic (node 60) and a stereo
// capture device (node 50).
func micGraph() []Observation {
	return []Observation{
		device(60, "soundboard-virtual-mic", Input),
		port(60, 0, "input_FL"),
		port(60, 1, "input_FR"),
		port(60, 2, "capture_FL"),
		port(60, 3, "capture_FR"),
		device(50, "alsa_input.usb-mic", Input),
		port(50, 2, "capture_FL"),
		port(50, 3, "capture_FR"),
	}
}

func newTestManager(src ObjectSource, sessions SessionStarter) *Manager {
	return NewManager(Options{
		Source:         src,
		Sessions:       sessions,
		VirtualMicName: "soundboard-virtual-mic",
		Attempts:       5,
		RetryDelay:     time.Millisecond,
		QuietPeriod:    20 * time.Millisecond,
	})
}
