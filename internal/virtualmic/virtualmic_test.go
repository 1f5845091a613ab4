package virtualmic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"soundboard/internal/graph"
)

type stubSessions struct {
	mu         sync.Mutex
	lines      []string
	session    *stubSession
	startErr   error
	exitOnSend bool
}

func (s *stubSessions) Start(context.Context) (graph.Session, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.session = &stubSession{parent: s, done: make(chan struct{})}
	return s.session, nil
}

type stubSession struct {
	parent *stubSessions
	done   chan struct{}
	once   sync.Once
}

func (s *stubSession) Send(line string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.lines = append(s.parent.lines, line)
	if s.parent.exitOnSend {
		s.once.Do(func() { close(s.done) })
	}
	return nil
}

func (s *stubSession) Done() <-chan struct{} { return s.done }

func (s *stubSession) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// stubFinder reports the node as present from the appearAt-th lookup on.
// appearAt of zero means never.
type stubFinder struct {
	mu       sync.Mutex
	calls    int
	appearAt int
}

func (f *stubFinder) FindDevice(_ context.Context, name string) (graph.AudioDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.appearAt > 0 && f.calls >= f.appearAt {
		return graph.AudioDevice{ID: 90, Name: name, Kind: graph.Input}, nil
	}
	return graph.AudioDevice{}, graph.ErrDeviceNotFound
}

func (f *stubFinder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newManager(sessions graph.SessionStarter, finder DeviceFinder) *Manager {
	return New(Options{
		Sessions:    sessions,
		Finder:      finder,
		Name:        "soundboard-virtual-mic",
		Description: "Soundboard Virtual Mic",
		Attempts:    3,
		RetryDelay:  time.Millisecond,
	})
}

func TestCreateSendsNullSinkNode(t *testing.T) {
	sessions := &stubSessions{}
	m := newManager(sessions, &stubFinder{appearAt: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(sessions.lines) != 1 {
		t.Fatalf("expected one command, got %v", sessions.lines)
	}
	cmd := sessions.lines[0]
	for _, want := range []string{
		"create-node adapter {",
		"factory.name=support.null-audio-sink",
		"node.name=soundboard-virtual-mic",
		`node.description="Soundboard Virtual Mic"`,
		"media.class=Audio/Source/Virtual",
		"audio.channels=2",
		"object.linger=false",
	} {
		if !strings.Contains(cmd, want) {
			t.Fatalf("command %q missing %q", cmd, want)
		}
	}

	select {
	case <-h.Done():
		t.Fatal("virtual mic must stay alive while the context is live")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("handle did not finish after context cancellation")
	}
	select {
	case <-sessions.session.done:
	default:
		t.Fatal("expected session to be closed")
	}
}

func TestCreateFailsWhenSessionCannotStart(t *testing.T) {
	m := newManager(&stubSessions{startErr: errors.New("pw-cli not found")}, &stubFinder{appearAt: 1})
	if _, err := m.Create(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateFailsWhenSessionExitsAfterCommand(t *testing.T) {
	sessions := &stubSessions{exitOnSend: true}
	finder := &stubFinder{appearAt: 1}
	h, err := newManager(sessions, finder).Create(context.Background())
	if !errors.Is(err, ErrSessionExited) {
		t.Fatalf("Create error = %v, want ErrSessionExited", err)
	}
	if h != nil {
		t.Fatal("expected no handle on failure")
	}
	if finder.Calls() != 0 {
		t.Fatalf("graph consulted %d times after session died", finder.Calls())
	}
}

func TestCreateFailsWithoutFinderWhenSessionExits(t *testing.T) {
	sessions := &stubSessions{exitOnSend: true}
	m := New(Options{Sessions: sessions, Name: "mic"})
	if _, err := m.Create(context.Background()); !errors.Is(err, ErrSessionExited) {
		t.Fatalf("Create error = %v, want ErrSessionExited", err)
	}
}

func TestCreateFailsWhenNodeNeverAppears(t *testing.T) {
	sessions := &stubSessions{}
	finder := &stubFinder{}
	_, err := newManager(sessions, finder).Create(context.Background())
	if !errors.Is(err, graph.ErrDeviceNotFound) {
		t.Fatalf("Create error = %v, want ErrDeviceNotFound", err)
	}
	if finder.Calls() != 3 {
		t.Fatalf("expected 3 lookups, got %d", finder.Calls())
	}
	select {
	case <-sessions.session.done:
	default:
		t.Fatal("expected session to be closed after failure")
	}
}

func TestCreateWaitsForNodeToAppear(t *testing.T) {
	finder := &stubFinder{appearAt: 3}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := newManager(&stubSessions{}, finder).Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer h.Cancel()
	if finder.Calls() != 3 {
		t.Fatalf("expected 3 lookups, got %d", finder.Calls())
	}
}
