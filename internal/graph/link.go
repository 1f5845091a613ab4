package graph

import (
	"context"
	"fmt"
	"sync"

	"soundboard/internal/logging"
)

// LinkHandle controls one pair of links owned by a background session. The
// links exist until Cancel is called or the session dies.
type LinkHandle struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func newLinkHandle() *LinkHandle {
	return &LinkHandle{stop: make(chan struct{}), done: make(chan struct{})}
}

// Cancel signals the owning worker to tear the links down. It never blocks and
// tolerates workers that already exited. Cancel on a nil handle is a no-op.
func (h *LinkHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
}

// Done is closed once the worker has exited and the links are gone.
func (h *LinkHandle) Done() <-chan struct{} {
	return h.done
}

// LinkSlot holds at most one live LinkHandle. Installing a handle always
// cancels the previous one first, so a replaced link can never leak.
type LinkSlot struct {
	mu      sync.Mutex
	current *LinkHandle
}

// Replace cancels the installed handle, if any, and installs h.
func (s *LinkSlot) Replace(h *LinkHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Cancel()
	s.current = h
}

// Cancel cancels and clears the installed handle.
func (s *LinkSlot) Cancel() {
	s.Replace(nil)
}

// Active reports whether a handle is installed whose worker is still running.
func (s *LinkSlot) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	select {
	case <-s.current.done:
		return false
	default:
		return true
	}
}

// CreateLink links outFL to inFL and outFR to inFR in a dedicated session and
// returns the handle that keeps them alive. The session outlives ctx; only
// Cancel ends it.
func (m *Manager) CreateLink(ctx context.Context, outFL, outFR, inFL, inFR Port) (*LinkHandle, error) {
	sess, err := m.sessions.Start(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("start link session: %w", err)
	}
	for _, pair := range [][2]Port{{outFL, inFL}, {outFR, inFR}} {
		if err := sess.Send(createLinkCommand(pair[0], pair[1])); err != nil {
			_ = sess.Close()
			return nil, fmt.Errorf("create link %s -> %s: %w", pair[0], pair[1], err)
		}
	}

	h := newLinkHandle()
	go func() {
		defer close(h.done)
		select {
		case <-h.stop:
		case <-sess.Done():
			m.logger.Debug("link session exited before cancellation")
		}
		_ = sess.Close()
	}()

	m.logger.Info("link created",
		logging.String("fl", fmt.Sprintf("%d->%d", outFL.NodeID, inFL.NodeID)),
		logging.String("fr", fmt.Sprintf("%d->%d", outFR.NodeID, inFR.NodeID)),
	)
	return h, nil
}
