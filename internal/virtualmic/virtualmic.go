// Package virtualmic creates the synthetic capture node that other
// applications select as their microphone.
package virtualmic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"soundboard/internal/graph"
	"soundboard/internal/logging"
)

// ErrSessionExited is returned when the pw-cli session ends before the node
// shows up in the graph.
var ErrSessionExited = errors.New("virtual mic session exited before the node appeared")

// DeviceFinder looks up a graph node by name. graph.Manager implements it.
type DeviceFinder interface {
	FindDevice(ctx context.Context, name string) (graph.AudioDevice, error)
}

// Options configures a Manager.
type Options struct {
	Sessions    graph.SessionStarter
	Finder      DeviceFinder
	Name        string
	Description string
	Attempts    int
	RetryDelay  time.Duration
	Logger      *slog.Logger
}

// Manager creates the virtual microphone node.
type Manager struct {
	sessions    graph.SessionStarter
	finder      DeviceFinder
	name        string
	description string
	attempts    int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// New returns a Manager. When opts.Finder is nil, Create only checks that the
// session is still running after the create command was written.
func New(opts Options) *Manager {
	m := &Manager{
		sessions:    opts.Sessions,
		finder:      opts.Finder,
		name:        opts.Name,
		description: opts.Description,
		attempts:    opts.Attempts,
		retryDelay:  opts.RetryDelay,
		logger:      logging.NewComponentLogger(opts.Logger, "virtualmic"),
	}
	if m.attempts < 1 {
		m.attempts = 5
	}
	return m
}

// Handle keeps the virtual mic alive. The daemon retains it for its whole
// lifetime; the node goes away when the process exits.
type Handle struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// Cancel destroys the node. Normal operation never calls it.
func (h *Handle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}

// Done is closed once the owning session has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Create starts a background session that creates one stereo virtual source
// and keeps it alive until ctx ends or the handle is cancelled. It returns only
// once the node is visible in the graph.
func (m *Manager) Create(ctx context.Context) (*Handle, error) {
	sess, err := m.sessions.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("start virtual mic session: %w", err)
	}
	if err := sess.Send(m.createCommand()); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("create virtual mic: %w", err)
	}
	if err := m.confirm(ctx, sess); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("create virtual mic %s: %w", m.name, err)
	}

	h := &Handle{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		select {
		case <-h.stop:
		case <-ctx.Done():
		case <-sess.Done():
			logging.ErrorWithContext(m.logger, "virtual mic session exited", "virtual_mic_lost",
				logging.String(logging.FieldDevice, m.name),
				logging.String(logging.FieldErrorHint, "restart the daemon to recreate the virtual mic"),
			)
		}
		_ = sess.Close()
	}()

	m.logger.Info("virtual mic created", logging.String(logging.FieldDevice, m.name))
	return h, nil
}

// confirm polls the graph until the node appears, giving up early when the
// session dies.
func (m *Manager) confirm(ctx context.Context, sess graph.Session) error {
	if m.finder == nil {
		return sessionAlive(sess)
	}
	var lastErr error
	for attempt := 1; attempt <= m.attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(m.retryDelay)
			select {
			case <-timer.C:
			case <-sess.Done():
				timer.Stop()
				return ErrSessionExited
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
		if err := sessionAlive(sess); err != nil {
			return err
		}
		_, err := m.finder.FindDevice(ctx, m.name)
		if err == nil {
			return sessionAlive(sess)
		}
		lastErr = err
		m.logger.Debug("virtual mic not visible yet",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", m.attempts),
			logging.Error(err),
		)
	}
	return fmt.Errorf("node not found after %d attempts: %w", m.attempts, lastErr)
}

func sessionAlive(sess graph.Session) error {
	select {
	case <-sess.Done():
		return ErrSessionExited
	default:
		return nil
	}
}

func (m *Manager) createCommand() string {
	props := []string{
		"factory.name=support.null-audio-sink",
		"node.name=" + quote(m.name),
		"node.description=" + quote(m.description),
		"media.class=Audio/Source/Virtual",
		"audio.position=[ FL FR ]",
		"audio.channels=2",
		"object.linger=false",
	}
	return "create-node adapter { " + strings.Join(props, " ") + " }"
}

// quote wraps values containing spaces so pw-cli parses them as one token.
func quote(value string) string {
	if strings.ContainsAny(value, " \t{}[]=") {
		return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	return value
}
