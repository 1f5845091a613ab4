package graph

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"soundboard/internal/logging"
)

// Session is an interactive connection to the PipeWire daemon. Objects created
// through a session live until the session is closed.
type Session interface {
	// Send writes one command line to the session.
	Send(line string) error
	// Done is closed once the session has exited.
	Done() <-chan struct{}
	// Close ends the session and waits for it to exit. It is safe to call
	// more than once.
	Close() error
}

// SessionStarter opens new sessions.
type SessionStarter interface {
	Start(ctx context.Context) (Session, error)
}

// PWCli starts pw-cli in interactive mode with commands fed over stdin. Each
// session is its own client with its own event loop, so the objects it creates
// are destroyed when the process exits.
type PWCli struct {
	Binary string
	Logger *slog.Logger
}

// Start implements SessionStarter. The session ends when ctx is cancelled.
func (c PWCli) Start(ctx context.Context) (Session, error) {
	binary := strings.TrimSpace(c.Binary)
	if binary == "" {
		binary = "pw-cli"
	}
	sessCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(sessCtx, binary)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("pw-cli stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("pw-cli stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start pw-cli: %w", err)
	}

	s := &pwCliSession{
		cmd:    cmd,
		stdin:  stdin,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logging.NewComponentLogger(c.Logger, "pw-cli").With(logging.Int("pid", cmd.Process.Pid)),
	}
	go s.watch(stdout)
	return s, nil
}

type pwCliSession struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger

	mu      sync.Mutex
	stdin   io.WriteCloser
	waitErr error
}

func (s *pwCliSession) watch(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.Contains(strings.ToLower(line), "error") {
			logging.WarnWithContext(s.logger, "pw-cli reported an error", "pw_cli_error",
				logging.String("output", line),
				logging.String(logging.FieldImpact, "audio graph object may be missing"),
				logging.String(logging.FieldErrorHint, "check that the referenced node and port ids still exist"),
			)
			continue
		}
		s.logger.Debug("pw-cli output", logging.String("output", line))
	}
	err := s.cmd.Wait()
	s.mu.Lock()
	s.waitErr = err
	s.mu.Unlock()
	close(s.done)
}

func (s *pwCliSession) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return fmt.Errorf("pw-cli session exited: %v", s.waitErr)
	default:
	}
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return fmt.Errorf("write pw-cli command: %w", err)
	}
	return nil
}

func (s *pwCliSession) Done() <-chan struct{} {
	return s.done
}

func (s *pwCliSession) Close() error {
	s.mu.Lock()
	_ = s.stdin.Close()
	s.mu.Unlock()
	s.cancel()
	<-s.done
	return nil
}

// createLinkCommand renders a pw-cli create-link line for one channel.
func createLinkCommand(out, in Port) string {
	return fmt.Sprintf("create-link %d %d %d %d", out.NodeID, out.PortID, in.NodeID, in.PortID)
}
