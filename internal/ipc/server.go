package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"soundboard/internal/logging"
)

const requestReadTimeout = 5 * time.Second

// Server answers framed requests on a Unix domain socket.
type Server struct {
	path     string
	handler  Handler
	logger   *slog.Logger
	listener net.Listener
	ownUID   uint32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer binds the socket at path, replacing any stale socket file.
func NewServer(ctx context.Context, path string, handler Handler, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("ipc server requires a handler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:     path,
		handler:  handler,
		logger:   logging.NewComponentLogger(logger, "ipc"),
		listener: listener,
		ownUID:   uint32(os.Getuid()),
		ctx:      serverCtx,
		cancel:   cancel,
	}, nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve accepts connections until the server is closed.
func (s *Server) Serve() {
	s.logger.Info("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.serveConn(c)
			}(conn)
		}
	}()
}

// Close stops accepting, waits for in-flight connections and removes the
// socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"),
		)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	ctx := logging.WithCorrelationID(s.ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "command handler panicked", "ipc_handler_panic",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldImpact, "the client connection was dropped"),
				logging.String(logging.FieldErrorHint, "report the command that triggered this"),
			)
		}
	}()

	uid, err := peerUID(conn)
	if err != nil {
		logger.Warn("peer credentials unavailable", logging.Error(err))
		return
	}
	if uid != s.ownUID && uid != 0 {
		logging.WarnWithContext(logger, "rejected connection from foreign user", "ipc_peer_rejected",
			logging.Int64("peer_uid", int64(uid)),
			logging.String(logging.FieldImpact, "the request was not executed"),
			logging.String(logging.FieldErrorHint, "run the client as the daemon's user"),
		)
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))
	var req Request
	if err := ReadMessage(conn, &req); err != nil {
		logger.Debug("dropping connection with unreadable request", logging.Error(err))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	logger = logger.With(logging.String(logging.FieldCommand, req.Name))
	logger.Debug("request received")
	resp := s.handler.Handle(ctx, req)
	if err := WriteMessage(conn, resp); err != nil {
		logger.Debug("failed to write response", logging.Error(err))
		return
	}
	logger.Debug("response sent", logging.Bool("status", resp.Status))
}
