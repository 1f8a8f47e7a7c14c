// Package control implements the per-worker control channel: a server owned
// by the detached worker and a client used by the stop and list commands.
//
// The wire protocol is a 4-byte request ("info" or "stop"). An info request
// is answered with a short text reply terminated by the server closing the
// connection; a stop request gets no reply.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/scienceol/keep-awake/internal/tracker"
)

const (
	defaultRequestTimeout = 5 * time.Second
	acceptRetryDelay      = 50 * time.Millisecond
)

// Reason tells why Serve returned.
type Reason int

const (
	// ReasonExpired means the time budget ran out.
	ReasonExpired Reason = iota
	// ReasonStopRequested means a client sent "stop".
	ReasonStopRequested
	// ReasonCanceled means the serve context was canceled.
	ReasonCanceled
)

func (r Reason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonStopRequested:
		return "stop requested"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ServerConfig configures Listen.
type ServerConfig struct {
	Path           string
	Tracker        *tracker.Tracker
	Access         AccessControl
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Server answers control requests one connection at a time.
type Server struct {
	ln             *net.UnixListener
	path           string
	tracker        *tracker.Tracker
	access         AccessControl
	requestTimeout time.Duration
	logger         *slog.Logger

	// conns hands accepted connections to the serve loop. It is unbuffered
	// so at most one client is being handled while one more waits in the
	// acceptor.
	conns chan *net.UnixConn
	done  chan struct{}
	once  sync.Once
}

// Listen creates the channel socket at cfg.Path, readable and writable by
// the owner only.
func Listen(cfg ServerConfig) (*Server, error) {
	if err := supported(); err != nil {
		return nil, err
	}
	if cfg.Tracker == nil {
		return nil, errors.New("control: tracker is required")
	}
	if cfg.Access == nil {
		cfg.Access = OwnerAccess()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// A leftover socket can only belong to an earlier process with our pid.
	if err := os.Remove(cfg.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale control channel: %w", err)
	}

	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: cfg.Path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("create control channel: %w", err)
	}
	if err := os.Chmod(cfg.Path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("restrict control channel: %w", err)
	}

	return &Server{
		ln:             ln,
		path:           cfg.Path,
		tracker:        cfg.Tracker,
		access:         cfg.Access,
		requestTimeout: cfg.RequestTimeout,
		logger:         cfg.Logger.With("channel", cfg.Path),
		conns:          make(chan *net.UnixConn),
		done:           make(chan struct{}),
	}, nil
}

// Path returns the socket path the server listens on.
func (s *Server) Path() string {
	return s.path
}

// Close stops accepting and removes the socket. Safe to call multiple times.
func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ln.Close()
	})
	return err
}

// Serve handles requests until the tracker expires, a client sends "stop"
// or ctx is canceled. The channel is closed when Serve returns.
func (s *Server) Serve(ctx context.Context) (Reason, error) {
	defer s.Close()
	go s.acceptLoop()

	for {
		conn, outcome := tracker.Wait[*net.UnixConn](ctx, s.tracker, s.conns)
		if outcome == tracker.Expired {
			switch {
			case s.tracker.IsDone():
				s.logger.Info("time budget exhausted")
				return ReasonExpired, nil
			case ctx.Err() != nil:
				s.logger.Info("serve canceled", "error", ctx.Err())
				return ReasonCanceled, nil
			default:
				return ReasonCanceled, errors.New("control channel closed unexpectedly")
			}
		}

		stop := s.handle(conn)
		// Always drop the client so the next one can be accepted.
		conn.Close()
		if stop {
			s.logger.Info("stop requested")
			return ReasonStopRequested, nil
		}
	}
}

func (s *Server) acceptLoop() {
	defer close(s.conns)
	for {
		conn, err := s.ln.AcceptUnix()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			select {
			case <-time.After(acceptRetryDelay):
				continue
			case <-s.done:
				return
			}
		}

		if err := s.access.Authorize(conn); err != nil {
			s.logger.Warn("rejected client", "error", err)
			s.reject(conn)
			continue
		}

		select {
		case s.conns <- conn:
		case <-s.done:
			conn.Close()
			return
		}
	}
}

// reject consumes the request so the peer sees the reply instead of a
// reset, then answers with the Inaccessible token.
func (s *Server) reject(conn *net.UnixConn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(s.requestTimeout))
	_, _ = ReadCommand(conn)
	_, _ = io.WriteString(conn, Inaccessible)
}

// handle serves one request and reports whether the worker should stop.
func (s *Server) handle(conn *net.UnixConn) bool {
	_ = conn.SetDeadline(time.Now().Add(s.requestTimeout))

	cmd, err := ReadCommand(conn)
	if err != nil {
		s.logger.Debug("dropping request", "command", string(cmd), "error", err)
		return false
	}

	switch cmd {
	case CommandInfo:
		reply := s.tracker.RemainingDisplay()
		if _, err := io.WriteString(conn, reply); err != nil {
			s.logger.Debug("info reply failed", "error", err)
		}
		return false
	case CommandStop:
		return true
	}
	return false
}
