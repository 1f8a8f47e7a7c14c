package control

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/scienceol/keep-awake/internal/channel"
)

const defaultReplyTimeout = 5 * time.Second

// ClientConfig configures NewClient.
type ClientConfig struct {
	// Dir holds the channel sockets, empty for the system default.
	Dir string
	// ReplyTimeout bounds the write and the reply of one round trip.
	ReplyTimeout time.Duration
	// BusyTimeout bounds retries against a busy channel. Zero retries until
	// the context is done.
	BusyTimeout time.Duration
	Logger      *slog.Logger
}

// Client talks to workers over their control channels.
type Client struct {
	dir          string
	replyTimeout time.Duration
	busyTimeout  time.Duration
	logger       *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = defaultReplyTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		dir:          cfg.Dir,
		replyTimeout: cfg.ReplyTimeout,
		busyTimeout:  cfg.BusyTimeout,
		logger:       cfg.Logger,
	}
}

// Query asks the worker with the given pid for its remaining time. The
// reply is a formatted duration or "Infinite".
func (c *Client) Query(ctx context.Context, pid int) (string, error) {
	reply, err := c.roundTrip(ctx, pid, CommandInfo)
	if err != nil {
		return "", err
	}
	switch {
	case len(reply) == 0:
		return "", fmt.Errorf("%w: pid %d sent no reply", ErrUnreachable, pid)
	case string(reply) == Inaccessible:
		return "", fmt.Errorf("%w: pid %d", ErrInaccessible, pid)
	}
	return string(reply), nil
}

// Stop asks the worker with the given pid to exit.
func (c *Client) Stop(ctx context.Context, pid int) error {
	reply, err := c.roundTrip(ctx, pid, CommandStop)
	if err != nil {
		return err
	}
	if string(reply) == Inaccessible {
		return fmt.Errorf("%w: pid %d", ErrInaccessible, pid)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, pid int, cmd Command) ([]byte, error) {
	conn, err := c.dial(ctx, pid)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.replyTimeout))

	n, err := io.WriteString(conn, string(cmd))
	if err != nil || n != CommandSize {
		return nil, fmt.Errorf("%w: pid %d: send %s: %v", ErrUnreachable, pid, cmd, err)
	}

	reply, err := readReply(conn)
	if err != nil && len(reply) == 0 {
		c.logger.Debug("no reply", "pid", pid, "command", string(cmd), "error", err)
		if cmd == CommandInfo {
			if isDenied(err) {
				return nil, fmt.Errorf("%w: pid %d", ErrInaccessible, pid)
			}
			return nil, fmt.Errorf("%w: pid %d: %v", ErrUnreachable, pid, err)
		}
		if !isReset(err) {
			c.logger.Debug("stop sent, reply unreadable", "pid", pid, "error", err)
		}
	}
	return reply, nil
}

// dial opens the channel of pid, waiting while it is busy serving another
// client. Any other failure is returned without retrying.
func (c *Client) dial(ctx context.Context, pid int) (net.Conn, error) {
	if err := supported(); err != nil {
		return nil, err
	}
	if c.busyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.busyTimeout)
		defer cancel()
	}

	path := channel.Path(c.dir, pid)
	var (
		d       net.Dialer
		backoff Backoff
	)
	for {
		conn, err := d.DialContext(ctx, "unix", path)
		switch {
		case err == nil:
			return conn, nil
		case isBusy(err):
			c.logger.Debug("channel busy", "pid", pid, "attempt", backoff.Attempts())
			if !backoff.Wait(ctx.Done()) {
				return nil, fmt.Errorf("%w: pid %d: channel busy: %v", ErrUnreachable, pid, ctx.Err())
			}
		case isDenied(err):
			return nil, fmt.Errorf("%w: pid %d", ErrInaccessible, pid)
		default:
			return nil, fmt.Errorf("%w: pid %d: %v", ErrUnreachable, pid, err)
		}
	}
}
