package control

import (
	"errors"
	"fmt"
	"io"
)

// Command is a fixed-size request token sent by a client.
type Command string

const (
	// CommandInfo asks the worker for its remaining time.
	CommandInfo Command = "info"
	// CommandStop asks the worker to release the machine and exit.
	CommandStop Command = "stop"
)

const (
	// CommandSize is the exact length of every request on the wire.
	CommandSize = 4
	// MaxReplySize bounds the info reply a client reads.
	MaxReplySize = 256
)

// Inaccessible is the reply sent to a peer that is not allowed to talk to
// the worker. Clients render it as a placeholder.
const Inaccessible = "<inaccessible>"

var (
	// ErrUnreachable means no worker answered on the channel of that pid.
	ErrUnreachable = errors.New("worker unreachable")
	// ErrInaccessible means a worker exists but the caller may not talk to it.
	ErrInaccessible = errors.New("worker inaccessible")
	// ErrInvalidCommand is returned by ReadCommand for unknown tokens.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrUnsupported means this platform cannot host an owner-only control
	// channel.
	ErrUnsupported = fmt.Errorf("control channel: %w", errors.ErrUnsupported)
)

func (c Command) valid() bool {
	return c == CommandInfo || c == CommandStop
}

// ReadCommand reads exactly one request token from r. Short reads and
// unknown tokens are errors.
func ReadCommand(r io.Reader) (Command, error) {
	var buf [CommandSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", err
	}
	cmd := Command(buf[:])
	if !cmd.valid() {
		return cmd, ErrInvalidCommand
	}
	return cmd, nil
}

// readReply reads until the peer closes or MaxReplySize bytes arrive. Data
// received before a transport error is still returned.
func readReply(r io.Reader) ([]byte, error) {
	buf := make([]byte, 0, MaxReplySize)
	chunk := make([]byte, MaxReplySize)
	for len(buf) < MaxReplySize {
		n, err := r.Read(chunk[:MaxReplySize-len(buf)])
		buf = append(buf, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}
