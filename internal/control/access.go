package control

import (
	"errors"
	"net"
)

// ErrAccessDenied is returned by an AccessControl that rejects a peer.
var ErrAccessDenied = errors.New("access denied")

// AccessControl decides whether a connected peer may issue commands. The
// socket file itself is created owner-only; implementations add whatever
// the platform offers on top of that.
type AccessControl interface {
	Authorize(conn *net.UnixConn) error
}

// AllowAll admits every peer that could open the socket file.
type AllowAll struct{}

func (AllowAll) Authorize(*net.UnixConn) error { return nil }
