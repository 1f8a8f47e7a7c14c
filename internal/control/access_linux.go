//go:build linux

package control

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// peerCredAccess admits the owning user and root, checked with SO_PEERCRED.
type peerCredAccess struct {
	owner uint32
}

// OwnerAccess returns the AccessControl used by workers on this platform.
func OwnerAccess() AccessControl {
	return &peerCredAccess{owner: uint32(os.Getuid())}
}

func (a *peerCredAccess) Authorize(conn *net.UnixConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var (
		cred *unix.Ucred
		cErr error
	)
	if err := raw.Control(func(fd uintptr) {
		cred, cErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return err
	}
	if cErr != nil {
		return fmt.Errorf("SO_PEERCRED: %w", cErr)
	}
	if cred.Uid != a.owner && cred.Uid != 0 {
		return fmt.Errorf("%w: peer uid %d (pid %d)", ErrAccessDenied, cred.Uid, cred.Pid)
	}
	return nil
}
