//go:build darwin

package control

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// xucredAccess admits the owning user and root, checked with
// LOCAL_PEERCRED. Darwin does not enforce socket file modes on connect.
type xucredAccess struct {
	owner uint32
}

// OwnerAccess returns the AccessControl used by workers on this platform.
func OwnerAccess() AccessControl {
	return &xucredAccess{owner: uint32(os.Getuid())}
}

func (a *xucredAccess) Authorize(conn *net.UnixConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var (
		cred *unix.Xucred
		cErr error
	)
	if err := raw.Control(func(fd uintptr) {
		cred, cErr = unix.GetsockoptXucred(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
	}); err != nil {
		return err
	}
	if cErr != nil {
		return fmt.Errorf("LOCAL_PEERCRED: %w", cErr)
	}
	if cred.Uid != a.owner && cred.Uid != 0 {
		return fmt.Errorf("%w: peer uid %d", ErrAccessDenied, cred.Uid)
	}
	return nil
}
