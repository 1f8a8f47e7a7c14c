//go:build unix

package supervisor

import "syscall"

// detachedAttr puts the worker in its own session, away from the
// terminal's job control and hangup.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
