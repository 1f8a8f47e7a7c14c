//go:build unix

package discovery

import "golang.org/x/sys/unix"

func sessionID(pid int) int {
	sid, err := unix.Getsid(pid)
	if err != nil {
		return -1
	}
	return sid
}
