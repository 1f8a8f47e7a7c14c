//go:build windows

package discovery

import "golang.org/x/sys/windows"

func sessionID(pid int) int {
	var sid uint32
	if err := windows.ProcessIdToSessionId(uint32(pid), &sid); err != nil {
		return -1
	}
	return int(sid)
}
