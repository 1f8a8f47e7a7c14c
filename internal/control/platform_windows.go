//go:build windows

package control

// Socket files on windows ignore the owner-only mode and there is no peer
// credential lookup for AF_UNIX, so any local user could stop a worker.
func supported() error { return ErrUnsupported }
