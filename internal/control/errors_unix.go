//go:build unix

package control

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isBusy(err error) bool {
	return errors.Is(err, unix.EAGAIN)
}

func isDenied(err error) bool {
	return errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM)
}

func isReset(err error) bool {
	return errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.EPIPE)
}
