//go:build windows

package control

import (
	"errors"
	"io/fs"
	"syscall"
)

func isBusy(err error) bool {
	return errors.Is(err, syscall.EAGAIN)
}

func isDenied(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

func isReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET)
}
