//go:build unix

package worker

import (
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/scienceol/keep-awake/internal/ui"
)

// DetachStdio points stdout and stderr at the null device. This drops the
// last reference to the launcher's pipe, which lets the launcher exit.
func DetachStdio() error {
	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer null.Close()

	ui.SetOutput(io.Discard)
	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stderr.Fd())} {
		if err := unix.Dup2(int(null.Fd()), fd); err != nil {
			return err
		}
	}
	return nil
}
