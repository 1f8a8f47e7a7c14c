//go:build windows

package worker

import (
	"io"
	"os"

	"golang.org/x/sys/windows"

	"github.com/scienceol/keep-awake/internal/ui"
)

// DetachStdio swaps the standard handles for the null device and closes
// the inherited pipe handles so the launcher sees end of stream.
func DetachStdio() error {
	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}

	ui.SetOutput(io.Discard)
	h := windows.Handle(null.Fd())
	if err := windows.SetStdHandle(windows.STD_OUTPUT_HANDLE, h); err != nil {
		return err
	}
	if err := windows.SetStdHandle(windows.STD_ERROR_HANDLE, h); err != nil {
		return err
	}

	oldOut, oldErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = null, null
	oldOut.Close()
	oldErr.Close()
	return nil
}
