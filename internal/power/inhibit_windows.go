//go:build windows

package power

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/windows"
)

const (
	esSystemRequired = 0x00000001
	esContinuous     = 0x80000000
)

var procSetThreadExecutionState = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadExecutionState")

// windowsInhibitor keeps one locked OS thread alive with ES_SYSTEM_REQUIRED
// set; the execution state belongs to that thread.
type windowsInhibitor struct {
	mu      sync.Mutex
	release chan struct{}
	done    chan struct{}
}

func newInhibitor() Inhibitor {
	return &windowsInhibitor{}
}

func (w *windowsInhibitor) Acquire(string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.release != nil {
		return nil
	}
	if err := procSetThreadExecutionState.Find(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	release := make(chan struct{})
	done := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer close(done)
		// The thread exits locked, which drops its execution state too.
		prev, _, callErr := procSetThreadExecutionState.Call(esContinuous | esSystemRequired)
		if prev == 0 {
			errCh <- fmt.Errorf("SetThreadExecutionState: %v", callErr)
			return
		}
		errCh <- nil
		<-release
		procSetThreadExecutionState.Call(esContinuous)
	}()
	if err := <-errCh; err != nil {
		return err
	}

	w.release, w.done = release, done
	return nil
}

func (w *windowsInhibitor) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.release == nil {
		return
	}
	close(w.release)
	<-w.done
	w.release, w.done = nil, nil
}

func (w *windowsInhibitor) Held() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.release != nil
}
