//go:build !darwin && !linux && !windows

package power

type noopInhibitor struct{}

func newInhibitor() Inhibitor {
	return noopInhibitor{}
}

func (noopInhibitor) Acquire(string) error { return ErrUnavailable }
func (noopInhibitor) Release()             {}
func (noopInhibitor) Held() bool           { return false }
