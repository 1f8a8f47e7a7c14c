//go:build !windows

package channel

// DefaultDir is the socket directory used when no override is configured.
const DefaultDir = "/tmp"

func defaultDir() string {
	return DefaultDir
}
