// Package channel derives the control channel address of a worker from its
// process id. Any process that knows the pid can find the channel without a
// registry.
package channel

import (
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// Namespace scopes channel names to this application.
var Namespace = uuid.MustParse("6f1d4c2e-8a8b-4f5e-9d43-2c1b7e0a9f31")

// NameFor returns the channel name of the worker with the given pid.
func NameFor(pid int) string {
	return Namespace.String() + "-" + strconv.Itoa(pid)
}

// Dir resolves the directory that holds the channel sockets. An empty
// override selects the machine-wide default, which does not depend on the
// caller's environment: a worker and a client started with different
// TMPDIR values still meet in the same place.
func Dir(override string) string {
	if override != "" {
		return override
	}
	return defaultDir()
}

// Path returns the socket path for pid inside dir.
func Path(dir string, pid int) string {
	return filepath.Join(Dir(dir), NameFor(pid)+".sock")
}
