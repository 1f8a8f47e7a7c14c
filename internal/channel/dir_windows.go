//go:build windows

package channel

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// DefaultDir is the socket directory used when ProgramData cannot be
// resolved.
const DefaultDir = `C:\ProgramData\keep-awake`

func defaultDir() string {
	base, err := windows.KnownFolderPath(windows.FOLDERID_ProgramData, 0)
	if err != nil || base == "" {
		return DefaultDir
	}
	return filepath.Join(base, "keep-awake")
}
