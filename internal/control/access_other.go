//go:build !linux && !darwin

package control

// OwnerAccess returns the AccessControl used by workers on this platform.
// Without peer credentials the owner-only socket mode is the only check.
func OwnerAccess() AccessControl {
	return AllowAll{}
}
