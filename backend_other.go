//go:build !windows && !linux

package nativetrace

// Platforms without a native trace transport get the always-disabled
// backend; the emitter API works everywhere.
func newBackend(*config) (backend, error) {
	return noopBackend{}, nil
}
