//go:build !ci

package frameerrors

// DebugAssertionsEnabled reports whether DebugAssertf checks its conditions.
const DebugAssertionsEnabled = false

// DebugAssertf is a no-op in non-CI builds.
func DebugAssertf(condition func() bool, format string, args ...any) {}
