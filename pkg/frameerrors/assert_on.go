//go:build ci

package frameerrors

import "fmt"

// DebugAssertionsEnabled reports whether DebugAssertf checks its conditions.
const DebugAssertionsEnabled = true

// DebugAssertf panics if the condition is false in CI builds.
func DebugAssertf(condition func() bool, format string, args ...any) {
	if !condition() {
		panic(fmt.Sprintf(format, args...))
	}
}
