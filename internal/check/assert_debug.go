//go:build debug

package check

import "fmt"

// Assertf panics with a formatted message when cond is false. Active
// only in debug builds.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("assertion failed: " + fmt.Sprintf(format, args...))
	}
}
