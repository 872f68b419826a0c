package ir

import "fmt"

// Fatalf reports a programmer-error precondition violation -- a
// malformed graph invalidates every later pass, so these never return.
func Fatalf(format string, args ...any) {
	panic(fmt.Sprintf("ir: "+format, args...))
}
