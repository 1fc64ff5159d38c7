// Package exit carries a terminal outcome from argument parsing or runner
// construction back to main: the message to print, where to print it, and
// the process exit code.
package exit

import (
	"fmt"
	"io"
	"os"
)

// Result is a pending process termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message to its destination. Safe on a Result built by
// hand without an output writer.
func (r *Result) Print() {
	if r.Output == nil {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

func newResult(code int, output io.Writer, message string) *Result {
	return &Result{
		Output:   output,
		ExitCode: code,
		Message:  message,
	}
}

// Success reports a message on stdout and exit code 0.
func Success(message string) *Result {
	return newResult(0, os.Stdout, message)
}

// Error reports a message on stderr and exit code 1.
func Error(message string) *Result {
	return newResult(1, os.Stderr, message)
}

// Errorf is Error with formatting.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}
