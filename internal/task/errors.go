package task

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or structurally inconsistent input.
// It is always fatal to the run and raised before any scheduling work.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// CycleError reports a dependency cycle. Path starts and ends at the same
// task id, e.g. [a b c a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Path, " -> ")
}
