package trec

import (
	"errors"
	"fmt"
)

// Sentinel errors for common report generation failure conditions.
var (
	ErrNoRecord  = errors.New("trec: inspection record has not been set")
	ErrBadConfig = errors.New("trec: invalid configuration")
	ErrOutput    = errors.New("trec: output could not be written")
)

// ReportError represents an error that occurred during a specific generation
// step. It wraps an underlying error and includes the step name for context.
type ReportError struct {
	Op  string // operation name, e.g. "Load", "Compose", "Output"
	Err error  // underlying error
}

func (e *ReportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trec.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("trec.%s: unknown error", e.Op)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// newReportError creates a new ReportError wrapping the given error with
// operation context.
func newReportError(op string, err error) *ReportError {
	return &ReportError{Op: op, Err: err}
}
