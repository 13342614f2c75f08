// Package errors defines the error taxonomy shared by the singlecell
// packages.
//
// Typed errors carry the failing operation and enough context for a caller
// to decide between recovery and abort:
//
//   - ValueError: a parameter or input value is invalid
//   - DimensionError: a shape or length mismatch between related inputs
//   - ScoringError: a scoring operation failed, wrapping its cause
//
// Sentinel errors (ErrEmptyData) support errors.Is checks through any
// number of wrapping layers. Construction goes through
// github.com/cockroachdb/errors so every error carries a stack trace that
// %+v formatting reveals.
package errors

import (
	"fmt"

	crdberrors "github.com/cockroachdb/errors"
)

// Sentinel errors for errors.Is comparisons.
var (
	// ErrEmptyData indicates a matrix or table with no rows or columns.
	ErrEmptyData = crdberrors.New("empty data")
)

// ValueError indicates an invalid parameter or input value.
type ValueError struct {
	Op      string // operation that rejected the value
	Message string
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("singlecell: %s: %s", e.Op, e.Message)
}

// DimensionError indicates a shape mismatch between related inputs.
// Axis identifies the offending dimension (0 = rows, 1 = columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError for the given operation.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("singlecell: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// ScoringError wraps a failure inside a scoring operation with the
// operation name and a short description.
type ScoringError struct {
	Op      string
	Message string
	Err     error
}

// NewScoringError creates a ScoringError wrapping cause. cause may be nil.
func NewScoringError(op, message string, cause error) *ScoringError {
	return &ScoringError{Op: op, Message: message, Err: cause}
}

func (e *ScoringError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("singlecell: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("singlecell: %s: %s: %v", e.Op, e.Message, e.Err)
}

// Unwrap returns the wrapped cause for errors.Is / errors.As traversal.
func (e *ScoringError) Unwrap() error { return e.Err }

// Newf creates an error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return crdberrors.Newf(format, args...)
}

// Wrapf wraps err with a formatted message, preserving its chain.
func Wrapf(err error, format string, args ...interface{}) error {
	return crdberrors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return crdberrors.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool { return crdberrors.As(err, target) }

// Recover converts a panic inside an exported operation into an error
// assigned to *errp, so callers never see panics from library internals.
//
//	func (s *Scorer) Run() (err error) {
//		defer errors.Recover(&err, "Scorer.Run")
//		...
//	}
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		*errp = crdberrors.Newf("singlecell: %s: panic: %v", op, r)
	}
}
