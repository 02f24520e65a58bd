package video

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
// These errors enable reliable error classification using errors.Is().

// Construction errors.
var (
	// ErrInvalidConfig indicates a configuration value outside its valid set.
	// It is always reported before any frame is requested.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnimplemented indicates a recognised but unsupported feature.
	ErrUnimplemented = errors.New("unimplemented")
)

// Frame errors.
var (
	// ErrFormatMismatch indicates operands disagree on plane count, bit depth
	// or byte width, or a clip produced a frame outside its declared format.
	ErrFormatMismatch = errors.New("format mismatch")

	// ErrDependencyUnavailable indicates an upstream frame could not be produced.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrExternalFilter indicates a collaborator filter reported failure.
	ErrExternalFilter = errors.New("external filter error")
)

// StageError tags a per-frame failure with the stage that produced it.
type StageError struct {
	Stage string
	Frame int
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: frame %d: %v", e.Stage, e.Frame, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage name and frame number.
// A nil err yields nil.
func NewStageError(stage string, frame int, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Frame: frame, Err: err}
}

// MismatchError builds a FormatMismatch error naming the offending value
// and the expected one.
func MismatchError(what string, got, want any) error {
	return fmt.Errorf("%w: %s is %v, expected %v", ErrFormatMismatch, what, got, want)
}
