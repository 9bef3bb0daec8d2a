package hanzi

import (
	"errors"
	"fmt"
)

// Sentinel errors used across the pipeline.
var (
	ErrInvalidFrame         = errors.New("invalid frame")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrRecognitionFailed    = errors.New("recognition failed")
	ErrMalformedResponse    = errors.New("malformed response")
	ErrEmptyResult          = errors.New("empty result")
	ErrStorageCorrupt       = errors.New("storage corrupt")
	ErrBusy                 = errors.New("capture already in progress")
	ErrStale                = errors.New("stale response discarded")
)

// RecognitionError carries a human readable cause for a failed recognition.
// It matches ErrRecognitionFailed and the wrapped error with errors.Is.
type RecognitionError struct {
	Cause string
	Err   error
}

func (e *RecognitionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("recognition failed: %s", e.Cause)
	}
	return fmt.Sprintf("recognition failed: %s: %v", e.Cause, e.Err)
}

func (e *RecognitionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRecognitionFailed}
	}
	return []error{ErrRecognitionFailed, e.Err}
}

// NewRecognitionError wraps err as a recognition failure.
func NewRecognitionError(cause string, err error) *RecognitionError {
	return &RecognitionError{Cause: cause, Err: err}
}

// InvalidConfigf builds an ErrInvalidConfiguration error for a named setting.
func InvalidConfigf(setting string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, setting, fmt.Sprintf(format, args...))
}
