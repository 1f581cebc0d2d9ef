package detection

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend selection.
var (
	// ErrUnknownBackend is returned when no backend has the requested name.
	ErrUnknownBackend = errors.New("detection: unknown backend")

	// ErrBackendUnavailable is returned when a known backend was not compiled
	// into this binary.
	ErrBackendUnavailable = errors.New("detection: backend not compiled in")

	// ErrInvalidParams is returned for Hough parameters that cannot drive a
	// transform.
	ErrInvalidParams = errors.New("detection: invalid hough parameters")

	// ErrAccumulatorTooLarge is returned when the Hough accumulator for a
	// frame would exceed MaxAccumulatorCells.
	ErrAccumulatorTooLarge = errors.New("detection: hough accumulator too large")
)

// BackendError wraps a failure inside a backend operation.
type BackendError struct {
	// Backend is the name of the backend that failed.
	Backend string

	// Op is the operation that failed, e.g. "canny" or "hough".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("detection [%s] %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// wrapError attaches backend context to err. A nil err stays nil.
func wrapError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Backend: backend, Op: op, Err: err}
}
