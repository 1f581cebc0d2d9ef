package frame

import "errors"

// Sentinel errors for invalid frame input.
var (
	// ErrNilBuffer is returned when the pixel buffer is nil or empty.
	ErrNilBuffer = errors.New("frame: nil or empty pixel buffer")

	// ErrInvalidDimensions is returned for non-positive width or height,
	// or a stride narrower than the width.
	ErrInvalidDimensions = errors.New("frame: invalid dimensions")

	// ErrBufferTooSmall is returned when the buffer is shorter than the
	// declared geometry requires.
	ErrBufferTooSmall = errors.New("frame: buffer smaller than width*height")
)
