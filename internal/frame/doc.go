// Package frame wraps borrowed single-channel 8-bit pixel buffers.
//
// A Frame is a view over caller-owned memory: constructing one never copies
// the pixel data. Frames are produced by camera pipelines (one luminance
// plane per captured image) and consumed by the detection backends.
//
// # Buffer Geometry
//
// Pixels are stored row-major, top row first. Each row occupies Stride bytes,
// of which the first Width bytes are pixels. A buffer must hold at least
// (Height-1)*Stride + Width bytes; trailing bytes beyond that are ignored,
// since camera planes commonly carry padding after the last row.
//
// # Error Handling
//
// Invalid geometry is reported through the sentinel errors ErrNilBuffer,
// ErrInvalidDimensions and ErrBufferTooSmall. Use errors.Is to test for them.
package frame
