package frame

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Frame is a grayscale image backed by a borrowed byte buffer.
type Frame struct {
	// Width is the number of pixels per row.
	Width int

	// Height is the number of rows.
	Height int

	// Stride is the distance in bytes between the starts of two rows.
	Stride int

	// Pix holds the pixel data. It is not owned by the Frame.
	Pix []byte
}

// New wraps a tightly packed buffer of width*height bytes.
func New(data []byte, width, height int) (*Frame, error) {
	return NewWithStride(data, width, height, width)
}

// NewWithStride wraps a buffer whose rows are stride bytes apart.
//
// The buffer is validated but not copied. Bytes past the last pixel of the
// last row are ignored.
func NewWithStride(data []byte, width, height, stride int) (*Frame, error) {
	if len(data) == 0 {
		return nil, ErrNilBuffer
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if stride < width {
		return nil, fmt.Errorf("%w: stride %d < width %d", ErrInvalidDimensions, stride, width)
	}

	need := (height-1)*stride + width
	if len(data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d for %dx%d (stride %d)",
			ErrBufferTooSmall, len(data), need, width, height, stride)
	}

	return &Frame{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    data[:need],
	}, nil
}

// FromImage converts any image to a tightly packed grayscale frame.
//
// The conversion goes through imaging.Grayscale, so the luminance weights
// are the ones that library uses. The returned frame owns a fresh buffer.
func FromImage(img image.Image) *Frame {
	gray := imaging.Grayscale(img)
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()

	// Grayscale returns NRGBA with R == G == B; keep one channel.
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			pix[y*w+x] = row[x*4]
		}
	}

	return &Frame{Width: w, Height: h, Stride: w, Pix: pix}
}

// At returns the intensity at (x, y). Coordinates are not bounds checked
// beyond what slice indexing does.
func (f *Frame) At(x, y int) uint8 {
	return f.Pix[y*f.Stride+x]
}

// Len reports the number of pixels in the frame.
func (f *Frame) Len() int {
	return f.Width * f.Height
}

// Gray returns an *image.Gray that shares memory with the frame.
func (f *Frame) Gray() *image.Gray {
	return &image.Gray{
		Pix:    f.Pix,
		Stride: f.Stride,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Compact returns the pixels as a tightly packed width*height slice.
//
// When the frame is already tightly packed the underlying buffer is returned
// without copying, so callers must not modify it.
func (f *Frame) Compact() []byte {
	if f.Stride == f.Width {
		return f.Pix[:f.Width*f.Height]
	}
	out := make([]byte, f.Width*f.Height)
	for y := 0; y < f.Height; y++ {
		copy(out[y*f.Width:(y+1)*f.Width], f.Pix[y*f.Stride:y*f.Stride+f.Width])
	}
	return out
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}
