package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// CropFrame returns the part of f inside rect as a view sharing f's memory.
//
// Camera pipelines report a crop rectangle alongside each buffer; analyzing
// only that region keeps detected lines in the coordinates the user sees.
// Coordinates in the result are relative to rect.Min.
func CropFrame(f *frame.Frame, rect image.Rectangle) (*frame.Frame, error) {
	bounds := f.Bounds()
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside frame bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	offset := rect.Min.Y*f.Stride + rect.Min.X
	return frame.NewWithStride(f.Pix[offset:], rect.Dx(), rect.Dy(), f.Stride)
}
