// Package overlay maps detected lines from frame coordinates onto a preview
// view and renders them.
//
// A camera host analyzes the sensor buffer, but the user looks at a preview
// that shows only a crop of that buffer, scaled to the view and usually
// rotated by 90 degrees. Transform captures that relationship.
//
// # Coordinate Mapping
//
// With s = Scale(), xOff = -CropLeft*s and yOff = -CropTop*s, a frame point
// (x, y) lands on the view at:
//
//	unrotated: (x*s + xOff, y*s + yOff)
//	rotated:   ((FrameHeight - y)*s + xOff, x*s + yOff)
//
// The rotated case turns the frame a quarter clockwise, which is how a
// landscape sensor appears in a portrait preview.
package overlay

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/frame-bridge/internal/detection"
)

// SegmentHalfLength is how far a rendered line extends from its foot point
// on either side, in frame pixels.
const SegmentHalfLength = 1000

// MaxViewSide bounds the rendered view and the scaled frame, in pixels per
// side.
const MaxViewSide = 16384

// ErrInvalidTransform is returned when a transform has non-positive or
// oversized dimensions.
var ErrInvalidTransform = errors.New("overlay: invalid transform")

// Point is a position in frame or view pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a finite piece of a detected line.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Transform describes how the analyzed frame relates to the preview view.
type Transform struct {
	// CropLeft, CropTop, CropWidth and CropHeight are the visible region of
	// the frame, in frame pixels.
	CropLeft   float64 `json:"crop_left"`
	CropTop    float64 `json:"crop_top"`
	CropWidth  float64 `json:"crop_width"`
	CropHeight float64 `json:"crop_height"`

	// ViewWidth and ViewHeight are the preview size in view pixels.
	ViewWidth  float64 `json:"view_width"`
	ViewHeight float64 `json:"view_height"`

	// FrameWidth and FrameHeight are the analyzed buffer size.
	FrameWidth  float64 `json:"frame_width"`
	FrameHeight float64 `json:"frame_height"`

	// Rotated is set when the preview shows the frame turned a quarter
	// clockwise.
	Rotated bool `json:"rotated"`
}

// Identity returns the transform that shows a whole width x height frame
// unscaled and unrotated.
func Identity(width, height int) Transform {
	w, h := float64(width), float64(height)
	return Transform{
		CropWidth:   w,
		CropHeight:  h,
		ViewWidth:   w,
		ViewHeight:  h,
		FrameWidth:  w,
		FrameHeight: h,
	}
}

// Validate reports whether all sizes are finite and positive, the crop
// origin is finite, and the view fits within MaxViewSide.
func (t Transform) Validate() error {
	for _, v := range []float64{t.CropWidth, t.CropHeight, t.ViewWidth, t.ViewHeight, t.FrameWidth, t.FrameHeight} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: crop, view and frame sizes must be positive", ErrInvalidTransform)
		}
	}
	if math.IsNaN(t.CropLeft) || math.IsInf(t.CropLeft, 0) || math.IsNaN(t.CropTop) || math.IsInf(t.CropTop, 0) {
		return fmt.Errorf("%w: crop origin must be finite", ErrInvalidTransform)
	}
	if t.ViewWidth > MaxViewSide || t.ViewHeight > MaxViewSide {
		return fmt.Errorf("%w: view %gx%g exceeds %d px per side", ErrInvalidTransform, t.ViewWidth, t.ViewHeight, MaxViewSide)
	}
	return nil
}

// Scale returns the factor that fits the crop inside the view while keeping
// its aspect ratio. Crop axes are swapped when the preview is rotated.
// Scale is 0 for a transform with an empty crop.
func (t Transform) Scale() float64 {
	cw, ch := t.CropWidth, t.CropHeight
	if t.Rotated {
		cw, ch = ch, cw
	}
	if cw <= 0 || ch <= 0 {
		return 0
	}
	return math.Min(t.ViewWidth/cw, t.ViewHeight/ch)
}

// Project maps a frame point to view coordinates.
func (t Transform) Project(p Point) Point {
	s := t.Scale()
	xOff := -t.CropLeft * s
	yOff := -t.CropTop * s

	if t.Rotated {
		return Point{
			X: (t.FrameHeight-p.Y)*s + xOff,
			Y: p.X*s + yOff,
		}
	}
	return Point{
		X: p.X*s + xOff,
		Y: p.Y*s + yOff,
	}
}

// ProjectSegment maps both ends of seg to view coordinates.
func (t Transform) ProjectSegment(seg Segment) Segment {
	return Segment{From: t.Project(seg.From), To: t.Project(seg.To)}
}

// FrameCenter returns where the center of the frame lands on the view.
func (t Transform) FrameCenter() Point {
	return t.Project(Point{X: t.FrameWidth / 2, Y: t.FrameHeight / 2})
}

// ViewCenter returns the center of the view.
func (t Transform) ViewCenter() Point {
	return Point{X: t.ViewWidth / 2, Y: t.ViewHeight / 2}
}

// SegmentFor expands a line in Hesse normal form into a segment centered on
// the foot of the perpendicular from the origin, (rho*cos, rho*sin).
func SegmentFor(l detection.Line) Segment {
	a := math.Cos(float64(l.Theta))
	b := math.Sin(float64(l.Theta))
	x0 := a * float64(l.Rho)
	y0 := b * float64(l.Rho)

	return Segment{
		From: Point{X: x0 - SegmentHalfLength*b, Y: y0 + SegmentHalfLength*a},
		To:   Point{X: x0 + SegmentHalfLength*b, Y: y0 - SegmentHalfLength*a},
	}
}

// ProjectLines expands and projects every line.
func (t Transform) ProjectLines(lines []detection.Line) []Segment {
	out := make([]Segment, 0, len(lines))
	for _, l := range lines {
		out = append(out, t.ProjectSegment(SegmentFor(l)))
	}
	return out
}
