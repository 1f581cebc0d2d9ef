package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/frame-bridge/internal/detection"
	"github.com/ironsheep/frame-bridge/internal/frame"
)

// Style controls how Render draws.
type Style struct {
	// LineColor, TintColor, FrameCenterColor and ViewCenterColor are hex
	// colors such as "#FF0000".
	LineColor        string `json:"line_color"`
	TintColor        string `json:"tint_color"`
	FrameCenterColor string `json:"frame_center_color"`
	ViewCenterColor  string `json:"view_center_color"`

	// TintOpacity is how strongly the tint covers the preview, 0 to 1.
	TintOpacity float64 `json:"tint_opacity"`

	// LineWidth is the stroke width in view pixels.
	LineWidth int `json:"line_width"`

	// MarkCenters draws a dot at the frame center and a square at the view
	// center.
	MarkCenters bool `json:"mark_centers"`
}

// DefaultStyle draws red 4 px lines over a faint dark blue tint with cyan
// and yellow center markers.
func DefaultStyle() Style {
	return Style{
		LineColor:        "#FF0000",
		TintColor:        "#000064",
		FrameCenterColor: "#00FFFF",
		ViewCenterColor:  "#FFFF00",
		TintOpacity:      50.0 / 255.0,
		LineWidth:        4,
		MarkCenters:      true,
	}
}

const (
	frameCenterRadius   = 18
	viewCenterHalfWidth = 10
)

// Render draws lines over the preview of f described by t.
//
// The frame is rotated, scaled and shifted into a ViewWidth x ViewHeight
// canvas, covered with the tint, and the projected lines and center markers
// are drawn on top.
func Render(f *frame.Frame, lines []detection.Line, t Transform, style Style) (*image.NRGBA, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	lineColor, err := parseColor(style.LineColor)
	if err != nil {
		return nil, err
	}
	tintColor, err := parseColor(style.TintColor)
	if err != nil {
		return nil, err
	}

	s := t.Scale()
	viewW := int(math.Round(t.ViewWidth))
	viewH := int(math.Round(t.ViewHeight))
	if viewW < 1 || viewH < 1 {
		return nil, fmt.Errorf("%w: view rounds to %dx%d", ErrInvalidTransform, viewW, viewH)
	}

	var base image.Image = f.Gray()
	if t.Rotated {
		base = imaging.Rotate270(base)
	}
	sw := math.Round(float64(base.Bounds().Dx()) * s)
	sh := math.Round(float64(base.Bounds().Dy()) * s)
	if sw > MaxViewSide || sh > MaxViewSide {
		return nil, fmt.Errorf("%w: scaled frame %gx%g exceeds %d px per side", ErrInvalidTransform, sw, sh, MaxViewSide)
	}
	bw, bh := int(sw), int(sh)
	if bw < 1 || bh < 1 {
		return nil, fmt.Errorf("%w: scaled frame is empty (scale %g)", ErrInvalidTransform, s)
	}
	if bw != base.Bounds().Dx() || bh != base.Bounds().Dy() {
		base = imaging.Resize(base, bw, bh, imaging.Linear)
	}

	canvas := imaging.New(viewW, viewH, color.Black)
	origin := image.Pt(int(math.Round(-t.CropLeft*s)), int(math.Round(-t.CropTop*s)))
	canvas = imaging.Paste(canvas, base, origin)

	if style.TintOpacity > 0 {
		tint := imaging.New(viewW, viewH, tintColor)
		canvas = imaging.Overlay(canvas, tint, image.Pt(0, 0), style.TintOpacity)
	}

	width := style.LineWidth
	if width < 1 {
		width = 1
	}
	clipRect := canvas.Bounds().Inset(-width)
	for _, seg := range t.ProjectLines(lines) {
		if seg, ok := clipSegment(seg, clipRect); ok {
			drawLine(canvas, seg, width, lineColor)
		}
	}

	if style.MarkCenters {
		fc, err := parseColor(style.FrameCenterColor)
		if err != nil {
			return nil, err
		}
		vc, err := parseColor(style.ViewCenterColor)
		if err != nil {
			return nil, err
		}
		fillCircle(canvas, t.FrameCenter(), frameCenterRadius, fc)
		fillSquare(canvas, t.ViewCenter(), viewCenterHalfWidth, vc)
	}

	return canvas, nil
}

// parseColor parses a hex color such as "#FF0000".
func parseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("overlay: invalid color %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// clipSegment trims seg to r with the Liang-Barsky algorithm so that
// drawing cost depends on the canvas, not on the segment length. ok is
// false when seg misses r.
func clipSegment(seg Segment, r image.Rectangle) (Segment, bool) {
	x0, y0 := seg.From.X, seg.From.Y
	dx, dy := seg.To.X-x0, seg.To.Y-y0
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X-1), float64(r.Max.Y-1)

	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return Segment{}, false
			}
			continue
		}
		u := q / p
		if p < 0 {
			if u > t1 {
				return Segment{}, false
			}
			if u > t0 {
				t0 = u
			}
		} else {
			if u < t0 {
				return Segment{}, false
			}
			if u < t1 {
				t1 = u
			}
		}
	}

	return Segment{
		From: Point{X: x0 + t0*dx, Y: y0 + t0*dy},
		To:   Point{X: x0 + t1*dx, Y: y0 + t1*dy},
	}, true
}

// drawLine draws seg with Bresenham's algorithm, stamping a width x width
// square at each step. Pixels outside img are skipped.
func drawLine(img *image.NRGBA, seg Segment, width int, c color.NRGBA) {
	x0, y0 := int(math.Round(seg.From.X)), int(math.Round(seg.From.Y))
	x1, y1 := int(math.Round(seg.To.X)), int(math.Round(seg.To.Y))

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	half := (width - 1) / 2

	for {
		stamp(img, x0-half, y0-half, width, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func stamp(img *image.NRGBA, left, top, size int, c color.NRGBA) {
	b := img.Bounds()
	for y := top; y < top+size; y++ {
		for x := left; x < left+size; x++ {
			if (image.Point{X: x, Y: y}).In(b) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func fillCircle(img *image.NRGBA, center Point, radius int, c color.NRGBA) {
	cx, cy := int(math.Round(center.X)), int(math.Round(center.Y))
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				stamp(img, cx+dx, cy+dy, 1, c)
			}
		}
	}
}

func fillSquare(img *image.NRGBA, center Point, half int, c color.NRGBA) {
	cx, cy := int(math.Round(center.X)), int(math.Round(center.Y))
	stamp(img, cx-half, cy-half, 2*half+1, c)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
