package detection

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

const (
	edgeOn  = 255
	edgeOff = 0
)

// canny runs Canny edge detection on f and returns a binary edge map.
//
// The steps match OpenCV's cv::Canny with a 3x3 aperture and L1 gradient:
//
//  1. Optional Gaussian pre-blur (bild) when BlurSigma > 0. OpenCV's Canny
//     does not smooth, so this is off by default.
//
//  2. Sobel gradients with replicated borders:
//     Gx = [-1 0 1; -2 0 2; -1 0 1], Gy = its transpose,
//     magnitude = |Gx| + |Gy|
//
//  3. Non-maximum suppression along one of four directions, chosen with
//     tan(22.5) and tan(67.5) so no atan call is needed. Ties are broken
//     toward the pixel with the lower index, as OpenCV does, so a step edge
//     yields a one pixel wide line.
//
//  4. Hysteresis: pixels above High seed edges, pixels above Low survive
//     when 8-connected to a seed.
//
// Thresholds are swapped when Low > High.
func canny(f *frame.Frame, p CannyParams) *frame.Frame {
	width, height := f.Width, f.Height
	low, high := p.Low, p.High
	if low > high {
		low, high = high, low
	}

	src := f
	if p.BlurSigma > 0 {
		src = blurFrame(f, p.BlurSigma)
	}

	// Magnitude buffer with a one pixel zero border so suppression can look
	// at neighbors without bounds checks.
	mw := width + 2
	mag := make([]int, mw*(height+2))
	dxs := make([]int, width*height)
	dys := make([]int, width*height)

	for y := 0; y < height; y++ {
		ym := clamp(y-1, 0, height-1)
		yp := clamp(y+1, 0, height-1)
		for x := 0; x < width; x++ {
			xm := clamp(x-1, 0, width-1)
			xp := clamp(x+1, 0, width-1)

			tl, tc, tr := int(src.At(xm, ym)), int(src.At(x, ym)), int(src.At(xp, ym))
			ml, mr := int(src.At(xm, y)), int(src.At(xp, y))
			bl, bc, br := int(src.At(xm, yp)), int(src.At(x, yp)), int(src.At(xp, yp))

			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)

			dxs[y*width+x] = gx
			dys[y*width+x] = gy
			mag[(y+1)*mw+x+1] = abs(gx) + abs(gy)
		}
	}

	// Classify pixels: 0 = not an edge, 1 = weak candidate, 2 = strong.
	const (
		tg22  = 13573 // tan(22.5 deg) * 2^15
		shift = 15
	)
	class := make([]uint8, width*height)
	stack := make([]int, 0, width*height/8+1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m := mag[(y+1)*mw+x+1]
			if float64(m) <= low {
				continue
			}

			gx := dxs[y*width+x]
			gy := dys[y*width+x]
			ax := abs(gx)
			ay := abs(gy) << shift
			tg22x := ax * tg22

			c := (y+1)*mw + x + 1
			var keep bool
			switch {
			case ay < tg22x:
				// Mostly horizontal gradient: compare left and right.
				keep = m > mag[c-1] && m >= mag[c+1]
			case ay > tg22x+(ax<<(shift+1)):
				// Mostly vertical gradient: compare above and below.
				keep = m > mag[c-mw] && m >= mag[c+mw]
			default:
				s := 1
				if (gx ^ gy) < 0 {
					s = -1
				}
				keep = m > mag[c-mw-s] && m > mag[c+mw+s]
			}
			if !keep {
				continue
			}

			if float64(m) > high {
				class[y*width+x] = 2
				stack = append(stack, y*width+x)
			} else {
				class[y*width+x] = 1
			}
		}
	}

	// Grow strong edges into connected weak candidates.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if class[n] == 1 {
					class[n] = 2
					stack = append(stack, n)
				}
			}
		}
	}

	out := make([]byte, width*height)
	for i, c := range class {
		if c == 2 {
			out[i] = edgeOn
		} else {
			out[i] = edgeOff
		}
	}

	return &frame.Frame{Width: width, Height: height, Stride: width, Pix: out}
}

// blurFrame smooths f with a Gaussian of standard deviation sigma, sized
// the way cv::GaussianBlur sizes an 8-bit kernel for ksize (0, 0). Borders
// replicate the edge pixel.
//
// bild's blur.Gaussian takes a radius with its own falloff, so the kernel is
// built here and run through bild's convolution directly.
func blurFrame(f *frame.Frame, sigma float64) *frame.Frame {
	k := gaussianKernel(sigma)
	opts := &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true}
	blurred := convolution.Convolve(f.Gray(), k, opts)
	blurred = convolution.Convolve(blurred, k.Transposed(), opts)
	return frame.FromImage(blurred)
}

// gaussianKernel returns a normalized 1-d horizontal Gaussian kernel of odd
// length round(6*sigma + 1) | 1.
func gaussianKernel(sigma float64) convolution.Matrix {
	n := int(math.Round(sigma*6+1)) | 1
	half := n / 2
	k := convolution.NewKernel(n, 1)
	for i := range k.Matrix {
		x := float64(i - half)
		k.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	return k.Normalized()
}

// clamp constrains an integer value to the range [min, max].
// Used for replicated-border handling in convolution.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// edgePoints lists the coordinates of non-zero pixels in row-major order.
func edgePoints(edges *frame.Frame) []image.Point {
	pts := make([]image.Point, 0)
	for y := 0; y < edges.Height; y++ {
		for x := 0; x < edges.Width; x++ {
			if edges.At(x, y) != 0 {
				pts = append(pts, image.Point{X: x, Y: y})
			}
		}
	}
	return pts
}
