package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// houghLines finds lines in a binary edge map using the standard Hough
// transform, following the layout of OpenCV's HoughLinesStandard.
//
// # Accumulator
//
// The accumulator has numangle rows and numrho columns plus a one cell
// border on every side, so the peak test never leaves the array:
//
//	numangle = floor(pi / thetaRes) + 1, minus one when the last angle
//	           would duplicate theta = 0 (i.e. lands within thetaRes/2 of pi)
//	numrho   = round(((width + height) * 2 + 1) / rhoRes)
//
// Every edge pixel (x, y) votes once per angle into
//
//	r = round(x*cos(theta)/rhoRes + y*sin(theta)/rhoRes) + (numrho-1)/2
//
// # Peaks
//
// A cell is a line when its count is strictly greater than the threshold,
// strictly greater than the cells at r-1 and n-1, and at least equal to the
// cells at r+1 and n+1. Peaks are sorted by count, ties by accumulator
// position, and converted back with
//
//	rho   = (r - (numrho-1)/2) * rhoRes
//	theta = n * thetaRes
func houghLines(edges *frame.Frame, p HoughParams) []Line {
	width, height := edges.Width, edges.Height
	irho := float32(1 / p.Rho)

	numangle, numrho := p.accumulatorSize(width, height)
	half := (numrho - 1) / 2

	// Trig tables, accumulated in float32 the way the C++ does.
	tabSin := make([]float32, numangle)
	tabCos := make([]float32, numangle)
	ang := float32(0)
	for n := 0; n < numangle; n++ {
		tabSin[n] = float32(math.Sin(float64(ang))) * irho
		tabCos[n] = float32(math.Cos(float64(ang))) * irho
		ang += float32(p.Theta)
	}

	stride := numrho + 2
	accum := make([]int, (numangle+2)*stride)

	for _, pt := range edgePoints(edges) {
		fx, fy := float32(pt.X), float32(pt.Y)
		for n := 0; n < numangle; n++ {
			r := int(math.RoundToEven(float64(fx*tabCos[n]+fy*tabSin[n]))) + half
			accum[(n+1)*stride+r+1]++
		}
	}

	// Collect local maxima. The loops run rho-major like the original so
	// the tie break on index gives the same order.
	peaks := make([]int, 0)
	for r := 0; r < numrho; r++ {
		for n := 0; n < numangle; n++ {
			base := (n+1)*stride + r + 1
			v := accum[base]
			if v > p.Threshold &&
				v > accum[base-1] && v >= accum[base+1] &&
				v > accum[base-stride] && v >= accum[base+stride] {
				peaks = append(peaks, base)
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		a, b := peaks[i], peaks[j]
		return accum[a] > accum[b] || (accum[a] == accum[b] && a < b)
	})

	if p.MaxLines > 0 && len(peaks) > p.MaxLines {
		peaks = peaks[:p.MaxLines]
	}

	lines := make([]Line, 0, len(peaks))
	for _, idx := range peaks {
		n := idx/stride - 1
		r := idx - (n+1)*stride - 1
		lines = append(lines, Line{
			Rho:   (float32(r) - float32(numrho-1)*0.5) * float32(p.Rho),
			Theta: float32(n) * float32(p.Theta),
			Votes: accum[idx],
		})
	}

	return lines
}
