package detection

import (
	"runtime"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// PureGoName is the registry name of the dependency-free backend.
const PureGoName = "pure-go"

func init() {
	Register(PureGoName, func() (Backend, error) {
		return &pureGo{}, nil
	})
}

// pureGo implements Backend without cgo.
type pureGo struct{}

func (b *pureGo) Name() string { return PureGoName }

// Version reports the Go runtime the backend was built with.
func (b *pureGo) Version() string { return runtime.Version() }

func (b *pureGo) Canny(f *frame.Frame, p CannyParams) (*frame.Frame, error) {
	return canny(f, p), nil
}

func (b *pureGo) HoughLines(edges *frame.Frame, p HoughParams) ([]Line, error) {
	if err := p.CheckSize(edges.Width, edges.Height); err != nil {
		return nil, wrapError(PureGoName, "hough", err)
	}
	return houghLines(edges, p), nil
}

func (b *pureGo) Mean(f *frame.Frame) (float64, error) {
	return stat.Mean(intensities(f), nil), nil
}

// Stats returns the mean and population standard deviation of the
// intensities, matching cv::meanStdDev.
func (b *pureGo) Stats(f *frame.Frame) (mean, stdDev float64, err error) {
	mean, stdDev = stat.PopMeanStdDev(intensities(f), nil)
	return mean, stdDev, nil
}

// intensities widens the frame pixels to float64 for gonum.
func intensities(f *frame.Frame) []float64 {
	xs := make([]float64, 0, f.Len())
	for y := 0; y < f.Height; y++ {
		row := f.Pix[y*f.Stride : y*f.Stride+f.Width]
		for _, v := range row {
			xs = append(xs, float64(v))
		}
	}
	return xs
}
