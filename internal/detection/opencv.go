//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// OpenCVName is the registry name of the gocv backend.
const OpenCVName = "opencv"

func init() {
	Register(OpenCVName, func() (Backend, error) {
		return &openCV{}, nil
	})
}

// openCV implements Backend on top of gocv.
//
// Every Mat created here is closed before the method returns, on error
// paths too. Input Mats alias the frame's memory for the duration of the
// call only.
type openCV struct{}

func (b *openCV) Name() string { return OpenCVName }

func (b *openCV) Version() string { return gocv.OpenCVVersion() }

// wrap views f as a CV_8UC1 Mat.
func (b *openCV) wrap(f *frame.Frame) (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC1, f.Compact())
	if err != nil {
		return gocv.Mat{}, wrapError(OpenCVName, "wrap", err)
	}
	return mat, nil
}

func (b *openCV) canny(src gocv.Mat, p CannyParams) (gocv.Mat, error) {
	input := src
	if p.BlurSigma > 0 {
		blurred := gocv.NewMat()
		defer blurred.Close()
		if err := gocv.GaussianBlur(src, &blurred, image.Pt(0, 0), p.BlurSigma, p.BlurSigma, gocv.BorderReplicate); err != nil {
			return gocv.Mat{}, wrapError(OpenCVName, "blur", err)
		}
		input = blurred
	}

	edges := gocv.NewMat()
	if err := gocv.Canny(input, &edges, float32(p.Low), float32(p.High)); err != nil {
		edges.Close()
		return gocv.Mat{}, wrapError(OpenCVName, "canny", err)
	}
	return edges, nil
}

func (b *openCV) Canny(f *frame.Frame, p CannyParams) (*frame.Frame, error) {
	src, err := b.wrap(f)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	edges, err := b.canny(src, p)
	if err != nil {
		return nil, err
	}
	defer edges.Close()

	return &frame.Frame{
		Width:  f.Width,
		Height: f.Height,
		Stride: f.Width,
		Pix:    edges.ToBytes(),
	}, nil
}

func (b *openCV) hough(edges gocv.Mat, p HoughParams) ([]Line, error) {
	out := gocv.NewMat()
	defer out.Close()

	if err := gocv.HoughLines(edges, &out, float32(p.Rho), float32(p.Theta), p.Threshold); err != nil {
		return nil, wrapError(OpenCVName, "hough", err)
	}

	// HoughLines writes an N x 1 CV_32FC2 Mat of (rho, theta).
	lines := make([]Line, 0, out.Rows())
	for i := 0; i < out.Rows(); i++ {
		if p.MaxLines > 0 && len(lines) >= p.MaxLines {
			break
		}
		v := out.GetVecfAt(i, 0)
		if len(v) < 2 {
			return nil, wrapError(OpenCVName, "hough", fmt.Errorf("unexpected line vector of length %d", len(v)))
		}
		lines = append(lines, Line{Rho: v[0], Theta: v[1]})
	}
	return lines, nil
}

func (b *openCV) HoughLines(edges *frame.Frame, p HoughParams) ([]Line, error) {
	if err := p.CheckSize(edges.Width, edges.Height); err != nil {
		return nil, wrapError(OpenCVName, "hough", err)
	}

	src, err := b.wrap(edges)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return b.hough(src, p)
}

// DetectLines keeps the edge map inside OpenCV between the two steps.
func (b *openCV) DetectLines(f *frame.Frame, cp CannyParams, hp HoughParams) ([]Line, error) {
	if err := hp.CheckSize(f.Width, f.Height); err != nil {
		return nil, wrapError(OpenCVName, "hough", err)
	}

	src, err := b.wrap(f)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	edges, err := b.canny(src, cp)
	if err != nil {
		return nil, err
	}
	defer edges.Close()

	return b.hough(edges, hp)
}

func (b *openCV) Mean(f *frame.Frame) (float64, error) {
	src, err := b.wrap(f)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	return src.Mean().Val1, nil
}

func (b *openCV) Stats(f *frame.Frame) (mean, stdDev float64, err error) {
	src, err := b.wrap(f)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	m := gocv.NewMat()
	defer m.Close()
	sd := gocv.NewMat()
	defer sd.Close()

	if err := gocv.MeanStdDev(src, &m, &sd); err != nil {
		return 0, 0, wrapError(OpenCVName, "mean", err)
	}
	return m.GetDoubleAt(0, 0), sd.GetDoubleAt(0, 0), nil
}
