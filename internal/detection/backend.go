package detection

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// Line is a detected line in Hesse normal form.
type Line struct {
	// Rho is the signed distance from the origin in pixels.
	Rho float32 `json:"rho"`

	// Theta is the angle of the line normal in radians, in [0, pi).
	Theta float32 `json:"theta"`

	// Votes is the accumulator count, when the backend reports it.
	// OpenCV's HoughLines does not, so it is zero for that backend.
	Votes int `json:"votes,omitempty"`
}

// CannyParams configures edge detection.
type CannyParams struct {
	// Low is the hysteresis threshold below which gradients are discarded.
	Low float64

	// High is the threshold above which gradients are strong edges.
	High float64

	// BlurSigma is the standard deviation, in pixels, of an optional
	// Gaussian pre-blur. Zero disables it. Both backends size the kernel
	// from sigma the same way.
	BlurSigma float64
}

// HoughParams configures the standard Hough transform.
type HoughParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64

	// Theta is the angle resolution of the accumulator in radians.
	Theta float64

	// Threshold is the minimum vote count; only cells strictly above it
	// are reported.
	Threshold int

	// MaxLines caps the number of returned lines. Zero means no cap.
	MaxLines int
}

// DefaultCannyParams returns the thresholds the camera bridge has always used.
func DefaultCannyParams() CannyParams {
	return CannyParams{Low: 100, High: 200}
}

// DefaultHoughParams returns 1 px / 1 degree resolution with 150 votes.
func DefaultHoughParams() HoughParams {
	return HoughParams{Rho: 1, Theta: math.Pi / 180, Threshold: 150}
}

// MaxAccumulatorCells bounds the Hough accumulator of a single frame.
// Finer resolutions on larger frames are rejected rather than allocated.
const MaxAccumulatorCells = 1 << 26

// MaxBlurSigma bounds CannyParams.BlurSigma. The kernel spans about
// 6*sigma pixels.
const MaxBlurSigma = 64

// Validate reports whether the parameters can drive a transform.
// Resolutions must be finite and positive, and fine enough resolutions
// that the accumulator could not fit even a 1x1 frame are rejected.
func (p HoughParams) Validate() error {
	if !finitePositive(p.Rho) || !finitePositive(p.Theta) {
		return fmt.Errorf("%w: resolution must be finite and positive (rho=%g, theta=%g)", ErrInvalidParams, p.Rho, p.Theta)
	}
	if p.MaxLines < 0 {
		return fmt.Errorf("%w: max lines must not be negative, got %d", ErrInvalidParams, p.MaxLines)
	}
	if math.Pi/p.Theta > MaxAccumulatorCells || 1/p.Rho > MaxAccumulatorCells {
		return fmt.Errorf("%w: resolution rho=%g theta=%g", ErrAccumulatorTooLarge, p.Rho, p.Theta)
	}
	return nil
}

// accumulatorSize returns the number of angle and distance bins for a
// width x height frame, laid out as cv::HoughLines does.
func (p HoughParams) accumulatorSize(width, height int) (numangle, numrho int) {
	numangle = int(math.Floor(math.Pi/p.Theta)) + 1
	if numangle > 1 && math.Abs(math.Pi-float64(numangle-1)*p.Theta) < p.Theta/2 {
		numangle--
	}
	numrho = int(math.RoundToEven(float64((width+height)*2+1) / p.Rho))
	return numangle, numrho
}

// CheckSize validates p and reports whether the accumulator for a
// width x height frame, border included, stays within MaxAccumulatorCells.
func (p HoughParams) CheckSize(width, height int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	numangle, numrho := p.accumulatorSize(width, height)
	if cells := float64(numangle+2) * float64(numrho+2); cells > MaxAccumulatorCells {
		return fmt.Errorf("%w: %dx%d frame needs %.0f cells, limit %d",
			ErrAccumulatorTooLarge, width, height, cells, MaxAccumulatorCells)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Backend is a vision library that can analyze grayscale frames.
//
// Implementations must not retain the frames passed to them after the call
// returns; frames borrow caller memory.
type Backend interface {
	// Name is the registry name, e.g. "opencv".
	Name() string

	// Version reports the version of the underlying library.
	Version() string

	// Canny returns a binary edge map (0 or 255) with the frame's size.
	Canny(f *frame.Frame, p CannyParams) (*frame.Frame, error)

	// HoughLines runs the standard Hough transform on an edge map.
	HoughLines(edges *frame.Frame, p HoughParams) ([]Line, error)

	// Mean returns the arithmetic mean intensity.
	Mean(f *frame.Frame) (float64, error)
}

// LineDetector is implemented by backends that can run Canny and Hough
// without materializing the edge map as a Frame in between.
type LineDetector interface {
	DetectLines(f *frame.Frame, cp CannyParams, hp HoughParams) ([]Line, error)
}

// DetectLines runs Canny followed by HoughLines on b.
func DetectLines(b Backend, f *frame.Frame, cp CannyParams, hp HoughParams) ([]Line, error) {
	if err := hp.CheckSize(f.Width, f.Height); err != nil {
		return nil, err
	}
	if ld, ok := b.(LineDetector); ok {
		return ld.DetectLines(f, cp, hp)
	}

	edges, err := b.Canny(f, cp)
	if err != nil {
		return nil, err
	}
	return b.HoughLines(edges, hp)
}

// Factory constructs a backend instance.
type Factory func() (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// knownBackends lists names that may be missing only because of build tags.
var knownBackends = map[string]string{
	"opencv": "gocv",
}

// Register makes a backend available under name. Registering the same name
// twice panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic("detection: Register called twice for backend " + name)
	}
	registry[name] = f
}

// Open constructs the backend registered under name.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		if tag, known := knownBackends[name]; known {
			return nil, fmt.Errorf("%w: %s (build with -tags %s)", ErrBackendUnavailable, name, tag)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}

	b, err := f()
	if err != nil {
		return nil, wrapError(name, "open", err)
	}
	return b, nil
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns "opencv" when it is compiled in, otherwise "pure-go".
func Default() string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if _, ok := registry["opencv"]; ok {
		return "opencv"
	}
	return PureGoName
}
