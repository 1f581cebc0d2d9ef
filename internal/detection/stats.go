package detection

import (
	"github.com/ironsheep/frame-bridge/internal/frame"
)

// StatsProvider is implemented by backends that can compute the spread of
// intensities alongside the mean in one pass.
type StatsProvider interface {
	Stats(f *frame.Frame) (mean, stdDev float64, err error)
}

// Brightness summarizes the intensity distribution of a frame.
type Brightness struct {
	// Mean is the arithmetic mean intensity (0-255).
	Mean float64 `json:"mean"`

	// StdDev is the population standard deviation, a rough contrast
	// measure. Nil when the backend cannot report it.
	StdDev *float64 `json:"std_dev,omitempty"`
}

// MeasureBrightness returns the mean intensity of f and, when b supports
// it, the standard deviation.
func MeasureBrightness(b Backend, f *frame.Frame) (*Brightness, error) {
	if sp, ok := b.(StatsProvider); ok {
		mean, sd, err := sp.Stats(f)
		if err != nil {
			return nil, err
		}
		return &Brightness{Mean: mean, StdDev: &sd}, nil
	}

	mean, err := b.Mean(f)
	if err != nil {
		return nil, err
	}
	return &Brightness{Mean: mean}, nil
}
