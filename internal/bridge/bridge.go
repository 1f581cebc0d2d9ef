// Package bridge exposes frame analysis to host applications.
//
// A Bridge binds a detection backend to a fixed set of parameters and offers
// the calls a camera host makes per frame:
//
//   - Greeting: a version banner naming the vision library in use
//   - AnalyzeFrame: Canny + Hough on a raw grayscale buffer, serialized as
//     "rho,theta;" pairs
//   - Brightness: the mean intensity of a raw grayscale buffer
//
// Calls are synchronous and keep no state between frames. The input buffer
// is borrowed: it is read during the call and never retained, on success and
// error paths alike.
package bridge

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/frame-bridge/internal/config"
	"github.com/ironsheep/frame-bridge/internal/detection"
	"github.com/ironsheep/frame-bridge/internal/frame"
	"github.com/ironsheep/frame-bridge/internal/logging"
)

// Bridge runs frame analysis on one backend. It is safe for concurrent use
// as long as the backend is; both built-in backends are.
type Bridge struct {
	backend detection.Backend
	canny   detection.CannyParams
	hough   detection.HoughParams
	logger  *logrus.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logrus.Logger) Option {
	return func(b *Bridge) {
		b.logger = l
	}
}

// WithBackend uses an already opened backend instead of the configured one.
func WithBackend(be detection.Backend) Option {
	return func(b *Bridge) {
		b.backend = be
	}
}

// New builds a Bridge from cfg. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) (*Bridge, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Bridge{
		canny:  cfg.Canny,
		hough:  cfg.Hough,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.backend == nil {
		be, err := detection.Open(cfg.BackendName())
		if err != nil {
			return nil, err
		}
		b.backend = be
	}

	b.logger.WithFields(logrus.Fields{
		"backend": b.backend.Name(),
		"version": b.backend.Version(),
	}).Debug("Frame bridge ready")

	return b, nil
}

// Backend returns the backend in use.
func (b *Bridge) Backend() detection.Backend {
	return b.backend
}

// Greeting returns the banner hosts display to confirm the native library
// loaded, including the vision library version.
func (b *Bridge) Greeting() string {
	return fmt.Sprintf("Hello from Go !\nWe're using %s version: %s", b.backend.Name(), b.backend.Version())
}

// AnalyzeFrame detects lines in a width x height grayscale buffer and
// returns them serialized with FormatLines. No lines yields "".
func (b *Bridge) AnalyzeFrame(data []byte, width, height int) (string, error) {
	f, err := frame.New(data, width, height)
	if err != nil {
		return "", err
	}

	lines, err := b.DetectLines(f)
	if err != nil {
		return "", err
	}
	return FormatLines(lines), nil
}

// DetectLines runs Canny followed by the Hough transform on f.
func (b *Bridge) DetectLines(f *frame.Frame) ([]detection.Line, error) {
	start := time.Now()

	lines, err := detection.DetectLines(b.backend, f, b.canny, b.hough)
	if err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"width":  f.Width,
			"height": f.Height,
		}).Warn("Line detection failed")
		return nil, err
	}

	b.logger.WithFields(logrus.Fields{
		"width":   f.Width,
		"height":  f.Height,
		"lines":   len(lines),
		"elapsed": time.Since(start).String(),
	}).Debug("Frame analyzed")

	return lines, nil
}

// EdgeMap returns the Canny edge map of f.
func (b *Bridge) EdgeMap(f *frame.Frame) (*frame.Frame, error) {
	return b.backend.Canny(f, b.canny)
}

// Brightness returns the mean intensity of a width x height grayscale
// buffer. A uniform buffer of value v returns exactly v.
func (b *Bridge) Brightness(data []byte, width, height int) (float64, error) {
	f, err := frame.New(data, width, height)
	if err != nil {
		return 0, err
	}

	mean, err := b.backend.Mean(f)
	if err != nil {
		return 0, err
	}

	b.logger.WithField("brightness", mean).Debug("Native brightness")
	return mean, nil
}

// BrightnessStats returns the mean and, when available, the spread of the
// intensities of f.
func (b *Bridge) BrightnessStats(f *frame.Frame) (*detection.Brightness, error) {
	return detection.MeasureBrightness(b.backend, f)
}
