// Package config holds the runtime settings shared by the bridge binaries.
//
// Settings come from FRAME_BRIDGE_* environment variables and can be
// overridden with functional options:
//
//	cfg, err := config.FromEnv(config.WithBackend("pure-go"))
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/frame-bridge/internal/detection"
)

// Environment variable names.
const (
	EnvLogLevel       = "FRAME_BRIDGE_LOG_LEVEL"
	EnvLogFormat      = "FRAME_BRIDGE_LOG_FORMAT"
	EnvBackend        = "FRAME_BRIDGE_BACKEND"
	EnvCannyLow       = "FRAME_BRIDGE_CANNY_LOW"
	EnvCannyHigh      = "FRAME_BRIDGE_CANNY_HIGH"
	EnvBlurSigma      = "FRAME_BRIDGE_BLUR_SIGMA"
	EnvHoughRho       = "FRAME_BRIDGE_HOUGH_RHO"
	EnvHoughTheta     = "FRAME_BRIDGE_HOUGH_THETA"
	EnvHoughThreshold = "FRAME_BRIDGE_HOUGH_THRESHOLD"
	EnvMaxLines       = "FRAME_BRIDGE_MAX_LINES"
)

// Config holds bridge configuration.
type Config struct {
	// LogLevel is a logrus level name ("debug", "info", ...).
	LogLevel string

	// LogFormat is "json" or "text". Empty picks text for debug, json otherwise.
	LogFormat string

	// Backend is the detection backend name. Empty means detection.Default().
	Backend string

	// Canny holds the edge detection thresholds.
	Canny detection.CannyParams

	// Hough holds the line transform resolution and vote threshold.
	Hough detection.HoughParams
}

// Option is a functional option for Config.
type Option func(*Config)

// WithLogLevel sets the log level.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithLogFormat sets the log format.
func WithLogFormat(format string) Option {
	return func(c *Config) {
		c.LogFormat = format
	}
}

// WithBackend selects the detection backend.
func WithBackend(name string) Option {
	return func(c *Config) {
		c.Backend = name
	}
}

// WithCannyLow sets the low hysteresis threshold.
func WithCannyLow(v float64) Option {
	return func(c *Config) {
		c.Canny.Low = v
	}
}

// WithCannyHigh sets the high hysteresis threshold.
func WithCannyHigh(v float64) Option {
	return func(c *Config) {
		c.Canny.High = v
	}
}

// WithBlurSigma sets the Gaussian pre-blur sigma. Zero disables it.
func WithBlurSigma(v float64) Option {
	return func(c *Config) {
		c.Canny.BlurSigma = v
	}
}

// WithHoughThreshold sets the accumulator vote threshold.
func WithHoughThreshold(n int) Option {
	return func(c *Config) {
		c.Hough.Threshold = n
	}
}

// WithMaxLines caps the number of returned lines. Zero means no cap.
func WithMaxLines(n int) Option {
	return func(c *Config) {
		c.Hough.MaxLines = n
	}
}

// Default returns the settings of the original camera bridge: Canny 100/200,
// Hough 1 px, 1 degree, 150 votes.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Canny:    detection.DefaultCannyParams(),
		Hough:    detection.DefaultHoughParams(),
	}
}

// FromEnv builds a Config from the environment, then applies opts.
//
// Unset variables keep their defaults. A set but malformed variable is an
// error naming the variable.
func FromEnv(opts ...Option) (*Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := lookup(EnvBackend); ok {
		cfg.Backend = v
	}

	var err error
	if cfg.Canny.Low, err = floatEnv(EnvCannyLow, cfg.Canny.Low); err != nil {
		return nil, err
	}
	if cfg.Canny.High, err = floatEnv(EnvCannyHigh, cfg.Canny.High); err != nil {
		return nil, err
	}
	if cfg.Canny.BlurSigma, err = floatEnv(EnvBlurSigma, cfg.Canny.BlurSigma); err != nil {
		return nil, err
	}
	if cfg.Hough.Rho, err = floatEnv(EnvHoughRho, cfg.Hough.Rho); err != nil {
		return nil, err
	}
	if cfg.Hough.Theta, err = floatEnv(EnvHoughTheta, cfg.Hough.Theta); err != nil {
		return nil, err
	}
	if cfg.Hough.Threshold, err = intEnv(EnvHoughThreshold, cfg.Hough.Threshold); err != nil {
		return nil, err
	}
	if cfg.Hough.MaxLines, err = intEnv(EnvMaxLines, cfg.Hough.MaxLines); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the numeric settings are usable.
func (c *Config) Validate() error {
	if c.Canny.Low < 0 || c.Canny.High < 0 {
		return fmt.Errorf("config: canny thresholds must not be negative (low=%g, high=%g)", c.Canny.Low, c.Canny.High)
	}
	if !(c.Canny.BlurSigma >= 0 && c.Canny.BlurSigma <= detection.MaxBlurSigma) {
		return fmt.Errorf("config: blur sigma must be between 0 and %d, got %g", detection.MaxBlurSigma, c.Canny.BlurSigma)
	}
	if err := c.Hough.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BackendName returns the configured backend or the build default.
func (c *Config) BackendName() string {
	if c.Backend == "" {
		return detection.Default()
	}
	return c.Backend
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func floatEnv(key string, def float64) (float64, error) {
	v, ok := lookup(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("config: %s=%q is not a number", key, v)
	}
	return f, nil
}

func intEnv(key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}
