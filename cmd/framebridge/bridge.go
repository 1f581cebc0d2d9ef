package main

import (
	"sync"

	"github.com/ironsheep/frame-bridge/internal/bridge"
	"github.com/ironsheep/frame-bridge/internal/config"
	"github.com/ironsheep/frame-bridge/internal/logging"
)

var (
	shared     *bridge.Bridge
	sharedErr  error
	sharedOnce sync.Once

	// lastErr is shared by every caller in the process.
	lastErrMu sync.Mutex
	lastErr   string
)

// instance returns the process-wide bridge, building it from the
// environment on first use.
func instance() (*bridge.Bridge, error) {
	sharedOnce.Do(func() {
		cfg, err := config.FromEnv()
		if err != nil {
			sharedErr = err
			return
		}
		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			sharedErr = err
			return
		}
		shared, sharedErr = bridge.New(cfg, bridge.WithLogger(logger))
	})
	return shared, sharedErr
}

func setLastError(err error) {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()
	if err == nil {
		lastErr = ""
		return
	}
	lastErr = err.Error()
}

func lastError() string {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()
	return lastErr
}

// version returns the greeting, or the reason the bridge could not start.
func version() string {
	b, err := instance()
	if err != nil {
		setLastError(err)
		return "Hello from Go !\nNo vision backend: " + err.Error()
	}
	setLastError(nil)
	return b.Greeting()
}

// analyze serializes the lines found in a borrowed grayscale buffer.
func analyze(data []byte, width, height int) (string, error) {
	b, err := instance()
	if err == nil {
		var s string
		if s, err = b.AnalyzeFrame(data, width, height); err == nil {
			setLastError(nil)
			return s, nil
		}
	}
	setLastError(err)
	return "", err
}

// brightness returns the mean of a borrowed grayscale buffer, or -1.
func brightness(data []byte, width, height int) float64 {
	b, err := instance()
	if err == nil {
		var mean float64
		if mean, err = b.Brightness(data, width, height); err == nil {
			setLastError(nil)
			return mean
		}
	}
	setLastError(err)
	return -1
}
