package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/frame-bridge/internal/bridge"
	"github.com/ironsheep/frame-bridge/internal/config"
	"github.com/ironsheep/frame-bridge/internal/detection"
	"github.com/ironsheep/frame-bridge/internal/logging"
	"github.com/ironsheep/frame-bridge/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("frame-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Backends:   %v\n", detection.Available())
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frame-mcp: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.FromEnv(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frame-mcp: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr; stdout is for MCP protocol
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frame-mcp: %v\n", err)
		os.Exit(2)
	}

	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
		"backend": cfg.BackendName(),
	}).Debug("Frame MCP server starting")

	b, err := bridge.New(cfg, bridge.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Fatal("Failed to open vision backend")
	}

	srv := server.New(b, server.WithLogger(logger), server.WithVersion(Version))
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}

// parseFlags turns command line flags into config options. Only flags that
// appear in args produce an option, so unset flags leave the environment
// value in place.
func parseFlags(args []string, output io.Writer) ([]config.Option, error) {
	fs := flag.NewFlagSet("frame-mcp", flag.ContinueOnError)
	fs.SetOutput(output)

	backend := fs.String("backend", "", "detection backend")
	logLevel := fs.String("log-level", "", "logrus level")
	logFormat := fs.String("log-format", "", "json or text")
	cannyLow := fs.Float64("canny-low", 0, "Canny low threshold")
	cannyHigh := fs.Float64("canny-high", 0, "Canny high threshold")
	blurSigma := fs.Float64("blur-sigma", 0, "Gaussian pre-blur sigma")
	houghThreshold := fs.Int("hough-threshold", 0, "Hough vote threshold")
	maxLines := fs.Int("max-lines", 0, "maximum lines returned")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	var opts []config.Option
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			opts = append(opts, config.WithBackend(*backend))
		case "log-level":
			opts = append(opts, config.WithLogLevel(*logLevel))
		case "log-format":
			opts = append(opts, config.WithLogFormat(*logFormat))
		case "canny-low":
			opts = append(opts, config.WithCannyLow(*cannyLow))
		case "canny-high":
			opts = append(opts, config.WithCannyHigh(*cannyHigh))
		case "blur-sigma":
			opts = append(opts, config.WithBlurSigma(*blurSigma))
		case "hough-threshold":
			opts = append(opts, config.WithHoughThreshold(*houghThreshold))
		case "max-lines":
			opts = append(opts, config.WithMaxLines(*maxLines))
		}
	})
	return opts, nil
}

func printHelp() {
	fmt.Println("frame-mcp - MCP server for grayscale frame line detection")
	fmt.Println()
	fmt.Println("Usage: frame-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v            Print version information")
	fmt.Println("  --help, -h               Print this help message")
	fmt.Println("  -backend NAME            Detection backend, overrides " + config.EnvBackend)
	fmt.Println("  -log-level LEVEL         Overrides " + config.EnvLogLevel)
	fmt.Println("  -log-format FORMAT       Overrides " + config.EnvLogFormat)
	fmt.Println("  -canny-low N             Overrides " + config.EnvCannyLow)
	fmt.Println("  -canny-high N            Overrides " + config.EnvCannyHigh)
	fmt.Println("  -blur-sigma N            Overrides " + config.EnvBlurSigma)
	fmt.Println("  -hough-threshold N       Overrides " + config.EnvHoughThreshold)
	fmt.Println("  -max-lines N             Overrides " + config.EnvMaxLines)
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %-30s logrus level (default info)\n", config.EnvLogLevel)
	fmt.Printf("  %-30s json or text\n", config.EnvLogFormat)
	fmt.Printf("  %-30s one of %v\n", config.EnvBackend, detection.Available())
	fmt.Printf("  %-30s Canny low threshold (default 100)\n", config.EnvCannyLow)
	fmt.Printf("  %-30s Canny high threshold (default 200)\n", config.EnvCannyHigh)
	fmt.Printf("  %-30s Gaussian pre-blur sigma (default 0, off)\n", config.EnvBlurSigma)
	fmt.Printf("  %-30s Hough distance resolution (default 1)\n", config.EnvHoughRho)
	fmt.Printf("  %-30s Hough angle resolution in radians (default pi/180)\n", config.EnvHoughTheta)
	fmt.Printf("  %-30s Hough vote threshold (default 150)\n", config.EnvHoughThreshold)
	fmt.Printf("  %-30s maximum lines returned (default 0, unlimited)\n", config.EnvMaxLines)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
}
