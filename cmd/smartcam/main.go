// SmartCam - marker zone calibration and occupancy console
//
// Tracks fiducial markers against calibrated zones and sends the per-line
// occupancy record to downstream hardware over UDP or serial.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/smartcam/internal/config"
	"github.com/teslashibe/smartcam/internal/log"
	"github.com/teslashibe/smartcam/pkg/debug"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing smartcam.json")
	verbose := flag.Bool("debug", false, "Enable verbose debug logging")
	frames := flag.Bool("debug-frames", false, "Log every processed frame (very verbose)")
	port := flag.Int("port", 0, "Console port (overrides web.port)")
	flag.Parse()

	// The logger level comes from the config, so errors before Init go to stderr
	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Web.Port = *port
	}

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	log.Init(level)
	debug.Enabled = *verbose
	debug.Frames = *frames

	app, err := New(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if err := app.Init(); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
	}
}
