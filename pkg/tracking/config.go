package tracking

import "time"

// Config holds the tunable parameters of the frame loop
type Config struct {
	// Timing
	FrameInterval time.Duration // How often to pull a frame from the camera

	// Scanning
	ScanOnStart bool // Run detection from the first frame

	// Logging
	MissLogEvery int // Log once per this many consecutive unavailable frames
}

// DefaultConfig returns the recommended configuration for a 30 fps camera
func DefaultConfig() Config {
	return Config{
		FrameInterval: 33 * time.Millisecond, // ~30 frames per second
		ScanOnStart:   false,
		MissLogEvery:  30, // About once a second
	}
}

// SlowConfig returns a configuration for low-power boards
func SlowConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameInterval = 100 * time.Millisecond
	cfg.MissLogEvery = 10
	return cfg
}

// FastConfig returns a configuration for 60 fps capture
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameInterval = 16 * time.Millisecond
	cfg.MissLogEvery = 60
	return cfg
}

// FromFPS returns DefaultConfig with the frame interval matched to fps.
// Non-positive fps keeps the default interval.
func FromFPS(fps float64) Config {
	cfg := DefaultConfig()
	if fps > 0 {
		cfg.FrameInterval = time.Duration(float64(time.Second) / fps)
	}
	return cfg
}
