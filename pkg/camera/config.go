// Package camera provides runtime-configurable capture settings and the
// lifecycle of the active capture device.
package camera

// Config holds all capture configuration parameters.
// These can be modified via the console API at runtime.
type Config struct {
	// === Device ===
	Device int `json:"device"` // Capture device index (0..MaxDevices-1)

	// === Resolution ===
	Width  int `json:"width"`  // Requested frame width in pixels
	Height int `json:"height"` // Requested frame height in pixels
	FPS    int `json:"fps"`    // Requested frames per second

	// === Console stream ===
	// Quality is the JPEG quality (1-100) of frames pushed to the console.
	Quality int `json:"quality"`

	// Mirror flips frames horizontally before detection.
	Mirror bool `json:"mirror"`
}

// Capture limits
const (
	MaxDevices = 10 // Device indices probed during enumeration
	MaxWidth   = 3840
	MaxHeight  = 2160
	MaxFPS     = 120
)

// DefaultConfig returns the recommended configuration.
// 640x480 keeps marker detection fast on small boards.
func DefaultConfig() Config {
	return Config{
		Device:  0,
		Width:   640,
		Height:  480,
		FPS:     30,
		Quality: 80,
		Mirror:  false,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 || c.Device >= MaxDevices {
		errors = append(errors, "device must be between 0 and 9")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 3840")
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.FPS < 1 || c.FPS > MaxFPS {
		errors = append(errors, "fps must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}

// Device describes one openable capture device as reported by the driver.
type Device struct {
	ID     int     `json:"id"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps"`
}
