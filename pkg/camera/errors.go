package camera

import "errors"

var (
	// ErrFrameUnavailable is returned when the device produced no frame this tick
	ErrFrameUnavailable = errors.New("camera frame unavailable")

	// ErrNotOpen is returned when no camera is running
	ErrNotOpen = errors.New("camera not open")

	// ErrNoDevice is returned when the selected device cannot be opened
	ErrNoDevice = errors.New("camera device not found")
)
