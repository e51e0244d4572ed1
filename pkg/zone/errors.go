package zone

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMarkers is returned when calibration is attempted without markers.
	ErrNoMarkers = errors.New("zone: no markers to calibrate from")

	// ErrUnknownZone is returned when a key does not resolve to a zone.
	ErrUnknownZone = errors.New("zone: unknown zone")

	// ErrEmptyStore is returned by operations that need calibrated zones.
	ErrEmptyStore = errors.New("zone: store is empty")

	// ErrInvalidTolerance is returned for non-positive tolerances.
	ErrInvalidTolerance = errors.New("zone: tolerance must be positive")

	// ErrInvalidLine is returned for labels outside L1..L6.
	ErrInvalidLine = errors.New("zone: invalid line label")

	// ErrInvalidDocument is returned when a calibration document is malformed.
	ErrInvalidDocument = errors.New("zone: invalid calibration document")
)

// DocumentError describes a malformed entry in a calibration document.
type DocumentError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("zone: document key %q: %v", e.Key, e.Err)
}

// Unwrap lets errors.Is match ErrInvalidDocument.
func (e *DocumentError) Unwrap() []error {
	return []error{ErrInvalidDocument, e.Err}
}
