// Package detection defines the marker-detection collaborator: the
// interface the tracking pipeline calls once per frame, the table of
// supported marker dictionaries, and running detection statistics.
package detection

import (
	"fmt"
	"slices"
	"strings"

	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// Detector finds fiducial markers in a frame.
type Detector interface {
	// Detect returns the markers found in frame. Implementations may draw
	// their own annotations onto frame.
	Detect(frame *raster.Buffer) ([]zone.Marker, error)

	// Close releases resources
	Close() error
}

// Dictionary names, in the order they are listed to operators.
var dictionaryNames = []string{
	"4x4_50", "4x4_100", "4x4_250", "4x4_1000",
	"5x5_50", "5x5_100", "5x5_250", "5x5_1000",
	"6x6_50", "6x6_100", "6x6_250", "6x6_1000",
	"7x7_50", "7x7_100", "7x7_250", "7x7_1000",
	"aruco_original",
	"april_16h5", "april_25h9", "april_36h10", "april_36h11",
}

// DefaultDictionary is used when none is configured.
const DefaultDictionary = "6x6_250"

// Dictionaries returns the supported dictionary names.
func Dictionaries() []string {
	return slices.Clone(dictionaryNames)
}

// ValidateDictionary returns an error naming the supported dictionaries
// when name is not one of them.
func ValidateDictionary(name string) error {
	if slices.Contains(dictionaryNames, name) {
		return nil
	}
	return fmt.Errorf("unknown dictionary type: %s. Available: %s", name, strings.Join(dictionaryNames, ", "))
}

// Config holds detector configuration
type Config struct {
	Dictionary string // Marker dictionary name, see Dictionaries
	Draw       bool   // Outline detected markers on the frame
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Dictionary: DefaultDictionary,
		Draw:       true,
	}
}

// MarkerFromCorners builds a marker whose center is the mean of its corners.
func MarkerFromCorners(id int, corners [4]zone.Point) zone.Marker {
	return zone.Marker{ID: id, Corners: corners, Center: zone.CornerCenter(corners)}
}
