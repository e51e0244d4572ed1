// Package overlay draws calibrated zones onto camera frames.
package overlay

import (
	"fmt"
	"math"

	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// Config holds overlay appearance.
type Config struct {
	Occupied  raster.Color // Outline of a zone with a marker inside
	Free      raster.Color // Outline of an empty zone
	Label     raster.Color // Zone id text; zero value uses the outline color
	Thickness int          // Outline rings
	Font      string       // raster.FontSimple or raster.FontSmall
	Summary   bool         // Print zone and occupancy counts in the top-left corner
}

// DefaultConfig returns the console overlay style.
func DefaultConfig() Config {
	return Config{
		Occupied:  raster.Green,
		Free:      raster.Red,
		Thickness: 2,
		Font:      raster.FontSimple,
		Summary:   true,
	}
}

// Visualizer draws zone outlines colored by occupancy, with each zone's
// assigned id at the top-left of its bounding box.
type Visualizer struct {
	config Config
}

// New creates a visualizer.
func New(config Config) *Visualizer {
	if config.Thickness < 1 {
		config.Thickness = 1
	}
	return &Visualizer{config: config}
}

// Draw renders every zone of store onto buf in key order.
func (v *Visualizer) Draw(buf *raster.Buffer, store *zone.Store, occ tracking.Occupancy) {
	d := raster.NewDrawer(buf)

	for _, key := range store.Keys() {
		z := store.Zones[key]
		color := v.config.Free
		if occ[key].Occupied {
			color = v.config.Occupied
		}

		cx, cy := int(math.Round(z.Center.X)), int(math.Round(z.Center.Y))
		r := int(math.Round(z.Radius()))
		d.DrawCircle(cx, cy, r, color, v.config.Thickness, nil)

		label := v.config.Label
		if label == (raster.Color{}) {
			label = color
		}
		d.DrawText(cx-r, cy-r, z.AssignedID, label, LabelScale(z.Tolerance), v.config.Font)
	}

	if v.config.Summary && store.Len() > 0 {
		text := fmt.Sprintf("ZONES %d OCCUPIED %d", store.Len(), occ.Count())
		d.DrawText(4, 4, text, raster.White, 1, raster.FontSimple)
	}
}

// LabelScale returns the text scale for a zone label: twice the
// tolerance, rounded, and never below 1.
func LabelScale(tolerance float64) int {
	return max(1, int(math.Round(2*tolerance)))
}
