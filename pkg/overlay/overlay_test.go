package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/zone"
)

func oneZone(tolerance float64) *zone.Store {
	s := zone.NewStore(100, 100)
	s.Zones["0"] = &zone.Zone{Key: "0", Center: zone.Point{X: 40, Y: 40}, Size: 20, Tolerance: tolerance, AssignedID: "0"}
	return s
}

func plain() Config {
	cfg := DefaultConfig()
	cfg.Thickness = 1
	cfg.Summary = false
	return cfg
}

func TestDraw_ColorByOccupancy(t *testing.T) {
	tests := []struct {
		name string
		occ  tracking.Occupancy
		want raster.Color
	}{
		{"free", tracking.Occupancy{"0": {}}, raster.Red},
		{"occupied", tracking.Occupancy{"0": {Occupied: true, MarkerID: 3}}, raster.Green},
		{"missing from occupancy", nil, raster.Red},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := raster.NewBuffer(100, 100, 3, raster.UnitByte)
			New(plain()).Draw(buf, oneZone(1), tc.occ)

			// Rightmost and bottom points of the radius-10 outline.
			assert.Equal(t, tc.want, buf.At(50, 40))
			assert.Equal(t, tc.want, buf.At(40, 50))
			// Center stays untouched.
			assert.Equal(t, raster.Black, buf.At(40, 40))
		})
	}
}

func TestDraw_RadiusFollowsTolerance(t *testing.T) {
	buf := raster.NewBuffer(100, 100, 3, raster.UnitByte)
	New(plain()).Draw(buf, oneZone(1.5), nil)

	assert.Equal(t, raster.Red, buf.At(55, 40))
	assert.Equal(t, raster.Black, buf.At(50, 40))
}

func TestDraw_LabelAtBoundingBoxCorner(t *testing.T) {
	cfg := plain()
	cfg.Label = raster.White
	buf := raster.NewBuffer(100, 100, 3, raster.UnitByte)
	New(cfg).Draw(buf, oneZone(1), nil)

	// '0' top row is .###. at scale 2, anchored at (30, 30).
	assert.Equal(t, raster.Black, buf.At(30, 30))
	assert.Equal(t, raster.White, buf.At(32, 30))
	assert.Equal(t, raster.White, buf.At(33, 31))
	assert.Equal(t, raster.Black, buf.At(31, 31))
}

func TestDraw_FloatBuffer(t *testing.T) {
	buf := raster.NewBuffer(100, 100, 4, raster.UnitFloat)
	New(plain()).Draw(buf, oneZone(1), tracking.Occupancy{"0": {Occupied: true}})

	assert.Equal(t, raster.NormRGBA(0, 1, 0, 1), buf.At(50, 40))
}

func TestDraw_EmptyStore(t *testing.T) {
	buf := raster.NewBuffer(20, 20, 3, raster.UnitByte)
	New(DefaultConfig()).Draw(buf, zone.NewStore(20, 20), nil)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if buf.At(x, y) != raster.Black {
				t.Fatalf("pixel (%d,%d) painted on empty store", x, y)
			}
		}
	}
}

func TestLabelScale(t *testing.T) {
	tests := []struct {
		tolerance float64
		want      int
	}{
		{0.1, 1},
		{0.5, 1},
		{1.0, 2},
		{1.2, 2},
		{1.3, 3},
		{2.0, 4},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, LabelScale(tc.tolerance), "tolerance %v", tc.tolerance)
	}
}
