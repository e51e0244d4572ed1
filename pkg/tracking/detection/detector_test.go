package detection

import (
	"errors"
	"strings"
	"testing"

	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// fakeDetector returns canned results in order.
type fakeDetector struct {
	results [][]zone.Marker
	err     error
	calls   int
}

func (f *fakeDetector) Detect(*raster.Buffer) ([]zone.Marker, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := f.results[f.calls%len(f.results)]
	f.calls++
	return r, nil
}

func (f *fakeDetector) Close() error { return nil }

func TestMarkerFromCorners(t *testing.T) {
	m := MarkerFromCorners(12, [4]zone.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})

	if m.ID != 12 {
		t.Errorf("ID: got %d, want 12", m.ID)
	}
	if m.Center != (zone.Point{X: 5, Y: 5}) {
		t.Errorf("Center: got %+v, want {5 5}", m.Center)
	}
}

func TestValidateDictionary(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"6x6_250", false},
		{"4x4_50", false},
		{"aruco_original", false},
		{"april_36h11", false},
		{"8x8_50", true},
		{"", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDictionary(tc.name)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateDictionary(%q): err=%v, wantErr=%v", tc.name, err, tc.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "6x6_250") {
				t.Errorf("error should list available dictionaries: %v", err)
			}
		})
	}
}

func TestDictionaries_IsCopy(t *testing.T) {
	d := Dictionaries()
	if len(d) != 21 {
		t.Fatalf("got %d dictionaries, want 21", len(d))
	}
	d[0] = "mutated"
	if Dictionaries()[0] != "4x4_50" {
		t.Error("Dictionaries should return a copy")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateDictionary(cfg.Dictionary); err != nil {
		t.Errorf("DefaultConfig dictionary invalid: %v", err)
	}
}

func TestCounting(t *testing.T) {
	fake := &fakeDetector{results: [][]zone.Marker{
		{{ID: 1}, {ID: 2}},
		nil,
		{{ID: 3}},
		nil,
	}}
	c := WithStats(fake)

	if got := c.Stats().Rate(); got != 0 {
		t.Errorf("Rate with no frames: got %v, want 0", got)
	}

	for i := 0; i < 4; i++ {
		if _, err := c.Detect(nil); err != nil {
			t.Fatalf("Detect: %v", err)
		}
	}

	s := c.Stats()
	if s.TotalFrames != 4 || s.DetectedFrames != 2 || s.TotalMarkers != 3 {
		t.Errorf("Stats: got %+v", s)
	}
	if s.Rate() != 50 {
		t.Errorf("Rate: got %v, want 50", s.Rate())
	}

	c.ResetStats()
	if c.Stats() != (Stats{}) {
		t.Errorf("ResetStats: got %+v", c.Stats())
	}
}

func TestCounting_ErrorNotCounted(t *testing.T) {
	c := WithStats(&fakeDetector{err: errors.New("boom")})

	if _, err := c.Detect(nil); err == nil {
		t.Fatal("expected error")
	}
	if c.Stats().TotalFrames != 0 {
		t.Errorf("failed detection should not count, got %+v", c.Stats())
	}
}
