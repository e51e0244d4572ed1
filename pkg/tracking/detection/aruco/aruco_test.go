package aruco

import (
	"math"
	"testing"

	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/tracking/detection"
)

func TestDictionaryCode(t *testing.T) {
	for _, name := range detection.Dictionaries() {
		if _, err := DictionaryCode(name); err != nil {
			t.Errorf("DictionaryCode(%q) error = %v", name, err)
		}
	}
	if _, err := DictionaryCode("9x9_1"); err == nil {
		t.Error("expected error for unknown dictionary")
	}
}

// markerFrame renders marker id onto a white frame with its top-left
// corner at (x0, y0).
func markerFrame(t *testing.T, id, side, width, height, x0, y0 int) *raster.Buffer {
	t.Helper()
	img, err := GenerateMarker(detection.DefaultDictionary, id, side, 1)
	if err != nil {
		t.Fatalf("GenerateMarker() error = %v", err)
	}
	defer img.Close()

	bgr := make([]byte, width*height*3)
	for i := range bgr {
		bgr[i] = 255
	}
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			v := img.GetUCharAt(y, x)
			i := ((y0+y)*width + (x0 + x)) * 3
			bgr[i], bgr[i+1], bgr[i+2] = v, v, v
		}
	}
	return raster.NewBufferFromBGR(width, height, bgr)
}

func TestDetect_GeneratedMarker(t *testing.T) {
	d, err := New(detection.Config{Dictionary: detection.DefaultDictionary})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer d.Close()

	frame := markerFrame(t, 23, 120, 320, 240, 100, 60)
	markers, err := d.Detect(frame)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(markers) != 1 {
		t.Fatalf("got %d markers, want 1", len(markers))
	}

	m := markers[0]
	if m.ID != 23 {
		t.Errorf("ID = %d, want 23", m.ID)
	}
	if math.Abs(m.Center.X-160) > 2 || math.Abs(m.Center.Y-120) > 2 {
		t.Errorf("Center = %+v, want about (160, 120)", m.Center)
	}
}

func TestDetect_EmptyFrame(t *testing.T) {
	d, err := New(detection.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer d.Close()

	markers, err := d.Detect(raster.NewBuffer(64, 48, 3, raster.UnitByte))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(markers) != 0 {
		t.Errorf("got %d markers on a blank frame", len(markers))
	}

	if _, err := d.Detect(nil); err == nil {
		t.Error("expected error for nil frame")
	}
}

func TestNew_UnknownDictionary(t *testing.T) {
	if _, err := New(detection.Config{Dictionary: "bogus"}); err == nil {
		t.Error("expected error")
	}
}
