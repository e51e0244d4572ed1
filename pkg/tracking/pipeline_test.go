package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/smartcam/pkg/camera"
	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/zone"
)

type fakeSource struct {
	mu     sync.Mutex
	err    error
	frames int
}

func (f *fakeSource) Frame() (*raster.Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.frames++
	return raster.NewBuffer(64, 48, 3, raster.UnitByte), nil
}

type fakeDetector struct {
	markers []zone.Marker
	err     error
	calls   int
}

func (f *fakeDetector) Detect(*raster.Buffer) ([]zone.Marker, error) {
	f.calls++
	return f.markers, f.err
}

func (f *fakeDetector) Close() error { return nil }

type recordingVisualizer struct {
	zones int
	occ   Occupancy
}

func (r *recordingVisualizer) Draw(_ *raster.Buffer, s *zone.Store, occ Occupancy) {
	r.zones = s.Len()
	r.occ = occ
}

type recordingDisplay struct {
	mu     sync.Mutex
	frames []*Frame
}

func (r *recordingDisplay) ShowFrame(f *Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

func (r *recordingDisplay) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func squareMarker(id int, cx, cy float64) zone.Marker {
	h := 10.0
	corners := [4]zone.Point{{X: cx - h, Y: cy - h}, {X: cx + h, Y: cy - h}, {X: cx + h, Y: cy + h}, {X: cx - h, Y: cy + h}}
	return zone.Marker{ID: id, Corners: corners, Center: zone.CornerCenter(corners)}
}

func newTestPipeline(det *fakeDetector) (*Pipeline, *fakeSource, *recordingVisualizer, *recordingDisplay) {
	src := &fakeSource{}
	vis := &recordingVisualizer{}
	disp := &recordingDisplay{}
	cfg := DefaultConfig()
	cfg.ScanOnStart = true
	return NewPipeline(cfg, src, det, zone.NewManager(), vis, disp), src, vis, disp
}

func TestPipeline_TickWithoutScanning(t *testing.T) {
	det := &fakeDetector{markers: []zone.Marker{squareMarker(1, 20, 20)}}
	p, _, _, disp := newTestPipeline(det)
	p.SetScanning(false)

	f, err := p.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if det.calls != 0 {
		t.Errorf("detector called %d times while not scanning", det.calls)
	}
	if f.Scanned || len(f.Markers) != 0 {
		t.Errorf("frame: got scanned=%v markers=%d", f.Scanned, len(f.Markers))
	}
	if disp.count() != 1 {
		t.Errorf("display got %d frames, want 1", disp.count())
	}
}

func TestPipeline_CalibrateThenTrack(t *testing.T) {
	det := &fakeDetector{markers: []zone.Marker{squareMarker(4, 20, 20), squareMarker(8, 45, 20)}}
	p, _, vis, _ := newTestPipeline(det)

	if _, err := p.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if err := p.Calibrate(1); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}

	s := p.Zones().Snapshot()
	if s.Len() != 2 || s.Width != 64 || s.Height != 48 {
		t.Fatalf("store: len=%d %dx%d", s.Len(), s.Width, s.Height)
	}

	// Marker 8 leaves; marker 4 moves slightly.
	det.markers = []zone.Marker{squareMarker(4, 22, 21)}
	f, err := p.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if id, ok := f.Occupancy.Marker("0"); !ok || id != 4 {
		t.Errorf("zone 0: got %d, %v", id, ok)
	}
	if _, ok := f.Occupancy.Marker("1"); ok {
		t.Error("zone 1 should be free")
	}
	if vis.zones != 2 || vis.occ.Count() != 1 {
		t.Errorf("visualizer: zones=%d occupied=%d", vis.zones, vis.occ.Count())
	}
}

func TestPipeline_CalibrateWithoutMarkers(t *testing.T) {
	det := &fakeDetector{}
	p, _, _, _ := newTestPipeline(det)

	if err := p.Calibrate(1); !errors.Is(err, ErrNoMarkers) {
		t.Errorf("before first frame: got %v, want ErrNoMarkers", err)
	}

	p.Tick()
	if err := p.Calibrate(1); !errors.Is(err, ErrNoMarkers) {
		t.Errorf("empty frame: got %v, want ErrNoMarkers", err)
	}
	if p.Zones().Len() != 0 {
		t.Error("store should be untouched")
	}
}

func TestPipeline_UnavailableFrameSkipsTick(t *testing.T) {
	det := &fakeDetector{markers: []zone.Marker{squareMarker(1, 20, 20)}}
	p, src, _, disp := newTestPipeline(det)

	if _, err := p.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	first := p.Latest()

	src.err = camera.ErrFrameUnavailable
	if _, err := p.Tick(); !errors.Is(err, camera.ErrFrameUnavailable) {
		t.Fatalf("got %v, want ErrFrameUnavailable", err)
	}
	if p.Latest() != first {
		t.Error("latest frame changed on skipped tick")
	}
	if disp.count() != 1 {
		t.Errorf("display got %d frames, want 1", disp.count())
	}
}

func TestPipeline_DetectorErrorSkipsTick(t *testing.T) {
	det := &fakeDetector{err: errors.New("boom")}
	p, _, _, disp := newTestPipeline(det)

	if _, err := p.Tick(); err == nil {
		t.Fatal("expected error")
	}
	if p.Latest() != nil || disp.count() != 0 {
		t.Error("failed detection should not publish a frame")
	}
}

func TestPipeline_NoSource(t *testing.T) {
	p := NewPipeline(DefaultConfig(), nil, nil, zone.NewManager(), nil, nil)
	if _, err := p.Tick(); !errors.Is(err, camera.ErrNotOpen) {
		t.Errorf("got %v, want ErrNotOpen", err)
	}
}

func TestPipeline_Run(t *testing.T) {
	det := &fakeDetector{}
	p, _, _, disp := newTestPipeline(det)
	p.config.FrameInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for disp.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d frames after 2s", disp.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPipeline_SetFrameInterval(t *testing.T) {
	det := &fakeDetector{}
	p, _, _, disp := newTestPipeline(det)
	p.SetFrameInterval(time.Millisecond)
	p.SetFrameInterval(0)
	if got := p.FrameInterval(); got != time.Millisecond {
		t.Fatalf("FrameInterval: got %v, want 1ms", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	deadline := time.After(2 * time.Second)
	for disp.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d frames after 2s", disp.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// The loop slows down after its next tick
	p.SetFrameInterval(time.Hour)
	time.Sleep(50 * time.Millisecond)
	n := disp.count()
	time.Sleep(50 * time.Millisecond)
	if got := disp.count(); got != n {
		t.Errorf("frames kept arriving after the interval changed: %d -> %d", n, got)
	}
}
