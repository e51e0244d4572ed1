// Package tracking evaluates zone occupancy and runs the frame-driven loop
// that ties the camera, the marker detector, the zone store and the
// visualizer together.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/smartcam/internal/log"
	"github.com/teslashibe/smartcam/pkg/camera"
	"github.com/teslashibe/smartcam/pkg/debug"
	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/tracking/detection"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// ErrNoMarkers is returned when an operation needs detected markers and the
// latest frame has none.
var ErrNoMarkers = errors.New("no markers detected")

// FrameSource interface for capturing frames
type FrameSource interface {
	Frame() (*raster.Buffer, error)
}

// Visualizer draws zone state onto a frame
type Visualizer interface {
	Draw(buf *raster.Buffer, store *zone.Store, occ Occupancy)
}

// Display receives every processed frame
type Display interface {
	ShowFrame(f *Frame)
}

// Frame is the result of one tick.
type Frame struct {
	Seq       uint64
	Time      time.Time
	Image     *raster.Buffer
	Width     int
	Height    int
	Scanned   bool
	Markers   []zone.Marker
	Occupancy Occupancy
}

// Pipeline owns the application state the frame loop works on.
type Pipeline struct {
	config     Config
	source     FrameSource
	detector   detection.Detector
	zones      *zone.Manager
	visualizer Visualizer
	display    Display

	// State
	mu       sync.RWMutex
	scanning bool
	latest   *Frame
	seq      uint64
	misses   int
}

// NewPipeline creates a frame loop. visualizer and display may be nil.
func NewPipeline(config Config, source FrameSource, detector detection.Detector, zones *zone.Manager, visualizer Visualizer, display Display) *Pipeline {
	return &Pipeline{
		config:     config,
		source:     source,
		detector:   detector,
		zones:      zones,
		visualizer: visualizer,
		display:    display,
		scanning:   config.ScanOnStart,
	}
}

// SetDisplay sets the frame consumer. Call it before Run.
func (p *Pipeline) SetDisplay(d Display) {
	p.display = d
}

// Zones returns the zone manager
func (p *Pipeline) Zones() *zone.Manager {
	return p.zones
}

// SetScanning turns marker detection on or off.
func (p *Pipeline) SetScanning(on bool) {
	p.mu.Lock()
	p.scanning = on
	p.mu.Unlock()
	log.Info("scanning", "enabled", on)
}

// Scanning reports whether marker detection runs each tick.
func (p *Pipeline) Scanning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scanning
}

// Latest returns the most recent processed frame, or nil before the first.
func (p *Pipeline) Latest() *Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Current returns a copy of the zone store with occupancy evaluated against
// the latest frame's markers.
func (p *Pipeline) Current() (*zone.Store, Occupancy) {
	store := p.zones.Snapshot()
	var markers []zone.Marker
	if f := p.Latest(); f != nil {
		markers = f.Markers
	}
	return store, Evaluate(store, markers)
}

// Tick pulls one frame and processes it. An unavailable frame skips the
// tick and leaves all state untouched.
func (p *Pipeline) Tick() (*Frame, error) {
	if p.source == nil {
		return nil, camera.ErrNotOpen
	}
	buf, err := p.source.Frame()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	scanning := p.scanning
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	frame := &Frame{
		Seq:     seq,
		Time:    time.Now(),
		Image:   buf,
		Width:   buf.Width(),
		Height:  buf.Height(),
		Scanned: scanning,
	}

	if scanning && p.detector != nil {
		markers, err := p.detector.Detect(buf)
		if err != nil {
			return nil, fmt.Errorf("detect markers: %w", err)
		}
		frame.Markers = markers
	}

	p.zones.View(func(s *zone.Store) {
		frame.Occupancy = Evaluate(s, frame.Markers)
		if p.visualizer != nil {
			p.visualizer.Draw(buf, s, frame.Occupancy)
		}
	})

	if len(frame.Markers) > 0 {
		debug.FrameLog("frame %d: %d marker(s), %d zone(s) occupied\n",
			seq, len(frame.Markers), frame.Occupancy.Count())
	}

	p.mu.Lock()
	p.latest = frame
	p.mu.Unlock()

	if p.display != nil {
		p.display.ShowFrame(frame)
	}
	return frame, nil
}

// Calibrate replaces every zone with one zone per marker detected in the
// latest frame, using that frame's dimensions.
func (p *Pipeline) Calibrate(tolerance float64) error {
	latest := p.Latest()
	if latest == nil || len(latest.Markers) == 0 {
		return ErrNoMarkers
	}
	if err := p.zones.Calibrate(latest.Markers, tolerance, latest.Width, latest.Height); err != nil {
		return err
	}
	log.Info("calibrated", "zones", len(latest.Markers), "tolerance", tolerance,
		"width", latest.Width, "height", latest.Height)
	return nil
}

// SetFrameInterval changes the tick period. A running loop picks it up on
// its next tick. Non-positive values are ignored.
func (p *Pipeline) SetFrameInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.config.FrameInterval = d
	p.mu.Unlock()
}

// FrameInterval returns the tick period.
func (p *Pipeline) FrameInterval() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.FrameInterval
}

// Run ticks at the configured frame interval until ctx is done.
func (p *Pipeline) Run(ctx context.Context) {
	interval := p.FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("frame loop started", "interval", interval, "scanning", p.Scanning())

	for {
		select {
		case <-ctx.Done():
			log.Info("frame loop stopped")
			return

		case <-ticker.C:
			p.handle(p.Tick())
			if next := p.FrameInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
				log.Info("frame interval changed", "interval", interval)
			}
		}
	}
}

func (p *Pipeline) handle(_ *Frame, err error) {
	switch {
	case err == nil:
		p.misses = 0
	case errors.Is(err, camera.ErrNotOpen):
		// Camera stopped; nothing to do until it is started again
	case errors.Is(err, camera.ErrFrameUnavailable):
		p.misses++
		if p.config.MissLogEvery > 0 && p.misses%p.config.MissLogEvery == 0 {
			log.Warn("camera frames unavailable", "consecutive", p.misses)
		}
	default:
		log.Warn("frame skipped", "error", err)
	}
}
