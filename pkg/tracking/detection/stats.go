package detection

import (
	"sync"

	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// Stats is a snapshot of detection counters.
type Stats struct {
	TotalFrames    int `json:"total_frames"`
	DetectedFrames int `json:"detected_frames"`
	TotalMarkers   int `json:"total_markers"`
}

// Rate returns the percentage of frames with at least one marker.
func (s Stats) Rate() float64 {
	if s.TotalFrames == 0 {
		return 0
	}
	return float64(s.DetectedFrames) / float64(s.TotalFrames) * 100
}

// Counting wraps a Detector and keeps detection statistics.
type Counting struct {
	Detector

	mu    sync.Mutex
	stats Stats
}

// WithStats wraps d with statistics counters.
func WithStats(d Detector) *Counting {
	return &Counting{Detector: d}
}

// Detect runs the wrapped detector and updates the counters. Failed
// detections are not counted.
func (c *Counting) Detect(frame *raster.Buffer) ([]zone.Marker, error) {
	markers, err := c.Detector.Detect(frame)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.stats.TotalFrames++
	if len(markers) > 0 {
		c.stats.DetectedFrames++
		c.stats.TotalMarkers += len(markers)
	}
	c.mu.Unlock()

	return markers, nil
}

// Stats returns the current counters.
func (c *Counting) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResetStats zeroes the counters.
func (c *Counting) ResetStats() {
	c.mu.Lock()
	c.stats = Stats{}
	c.mu.Unlock()
}
