// Package device captures frames from local cameras with OpenCV.
package device

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/smartcam/pkg/camera"
	"github.com/teslashibe/smartcam/pkg/debug"
	"github.com/teslashibe/smartcam/pkg/raster"
)

// Capture is an open OpenCV capture device.
type Capture struct {
	cap    *gocv.VideoCapture
	img    gocv.Mat
	info   camera.Device
	mirror bool
	mu     sync.Mutex
}

// Open opens the device named by cfg and requests its resolution and rate.
// It satisfies camera.Opener.
func Open(cfg camera.Config) (camera.Source, error) {
	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", camera.ErrNoDevice, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: index %d", camera.ErrNoDevice, cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))

	return &Capture{
		cap:    vc,
		img:    gocv.NewMat(),
		info:   describe(cfg.Device, vc),
		mirror: cfg.Mirror,
	}, nil
}

// Frame reads the next frame as a byte-unit RGB buffer.
func (c *Capture) Frame() (*raster.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ok := c.cap.Read(&c.img); !ok || c.img.Empty() {
		return nil, camera.ErrFrameUnavailable
	}
	if c.mirror {
		gocv.Flip(c.img, &c.img, 1)
	}
	if c.img.Channels() != 3 {
		debug.FrameLog("camera %d: unexpected %d-channel frame\n", c.info.ID, c.img.Channels())
		return nil, camera.ErrFrameUnavailable
	}

	return raster.NewBufferFromBGR(c.img.Cols(), c.img.Rows(), c.img.ToBytes()), nil
}

// Info reports the negotiated device properties.
func (c *Capture) Info() camera.Device {
	return c.info
}

// Close releases the device.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.img.Close()
	return c.cap.Close()
}

// Probe tries device indices 0 through camera.MaxDevices-1 and reports the
// ones that open. It satisfies camera.Prober.
func Probe() []camera.Device {
	var found []camera.Device
	for i := 0; i < camera.MaxDevices; i++ {
		vc, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if vc.IsOpened() {
			found = append(found, describe(i, vc))
		}
		vc.Close()
	}
	return found
}

func describe(id int, vc *gocv.VideoCapture) camera.Device {
	return camera.Device{
		ID:     id,
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    vc.Get(gocv.VideoCaptureFPS),
	}
}

// EncodeJPEG encodes buf for the console stream at the given quality.
func EncodeJPEG(buf *raster.Buffer, quality int) ([]byte, error) {
	img, err := gocv.NewMatFromBytes(buf.Height(), buf.Width(), gocv.MatTypeCV8UC3, buf.BGR())
	if err != nil {
		return nil, fmt.Errorf("frame to mat: %w", err)
	}
	defer img.Close()

	nb, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer nb.Close()

	// GetBytes aliases native memory freed by Close
	out := make([]byte, nb.Len())
	copy(out, nb.GetBytes())
	return out, nil
}
