// Package aruco implements detection.Detector with OpenCV's ArUco module.
package aruco

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/smartcam/pkg/debug"
	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/tracking/detection"
	"github.com/teslashibe/smartcam/pkg/zone"
)

var dictionaryCodes = map[string]gocv.ArucoDictionaryCode{
	"4x4_50":         gocv.ArucoDict4x4_50,
	"4x4_100":        gocv.ArucoDict4x4_100,
	"4x4_250":        gocv.ArucoDict4x4_250,
	"4x4_1000":       gocv.ArucoDict4x4_1000,
	"5x5_50":         gocv.ArucoDict5x5_50,
	"5x5_100":        gocv.ArucoDict5x5_100,
	"5x5_250":        gocv.ArucoDict5x5_250,
	"5x5_1000":       gocv.ArucoDict5x5_1000,
	"6x6_50":         gocv.ArucoDict6x6_50,
	"6x6_100":        gocv.ArucoDict6x6_100,
	"6x6_250":        gocv.ArucoDict6x6_250,
	"6x6_1000":       gocv.ArucoDict6x6_1000,
	"7x7_50":         gocv.ArucoDict7x7_50,
	"7x7_100":        gocv.ArucoDict7x7_100,
	"7x7_250":        gocv.ArucoDict7x7_250,
	"7x7_1000":       gocv.ArucoDict7x7_1000,
	"aruco_original": gocv.ArucoDictArucoOriginal,
	"april_16h5":     gocv.ArucoDictAprilTag_16h5,
	"april_25h9":     gocv.ArucoDictAprilTag_25h9,
	"april_36h10":    gocv.ArucoDictAprilTag_36h10,
	"april_36h11":    gocv.ArucoDictAprilTag_36h11,
}

// DictionaryCode resolves a dictionary name to its OpenCV code.
func DictionaryCode(name string) (gocv.ArucoDictionaryCode, error) {
	if err := detection.ValidateDictionary(name); err != nil {
		return 0, err
	}
	return dictionaryCodes[name], nil
}

// Detector finds ArUco and AprilTag markers.
type Detector struct {
	detector gocv.ArucoDetector
	config   detection.Config
	mu       sync.Mutex // Protects detector
}

// New creates an ArUco detector for the configured dictionary.
func New(cfg detection.Config) (*Detector, error) {
	code, err := DictionaryCode(cfg.Dictionary)
	if err != nil {
		return nil, err
	}

	dict := gocv.GetPredefinedDictionary(code)
	params := gocv.NewArucoDetectorParameters()

	return &Detector{
		detector: gocv.NewArucoDetectorWithParams(dict, params),
		config:   cfg,
	}, nil
}

// Detect finds markers in frame. With Draw enabled the detected outlines
// and ids are written back into frame.
func (d *Detector) Detect(frame *raster.Buffer) ([]zone.Marker, error) {
	if frame == nil || frame.Width() == 0 || frame.Height() == 0 {
		return nil, fmt.Errorf("empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.NewMatFromBytes(frame.Height(), frame.Width(), gocv.MatTypeCV8UC3, frame.BGR())
	if err != nil {
		return nil, fmt.Errorf("frame to mat: %w", err)
	}
	defer img.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	corners, ids, _ := d.detector.DetectMarkers(gray)

	markers := make([]zone.Marker, 0, len(ids))
	for i, id := range ids {
		if i >= len(corners) || len(corners[i]) < 4 {
			continue
		}
		var quad [4]zone.Point
		for j := 0; j < 4; j++ {
			quad[j] = zone.Point{X: float64(corners[i][j].X), Y: float64(corners[i][j].Y)}
		}
		markers = append(markers, detection.MarkerFromCorners(id, quad))
	}

	if len(markers) > 0 {
		debug.FrameLog("aruco found %d marker(s)\n", len(markers))
		if d.config.Draw {
			gocv.ArucoDrawDetectedMarkers(img, corners, ids, gocv.NewScalar(0, 255, 0, 0))
			annotated := raster.NewBufferFromBGR(frame.Width(), frame.Height(), img.ToBytes())
			copyInto(frame, annotated)
		}
	}

	return markers, nil
}

// copyInto overwrites dst pixels with src. Both have the same size.
func copyInto(dst, src *raster.Buffer) {
	d := raster.NewDrawer(dst)
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			d.DrawPixel(x, y, src.At(x, y))
		}
	}
}

// Close releases the detector resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detector.Close()
}

// GenerateMarker renders marker id of the named dictionary as a square
// grayscale image of sizePixels with a borderBits-wide quiet border.
func GenerateMarker(dictionary string, id, sizePixels, borderBits int) (gocv.Mat, error) {
	code, err := DictionaryCode(dictionary)
	if err != nil {
		return gocv.Mat{}, err
	}
	if sizePixels <= 0 {
		return gocv.Mat{}, fmt.Errorf("marker size must be positive, got %d", sizePixels)
	}
	img := gocv.NewMat()
	gocv.ArucoGenerateImageMarker(code, id, sizePixels, img, borderBits)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("marker %d not generated for %s", id, dictionary)
	}
	return img, nil
}
