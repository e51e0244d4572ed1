// markergen writes a printable marker image.
//
//	markergen -dict 6x6_250 -id 3 -size 200 -o marker_3.png
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gocv.io/x/gocv"

	"github.com/teslashibe/smartcam/pkg/tracking/detection"
	"github.com/teslashibe/smartcam/pkg/tracking/detection/aruco"
)

func main() {
	dict := flag.String("dict", detection.DefaultDictionary, "Marker dictionary ("+strings.Join(detection.Dictionaries(), ", ")+")")
	id := flag.Int("id", 0, "Marker id within the dictionary")
	size := flag.Int("size", 200, "Image side in pixels")
	border := flag.Int("border", 1, "Border width in marker bits")
	out := flag.String("o", "", "Output image path (default marker_<id>.png)")
	flag.Parse()

	path := *out
	if path == "" {
		path = fmt.Sprintf("marker_%d.png", *id)
	}

	img, err := aruco.GenerateMarker(*dict, *id, *size, *border)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer img.Close()

	if !gocv.IMWrite(path, img) {
		fmt.Fprintf(os.Stderr, "❌ failed to write %s\n", path)
		os.Exit(1)
	}
	fmt.Printf("✅ %s marker %d (%dpx) written to %s\n", *dict, *id, *size, path)
}
