package zone

import "math"

// Point is a 2-D position in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Marker is one fiducial detected in a frame. Corners keep the order the
// detector returned them in; calibration sizing depends on that order.
type Marker struct {
	ID      int      `json:"id"`
	Corners [4]Point `json:"corners"`
	Center  Point    `json:"center"`
}

// CornerCenter returns the mean of the four corners.
func CornerCenter(corners [4]Point) Point {
	var c Point
	for _, p := range corners {
		c.X += p.X
		c.Y += p.Y
	}
	return Point{X: c.X / 4, Y: c.Y / 4}
}

// MarkerSize returns the calibrated size for a marker:
// round(sqrt(|P0P1|² + |P1P2|²)) over the first three corners.
func MarkerSize(corners [4]Point) int {
	a := corners[0].Dist(corners[1])
	b := corners[1].Dist(corners[2])
	return int(math.Round(math.Sqrt(a*a + b*b)))
}

// PointInCircle reports whether p lies inside or on the circle.
func PointInCircle(center Point, radius float64, p Point) bool {
	dx := p.X - center.X
	dy := p.Y - center.Y
	return dx*dx+dy*dy <= radius*radius
}
