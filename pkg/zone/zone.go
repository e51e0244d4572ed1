// Package zone holds the calibrated zone state: circular regions placed over
// detected marker positions, their display labels and output line
// attachments, and the calibration document they are saved as.
package zone

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Line is an output line label. The zero value means "not attached".
type Line string

// Output lines.
const (
	LineNone Line = ""
	L1       Line = "L1"
	L2       Line = "L2"
	L3       Line = "L3"
	L4       Line = "L4"
	L5       Line = "L5"
	L6       Line = "L6"
)

// Lines returns the output lines in wire order.
func Lines() []Line {
	return []Line{L1, L2, L3, L4, L5, L6}
}

// ParseLine accepts "L1".."L6" in any case, and "" or "none" for no line.
func ParseLine(s string) (Line, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return LineNone, nil
	}
	l := Line(strings.ToUpper(s))
	if slices.Contains(Lines(), l) {
		return l, nil
	}
	return LineNone, fmt.Errorf("%w: %q", ErrInvalidLine, s)
}

// Zone is a calibrated circular region. Size is fixed at calibration;
// Tolerance, AssignedID and Line may change afterward.
type Zone struct {
	Key        string  `json:"key"`
	Center     Point   `json:"center"`
	Size       int     `json:"size"`
	Tolerance  float64 `json:"tolerance"`
	AssignedID string  `json:"id"`
	Line       Line    `json:"line_attachment"`
}

// Radius returns the effective hit-test radius, size/2 * tolerance.
func (z *Zone) Radius() float64 {
	return float64(z.Size) / 2 * z.Tolerance
}

// Contains reports whether p is inside or on the zone's effective circle.
func (z *Zone) Contains(p Point) bool {
	return PointInCircle(z.Center, z.Radius(), p)
}

// Store is the full calibration state for one camera frame size.
// A Store is not safe for concurrent use; share it through a Manager.
type Store struct {
	Width  int
	Height int
	Zones  map[string]*Zone
}

// NewStore returns an empty store for the given frame size.
func NewStore(width, height int) *Store {
	return &Store{Width: width, Height: height, Zones: make(map[string]*Zone)}
}

// Calibrate builds a new store with one zone per marker, keyed by the
// marker's position in the list.
func Calibrate(markers []Marker, tolerance float64, width, height int) (*Store, error) {
	if len(markers) == 0 {
		return nil, ErrNoMarkers
	}
	if tolerance <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTolerance, tolerance)
	}

	s := NewStore(width, height)
	for i, m := range markers {
		key := strconv.Itoa(i)
		s.Zones[key] = &Zone{
			Key:        key,
			Center:     m.Center,
			Size:       MarkerSize(m.Corners),
			Tolerance:  tolerance,
			AssignedID: key,
		}
	}
	return s, nil
}

// Len returns the number of zones.
func (s *Store) Len() int {
	return len(s.Zones)
}

// Get returns the zone for key.
func (s *Store) Get(key string) (*Zone, error) {
	z, ok := s.Zones[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, key)
	}
	return z, nil
}

// Keys returns zone keys in iteration order: integer keys ascending, then
// any other keys lexically.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.Zones))
	for k := range s.Zones {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return cmp.Compare(ai, bi)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// Reassign swaps the display labels of two zones. Keys, centers and sizes
// are never touched.
func (s *Store) Reassign(keyA, keyB string) error {
	a, err := s.Get(keyA)
	if err != nil {
		return err
	}
	b, err := s.Get(keyB)
	if err != nil {
		return err
	}
	a.AssignedID, b.AssignedID = b.AssignedID, a.AssignedID
	return nil
}

// AttachLine sets the output line for a zone. LineNone detaches it.
func (s *Store) AttachLine(key string, line Line) error {
	if line != LineNone && !slices.Contains(Lines(), line) {
		return fmt.Errorf("%w: %q", ErrInvalidLine, line)
	}
	z, err := s.Get(key)
	if err != nil {
		return err
	}
	z.Line = line
	return nil
}

// UpdateTolerance sets the same tolerance on every zone.
func (s *Store) UpdateTolerance(tolerance float64) error {
	if len(s.Zones) == 0 {
		return ErrEmptyStore
	}
	if tolerance <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, tolerance)
	}
	for _, z := range s.Zones {
		z.Tolerance = tolerance
	}
	return nil
}

// SetZoneTolerance sets the tolerance of a single zone.
func (s *Store) SetZoneTolerance(key string, tolerance float64) error {
	if tolerance <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, tolerance)
	}
	z, err := s.Get(key)
	if err != nil {
		return err
	}
	z.Tolerance = tolerance
	return nil
}

// Reset removes every zone. Frame dimensions are kept.
func (s *Store) Reset() {
	s.Zones = make(map[string]*Zone)
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := NewStore(s.Width, s.Height)
	for k, z := range s.Zones {
		zz := *z
		c.Zones[k] = &zz
	}
	return c
}

// OnLine returns the zones attached to line, in key order.
func (s *Store) OnLine(line Line) []*Zone {
	var out []*Zone
	for _, k := range s.Keys() {
		if z := s.Zones[k]; z.Line == line {
			out = append(out, z)
		}
	}
	return out
}
