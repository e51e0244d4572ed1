package zone

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square returns a marker with an axis-aligned square of the given side
// centered on (cx, cy), corners clockwise from top-left.
func square(id int, cx, cy, side float64) Marker {
	h := side / 2
	corners := [4]Point{
		{cx - h, cy - h},
		{cx + h, cy - h},
		{cx + h, cy + h},
		{cx - h, cy + h},
	}
	return Marker{ID: id, Corners: corners, Center: CornerCenter(corners)}
}

func calibrated(t *testing.T) *Store {
	t.Helper()
	s, err := Calibrate([]Marker{
		square(7, 100, 100, 20),
		square(9, 300, 100, 20),
		square(3, 200, 300, 30),
	}, 1.0, 640, 480)
	require.NoError(t, err)
	return s
}

func TestMarkerSize(t *testing.T) {
	tests := []struct {
		name    string
		corners [4]Point
		want    int
	}{
		{"square side 20", square(0, 50, 50, 20).Corners, 28},
		{"3-4 edges", [4]Point{{0, 0}, {3, 0}, {3, 4}, {0, 4}}, 5},
		{"degenerate", [4]Point{}, 0},
		{"uses only first three corners", [4]Point{{0, 0}, {6, 0}, {6, 8}, {1000, 1000}}, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MarkerSize(tc.corners))
		})
	}
}

func TestCornerCenter(t *testing.T) {
	c := CornerCenter([4]Point{{0, 0}, {4, 0}, {4, 2}, {0, 2}})
	assert.Equal(t, Point{2, 1}, c)
}

func TestPointInCircle_BoundaryIsInside(t *testing.T) {
	center := Point{10, 10}
	assert.True(t, PointInCircle(center, 5, Point{15, 10}))
	assert.True(t, PointInCircle(center, 5, Point{13, 14}))
	assert.False(t, PointInCircle(center, 5, Point{15.001, 10}))
	assert.True(t, PointInCircle(center, 0, center))
}

func TestCalibrate(t *testing.T) {
	s := calibrated(t)

	assert.Equal(t, 640, s.Width)
	assert.Equal(t, 480, s.Height)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"0", "1", "2"}, s.Keys())

	z := s.Zones["2"]
	assert.Equal(t, "2", z.Key)
	assert.Equal(t, "2", z.AssignedID)
	assert.Equal(t, Point{200, 300}, z.Center)
	assert.Equal(t, 42, z.Size)
	assert.Equal(t, 1.0, z.Tolerance)
	assert.Equal(t, LineNone, z.Line)
	assert.InDelta(t, 21.0, z.Radius(), 1e-9)
}

func TestCalibrate_Failures(t *testing.T) {
	_, err := Calibrate(nil, 1, 640, 480)
	assert.ErrorIs(t, err, ErrNoMarkers)

	_, err = Calibrate([]Marker{square(1, 0, 0, 10)}, 0, 640, 480)
	assert.ErrorIs(t, err, ErrInvalidTolerance)
}

func TestKeys_NumericOrder(t *testing.T) {
	markers := make([]Marker, 12)
	for i := range markers {
		markers[i] = square(i, float64(i*10), 0, 4)
	}
	s, err := Calibrate(markers, 1, 100, 100)
	require.NoError(t, err)
	s.Zones["extra"] = &Zone{Key: "extra", Tolerance: 1}

	keys := s.Keys()
	assert.Equal(t, "0", keys[0])
	assert.Equal(t, "2", keys[2])
	assert.Equal(t, "10", keys[10])
	assert.Equal(t, "11", keys[11])
	assert.Equal(t, "extra", keys[12])
}

func TestKeys_ExtremeIntegers(t *testing.T) {
	s := NewStore(10, 10)
	for _, k := range []string{"9223372036854775807", "-9223372036854775808", "0", "1", "-1"} {
		s.Zones[k] = &Zone{Key: k, Tolerance: 1}
	}
	assert.Equal(t, []string{"-9223372036854775808", "-1", "0", "1", "9223372036854775807"}, s.Keys())
}

func TestReassign_IsPureLabelSwap(t *testing.T) {
	s := calibrated(t)
	before := s.Clone()

	require.NoError(t, s.Reassign("0", "2"))
	assert.Equal(t, "2", s.Zones["0"].AssignedID)
	assert.Equal(t, "0", s.Zones["2"].AssignedID)
	for k, z := range s.Zones {
		assert.Equal(t, before.Zones[k].Key, z.Key)
		assert.Equal(t, before.Zones[k].Center, z.Center)
		assert.Equal(t, before.Zones[k].Size, z.Size)
	}

	require.NoError(t, s.Reassign("0", "2"))
	assert.Equal(t, before, s)
}

func TestReassign_UnknownZone(t *testing.T) {
	s := calibrated(t)
	before := s.Clone()

	err := s.Reassign("0", "99")
	assert.ErrorIs(t, err, ErrUnknownZone)
	err = s.Reassign("nope", "1")
	assert.ErrorIs(t, err, ErrUnknownZone)
	assert.Equal(t, before, s)
}

func TestReassign_SameZone(t *testing.T) {
	s := calibrated(t)
	require.NoError(t, s.Reassign("1", "1"))
	assert.Equal(t, "1", s.Zones["1"].AssignedID)
}

func TestAttachLine(t *testing.T) {
	s := calibrated(t)

	require.NoError(t, s.AttachLine("1", L3))
	assert.Equal(t, L3, s.Zones["1"].Line)

	require.NoError(t, s.AttachLine("1", LineNone))
	assert.Equal(t, LineNone, s.Zones["1"].Line)

	assert.ErrorIs(t, s.AttachLine("1", Line("L9")), ErrInvalidLine)
	assert.ErrorIs(t, s.AttachLine("42", L1), ErrUnknownZone)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		in      string
		want    Line
		wantErr bool
	}{
		{"L1", L1, false},
		{"l6", L6, false},
		{" L2 ", L2, false},
		{"", LineNone, false},
		{"none", LineNone, false},
		{"L0", LineNone, true},
		{"L7", LineNone, true},
		{"x", LineNone, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLine(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUpdateTolerance(t *testing.T) {
	s := calibrated(t)
	require.NoError(t, s.SetZoneTolerance("0", 3))

	require.NoError(t, s.UpdateTolerance(1.5))
	once := s.Clone()
	require.NoError(t, s.UpdateTolerance(1.5))
	assert.Equal(t, once, s)

	for _, z := range s.Zones {
		assert.Equal(t, 1.5, z.Tolerance)
	}
	assert.Equal(t, 28, s.Zones["0"].Size, "size is never recomputed")
}

func TestUpdateTolerance_Failures(t *testing.T) {
	empty := NewStore(640, 480)
	assert.ErrorIs(t, empty.UpdateTolerance(2), ErrEmptyStore)

	s := calibrated(t)
	before := s.Clone()
	assert.ErrorIs(t, s.UpdateTolerance(-1), ErrInvalidTolerance)
	assert.Equal(t, before, s)
}

func TestSetZoneTolerance(t *testing.T) {
	s := calibrated(t)
	require.NoError(t, s.SetZoneTolerance("1", 2))
	assert.Equal(t, 2.0, s.Zones["1"].Tolerance)
	assert.Equal(t, 1.0, s.Zones["0"].Tolerance)
	assert.InDelta(t, 28.0, s.Zones["1"].Radius(), 1e-9)

	assert.ErrorIs(t, s.SetZoneTolerance("9", 2), ErrUnknownZone)
	assert.ErrorIs(t, s.SetZoneTolerance("1", 0), ErrInvalidTolerance)
}

func TestReset(t *testing.T) {
	s := calibrated(t)
	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 640, s.Width)
}

func TestClone_IsDeep(t *testing.T) {
	s := calibrated(t)
	c := s.Clone()
	c.Zones["0"].AssignedID = "changed"
	assert.Equal(t, "0", s.Zones["0"].AssignedID)
}

func TestOnLine(t *testing.T) {
	s := calibrated(t)
	require.NoError(t, s.AttachLine("2", L1))
	require.NoError(t, s.AttachLine("0", L1))

	got := s.OnLine(L1)
	require.Len(t, got, 2)
	assert.Equal(t, "0", got[0].Key)
	assert.Equal(t, "2", got[1].Key)
	assert.Empty(t, s.OnLine(L4))
}

func TestDocumentError_Is(t *testing.T) {
	err := &DocumentError{Key: "3", Err: ErrInvalidTolerance}
	assert.True(t, errors.Is(err, ErrInvalidDocument))
	assert.True(t, errors.Is(err, ErrInvalidTolerance))
	assert.Contains(t, err.Error(), `"3"`)
}
