package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/zone"
)

func workedStore() *zone.Store {
	s := zone.NewStore(640, 480)
	s.Zones["0"] = &zone.Zone{Key: "0", Center: zone.Point{X: 100, Y: 100}, Size: 40, Tolerance: 1, AssignedID: "0", Line: zone.L1}
	s.Zones["1"] = &zone.Zone{Key: "1", Center: zone.Point{X: 300, Y: 100}, Size: 40, Tolerance: 1, AssignedID: "1", Line: zone.L1}
	return s
}

func TestEncode_WorkedExample(t *testing.T) {
	s := workedStore()

	occ := tracking.Occupancy{"0": {Occupied: true, MarkerID: 5}, "1": {}}
	assert.Equal(t, "5", Encode(s, occ, zone.L1))

	none := tracking.Occupancy{"0": {}, "1": {}}
	assert.Equal(t, "0", Encode(s, none, zone.L1))
}

func TestEncode_KeyOrder(t *testing.T) {
	s := workedStore()
	s.Zones["10"] = &zone.Zone{Key: "10", Size: 40, Tolerance: 1, Line: zone.L1}
	s.Zones["2"] = &zone.Zone{Key: "2", Size: 40, Tolerance: 1, Line: zone.L1}

	occ := tracking.Occupancy{
		"0":  {Occupied: true, MarkerID: 7},
		"1":  {Occupied: true, MarkerID: 3},
		"2":  {Occupied: true, MarkerID: 11},
		"10": {Occupied: true, MarkerID: 1},
	}
	assert.Equal(t, "7,3,11,1", Encode(s, occ, zone.L1))
}

func TestEncode_UnattachedLine(t *testing.T) {
	s := workedStore()
	occ := tracking.Occupancy{"0": {Occupied: true, MarkerID: 5}}

	assert.Equal(t, "0", Encode(s, occ, zone.L4))
	assert.Equal(t, "0", Encode(zone.NewStore(0, 0), nil, zone.L1))
}

func TestEncode_Deterministic(t *testing.T) {
	s := workedStore()
	s.Zones["1"].Line = zone.L2
	occ := tracking.Occupancy{"0": {Occupied: true, MarkerID: 5}, "1": {Occupied: true, MarkerID: 6}}

	first := Compose("228", s, occ)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Compose("228", s, occ))
	}
}

func TestCompose(t *testing.T) {
	s := workedStore()
	s.Zones["1"].Line = zone.L6
	occ := tracking.Occupancy{"0": {Occupied: true, MarkerID: 5}, "1": {Occupied: true, MarkerID: 12}}

	assert.Equal(t, "C:228:0:5:0:0:0:0:12#", Compose("228", s, occ))
	assert.Equal(t, "C:228:0:0:0:0:0:0:0#", Compose("228", zone.NewStore(0, 0), nil))
}

func TestFields(t *testing.T) {
	fields := Fields(workedStore(), tracking.Occupancy{"1": {Occupied: true, MarkerID: 9}})
	assert.Equal(t, []string{"9", "0", "0", "0", "0", "0"}, fields)
}

func TestDeviceFromIP(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"192.168.1.228", "228"},
		{" 10.0.0.7 ", "7"},
		{"::1", "0"},
		{"localhost", "0"},
		{"", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.ip, func(t *testing.T) {
			assert.Equal(t, tc.want, DeviceFromIP(tc.ip))
		})
	}
}
