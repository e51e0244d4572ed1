package tracking

import "github.com/teslashibe/smartcam/pkg/zone"

// Occupant is one zone's occupancy for a single frame. MarkerID is only
// meaningful when Occupied is true.
type Occupant struct {
	Occupied bool `json:"occupied"`
	MarkerID int  `json:"marker_id"`
}

// Occupancy maps zone key to its occupant. It is computed fresh every
// frame and never retained across frames.
type Occupancy map[string]Occupant

// Marker returns the id of the marker occupying key.
func (o Occupancy) Marker(key string) (int, bool) {
	occ, ok := o[key]
	if !ok || !occ.Occupied {
		return 0, false
	}
	return occ.MarkerID, true
}

// Count returns the number of occupied zones.
func (o Occupancy) Count() int {
	n := 0
	for _, occ := range o {
		if occ.Occupied {
			n++
		}
	}
	return n
}

// Evaluate tests every marker center against every zone. The first marker
// in list order whose center lies inside or on a zone's effective circle
// occupies it; distance plays no part in choosing between candidates.
func Evaluate(store *zone.Store, markers []zone.Marker) Occupancy {
	occ := make(Occupancy, len(store.Zones))
	for key, z := range store.Zones {
		occ[key] = Occupant{}
		for _, m := range markers {
			if z.Contains(m.Center) {
				occ[key] = Occupant{Occupied: true, MarkerID: m.ID}
				break
			}
		}
	}
	return occ
}
