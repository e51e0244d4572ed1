// Package packet builds the per-line occupancy record sent to downstream
// hardware and delivers it over UDP or a serial port.
package packet

import (
	"net"
	"strconv"
	"strings"

	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// Record framing. The downstream parser depends on these exactly.
const (
	Prefix    = "C"
	Reserved  = "0"
	FieldSep  = ":"
	Separator = ","
	Empty     = "0"
	End       = "#"
)

// Encode returns the field for line: the ids of markers occupying zones
// attached to line, in key order, joined by Separator. When no attached
// zone is occupied the field is Empty.
func Encode(store *zone.Store, occ tracking.Occupancy, line zone.Line) string {
	var ids []string
	for _, z := range store.OnLine(line) {
		if id, ok := occ.Marker(z.Key); ok {
			ids = append(ids, strconv.Itoa(id))
		}
	}
	if len(ids) == 0 {
		return Empty
	}
	return strings.Join(ids, Separator)
}

// Fields returns the encoded field of every output line, L1 first.
func Fields(store *zone.Store, occ tracking.Occupancy) []string {
	lines := zone.Lines()
	fields := make([]string, len(lines))
	for i, line := range lines {
		fields[i] = Encode(store, occ, line)
	}
	return fields
}

// Compose builds the full record C:<device>:0:<L1>:...:<L6>#.
func Compose(device string, store *zone.Store, occ tracking.Occupancy) string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(FieldSep)
	b.WriteString(device)
	b.WriteString(FieldSep)
	b.WriteString(Reserved)
	for _, f := range Fields(store, occ) {
		b.WriteString(FieldSep)
		b.WriteString(f)
	}
	b.WriteString(End)
	return b.String()
}

// DeviceFromIP returns the last octet of an IPv4 address, which is the
// default device field. Anything else yields "0".
func DeviceFromIP(ip string) string {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return "0"
	}
	v4 := addr.To4()
	if v4 == nil {
		return "0"
	}
	return strconv.Itoa(int(v4[3]))
}
