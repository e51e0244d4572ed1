package web

import (
	"github.com/teslashibe/smartcam/pkg/camera"
	"github.com/teslashibe/smartcam/pkg/packet"
	"github.com/teslashibe/smartcam/pkg/tracking/detection"
)

// Event types pushed on /ws/status
const (
	EventStatus = "status"
	EventPacket = "packet"
)

// Event is one message on the status feed
type Event struct {
	Type   string  `json:"type"`
	Status *Status `json:"status,omitempty"`
	Record string  `json:"record,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Status summarizes the console state
type Status struct {
	Camera        CameraStatus    `json:"camera"`
	Scanning      bool            `json:"scanning"`
	Dictionary    string          `json:"dictionary"`
	ZoneCount     int             `json:"zone_count"`
	Revision      string          `json:"revision"`
	Occupied      int             `json:"occupied"`
	Markers       int             `json:"markers"`
	Detection     detection.Stats `json:"detection"`
	DetectionRate float64         `json:"detection_rate"`
	Tolerance     float64         `json:"tolerance"`
	Packet        PacketStatus    `json:"packet"`
}

// CameraStatus describes the selected camera
type CameraStatus struct {
	Running bool          `json:"running"`
	Config  camera.Config `json:"config"`
	Device  camera.Device `json:"device"`
}

// PacketStatus describes packet output
type PacketStatus struct {
	Enabled     bool         `json:"enabled"`
	Destination string       `json:"destination"`
	Target      Target       `json:"target"`
	Record      string       `json:"record"`
	Stats       packet.Stats `json:"stats"`
}

func (s *Server) status() *Status {
	st := &Status{Dictionary: s.opts.Dictionary}

	if cam := s.opts.Camera; cam != nil {
		st.Camera.Config = cam.GetConfig()
		st.Camera.Device, st.Camera.Running = cam.Info()
	}

	if p := s.opts.Pipeline; p != nil {
		st.Scanning = p.Scanning()
		st.ZoneCount = p.Zones().Len()
		st.Revision = p.Zones().Revision()
		store, occ := p.Current()
		st.Occupied = occ.Count()
		if f := p.Latest(); f != nil {
			st.Markers = len(f.Markers)
		}
		if snd := s.opts.Sender; snd != nil {
			st.Packet.Record = packet.Compose(snd.Device(), store, occ)
		}
	}

	if d := s.opts.Detection; d != nil {
		st.Detection = d.Stats()
		st.DetectionRate = st.Detection.Rate()
	}

	if snd := s.opts.Sender; snd != nil {
		st.Packet.Enabled = snd.Enabled()
		st.Packet.Destination = snd.Destination()
		st.Packet.Stats = snd.Stats()
	}

	s.mu.Lock()
	st.Packet.Target = s.target
	st.Tolerance = s.tolerance
	s.mu.Unlock()

	return st
}
