package web

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/smartcam/internal/log"
	"github.com/teslashibe/smartcam/pkg/camera"
	"github.com/teslashibe/smartcam/pkg/packet"
	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/tracking/detection"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, zone.ErrUnknownZone),
		errors.Is(err, camera.ErrNoDevice),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, zone.ErrNoMarkers),
		errors.Is(err, tracking.ErrNoMarkers),
		errors.Is(err, zone.ErrEmptyStore),
		errors.Is(err, camera.ErrNotOpen),
		errors.Is(err, packet.ErrNoDestination):
		return http.StatusConflict
	case errors.Is(err, zone.ErrInvalidTolerance),
		errors.Is(err, zone.ErrInvalidLine),
		errors.Is(err, ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, zone.ErrInvalidDocument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err under op and writes it as a JSON error
func fail(c *fiber.Ctx, op string, err error) error {
	code := errorStatus(err)
	if code >= http.StatusInternalServerError {
		log.Error("console request failed", "op", op, "error", err)
	} else {
		log.Warn("console request rejected", "op", op, "error", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// handleStatus returns the console state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

// handleDictionaries lists the supported marker dictionaries
func (s *Server) handleDictionaries(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"selected":     s.opts.Dictionary,
		"dictionaries": detection.Dictionaries(),
	})
}

// handleResetStats zeroes the detection counters
func (s *Server) handleResetStats(c *fiber.Ctx) error {
	if s.opts.Detection != nil {
		s.opts.Detection.ResetStats()
	}
	return c.JSON(fiber.Map{"success": true})
}

// --- Camera ---

// handleCameras lists openable capture devices
func (s *Server) handleCameras(c *fiber.Ctx) error {
	devices := s.opts.Camera.Devices()
	if devices == nil {
		devices = []camera.Device{}
	}
	return c.JSON(fiber.Map{
		"devices":  devices,
		"selected": s.opts.Camera.GetConfig().Device,
		"running":  s.opts.Camera.Running(),
	})
}

// handleCameraConfig returns the capture configuration
func (s *Server) handleCameraConfig(c *fiber.Ctx) error {
	return c.JSON(s.opts.Camera.GetConfigJSON())
}

// handleUpdateCameraConfig applies a partial update or a preset
func (s *Server) handleUpdateCameraConfig(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := s.opts.Camera.UpdateConfig(params); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(s.opts.Camera.GetConfigJSON())
}

// handleCameraPresets lists capture presets
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets": camera.PresetNames(),
	})
}

// SelectCameraRequest is the request body for selecting a camera
type SelectCameraRequest struct {
	Device int `json:"device"`
}

// handleSelectCamera switches capture device
func (s *Server) handleSelectCamera(c *fiber.Ctx) error {
	var req SelectCameraRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := s.opts.Camera.Select(req.Device); err != nil {
		return fail(c, "select camera", err)
	}
	s.PublishStatus()
	return c.JSON(fiber.Map{"success": true, "device": req.Device})
}

// handleStartCamera opens the selected device
func (s *Server) handleStartCamera(c *fiber.Ctx) error {
	if err := s.opts.Camera.Start(); err != nil {
		return fail(c, "start camera", err)
	}
	s.PublishStatus()
	return c.JSON(fiber.Map{"success": true, "running": true})
}

// handleStopCamera closes the running device
func (s *Server) handleStopCamera(c *fiber.Ctx) error {
	if err := s.opts.Camera.Stop(); err != nil {
		return fail(c, "stop camera", err)
	}
	s.PublishStatus()
	return c.JSON(fiber.Map{"success": true, "running": false})
}

// ScanRequest is the request body for the scan toggle. A missing
// Enabled flips the current state.
type ScanRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleScan turns marker scanning on or off
func (s *Server) handleScan(c *fiber.Ctx) error {
	var req ScanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}
	on := !s.opts.Pipeline.Scanning()
	if req.Enabled != nil {
		on = *req.Enabled
	}
	s.opts.Pipeline.SetScanning(on)
	s.PublishStatus()
	return c.JSON(fiber.Map{"scanning": on})
}

// --- Zones ---

// ZonesResponse lists the calibrated zones in key order
type ZonesResponse struct {
	Revision string      `json:"revision"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Zones    []ZoneState `json:"zones"`
}

// ZoneState is a zone plus its current occupancy
type ZoneState struct {
	*zone.Zone
	Radius   float64 `json:"radius"`
	Occupied bool    `json:"occupied"`
	MarkerID *int    `json:"marker_id,omitempty"`
}

// handleZones returns the zones with live occupancy
func (s *Server) handleZones(c *fiber.Ctx) error {
	store, occ := s.opts.Pipeline.Current()
	resp := ZonesResponse{
		Revision: s.opts.Pipeline.Zones().Revision(),
		Width:    store.Width,
		Height:   store.Height,
		Zones:    make([]ZoneState, 0, store.Len()),
	}
	for _, key := range store.Keys() {
		z := store.Zones[key]
		st := ZoneState{Zone: z, Radius: z.Radius()}
		if id, ok := occ.Marker(key); ok {
			st.Occupied = true
			st.MarkerID = &id
		}
		resp.Zones = append(resp.Zones, st)
	}
	return c.JSON(resp)
}

// ToleranceRequest is the request body for tolerance changes and calibration
type ToleranceRequest struct {
	Tolerance *float64 `json:"tolerance"`
}

// handleCalibrate calibrates zones from the latest detected markers
func (s *Server) handleCalibrate(c *fiber.Ctx) error {
	var req ToleranceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}

	s.mu.Lock()
	tolerance := s.tolerance
	s.mu.Unlock()
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}

	if err := s.opts.Pipeline.Calibrate(tolerance); err != nil {
		return fail(c, "calibrate", err)
	}
	s.mu.Lock()
	s.tolerance = tolerance
	s.mu.Unlock()

	return s.handleZones(c)
}

// handleReset removes every zone
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.opts.Pipeline.Zones().Reset()
	return c.JSON(fiber.Map{"success": true})
}

// PathRequest is the request body for save and load. Path names a file in
// the calibration directory; an empty Path means the configured file.
type PathRequest struct {
	Path string `json:"path"`
}

// ErrInvalidPath is returned for save and load names that are not a plain
// file name
var ErrInvalidPath = errors.New("path must be a file name in the calibration directory")

// calibrationFile resolves a requested name inside the directory of the
// configured calibration file.
func (s *Server) calibrationFile(name string) (string, error) {
	if name == "" {
		return s.opts.CalibrationPath, nil
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) ||
		filepath.IsAbs(name) || filepath.Base(name) != name || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return filepath.Join(filepath.Dir(s.opts.CalibrationPath), name), nil
}

// handleSave writes the calibration document
func (s *Server) handleSave(c *fiber.Ctx) error {
	var req PathRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}
	path, err := s.calibrationFile(req.Path)
	if err != nil {
		return fail(c, "save", err)
	}
	if err := s.opts.Pipeline.Zones().Save(path); err != nil {
		return fail(c, "save", err)
	}
	log.Info("calibration saved", "path", path, "zones", s.opts.Pipeline.Zones().Len())
	return c.JSON(fiber.Map{"success": true, "path": path})
}

// handleLoad replaces the zones with a saved calibration document
func (s *Server) handleLoad(c *fiber.Ctx) error {
	var req PathRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}
	path, err := s.calibrationFile(req.Path)
	if err != nil {
		return fail(c, "load", err)
	}
	if err := s.opts.Pipeline.Zones().Load(path); err != nil {
		return fail(c, "load", err)
	}
	log.Info("calibration loaded", "path", path, "zones", s.opts.Pipeline.Zones().Len())
	return s.handleZones(c)
}

// handleTolerance applies one tolerance to every zone
func (s *Server) handleTolerance(c *fiber.Ctx) error {
	var req ToleranceRequest
	if err := c.BodyParser(&req); err != nil || req.Tolerance == nil {
		return badRequest(c, "tolerance is required")
	}
	if err := s.opts.Pipeline.Zones().UpdateTolerance(*req.Tolerance); err != nil {
		return fail(c, "update tolerance", err)
	}
	s.mu.Lock()
	s.tolerance = *req.Tolerance
	s.mu.Unlock()
	return s.handleZones(c)
}

// handleZoneTolerance sets one zone's tolerance
func (s *Server) handleZoneTolerance(c *fiber.Ctx) error {
	var req ToleranceRequest
	if err := c.BodyParser(&req); err != nil || req.Tolerance == nil {
		return badRequest(c, "tolerance is required")
	}
	if err := s.opts.Pipeline.Zones().SetZoneTolerance(c.Params("key"), *req.Tolerance); err != nil {
		return fail(c, "zone tolerance", err)
	}
	return s.handleZones(c)
}

// ReassignRequest is the request body for swapping two zones' ids
type ReassignRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// handleReassign swaps the display ids of two zones
func (s *Server) handleReassign(c *fiber.Ctx) error {
	var req ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := s.opts.Pipeline.Zones().Reassign(req.A, req.B); err != nil {
		return fail(c, "reassign", err)
	}
	return s.handleZones(c)
}

// LineRequest is the request body for attaching a zone to a line
type LineRequest struct {
	Line string `json:"line"`
}

// handleZoneLine attaches a zone to an output line, or detaches it
func (s *Server) handleZoneLine(c *fiber.Ctx) error {
	var req LineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	line, err := zone.ParseLine(req.Line)
	if err != nil {
		return fail(c, "attach line", err)
	}
	if err := s.opts.Pipeline.Zones().AttachLine(c.Params("key"), line); err != nil {
		return fail(c, "attach line", err)
	}
	return s.handleZones(c)
}

// --- Packet ---

// handlePacket returns the current record and sender state
func (s *Server) handlePacket(c *fiber.Ctx) error {
	store, occ := s.opts.Pipeline.Current()
	lines := zone.Lines()
	fields := packet.Fields(store, occ)
	byLine := make(map[string]string, len(lines))
	for i, line := range lines {
		byLine[string(line)] = fields[i]
	}

	s.mu.Lock()
	target := s.target
	s.mu.Unlock()

	return c.JSON(fiber.Map{
		"record":      packet.Compose(s.opts.Sender.Device(), store, occ),
		"fields":      byLine,
		"enabled":     s.opts.Sender.Enabled(),
		"destination": s.opts.Sender.Destination(),
		"target":      target,
		"stats":       s.opts.Sender.Stats(),
	})
}

// handlePacketSend sends the record once
func (s *Server) handlePacketSend(c *fiber.Ctx) error {
	record, err := s.opts.Sender.SendOnce()
	if err != nil {
		return fail(c, "send packet", err)
	}
	return c.JSON(fiber.Map{"success": true, "record": record})
}

// handlePacketStart enables periodic sending
func (s *Server) handlePacketStart(c *fiber.Ctx) error {
	if s.opts.Sender.Destination() == "" {
		return fail(c, "start packets", packet.ErrNoDestination)
	}
	s.opts.Sender.Enable(true)
	s.PublishStatus()
	return c.JSON(fiber.Map{"enabled": true})
}

// handlePacketStop disables periodic sending
func (s *Server) handlePacketStop(c *fiber.Ctx) error {
	s.opts.Sender.Enable(false)
	s.PublishStatus()
	return c.JSON(fiber.Map{"enabled": false})
}

// handlePacketTarget changes the UDP destination and device field
func (s *Server) handlePacketTarget(c *fiber.Ctx) error {
	s.mu.Lock()
	target := s.target
	s.mu.Unlock()

	var req Target
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if req.IP != "" {
		target.IP = req.IP
		target.Device = packet.DeviceFromIP(req.IP)
	}
	if req.Port != 0 {
		target.Port = req.Port
	}
	if req.Device != "" {
		target.Device = req.Device
	}
	if target.IP == "" || target.Port < 1 || target.Port > 65535 {
		return badRequest(c, "ip and a port between 1 and 65535 are required")
	}

	t, err := s.opts.Dial(target.IP, target.Port)
	if err != nil {
		return badRequest(c, err.Error())
	}
	s.opts.Sender.SetTransport(t)
	s.opts.Sender.SetDevice(target.Device)

	s.mu.Lock()
	s.target = target
	s.mu.Unlock()

	s.PublishStatus()
	return c.JSON(fiber.Map{
		"target":      target,
		"destination": t.String(),
	})
}
