// Package web provides the operator console: an HTTP API for calibration,
// zone editing and packet output, and websocket feeds of the annotated
// camera frames and live status.
package web

import (
	"bytes"
	"context"
	"image/jpeg"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/teslashibe/smartcam/internal/log"
	"github.com/teslashibe/smartcam/pkg/camera"
	"github.com/teslashibe/smartcam/pkg/hub"
	"github.com/teslashibe/smartcam/pkg/packet"
	"github.com/teslashibe/smartcam/pkg/raster"
	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/tracking/detection"
)

// StatsSource reports detection statistics
type StatsSource interface {
	Stats() detection.Stats
	ResetStats()
}

// Encoder turns a frame into JPEG bytes for the camera feed
type Encoder func(buf *raster.Buffer, quality int) ([]byte, error)

// Dialer opens a packet transport to ip:port
type Dialer func(ip string, port int) (packet.Transport, error)

// Options are the collaborators the console drives
type Options struct {
	Pipeline   *tracking.Pipeline
	Camera     *camera.Manager
	Sender     *packet.Sender
	Detection  StatsSource
	Dictionary string

	// CalibrationPath is used by save and load when the request names no path
	CalibrationPath string

	// Tolerance is used by calibrate when the request gives none
	Tolerance float64

	// Target is the initial packet destination
	Target Target

	// Encoder defaults to the standard library JPEG encoder
	Encoder Encoder

	// Dial defaults to packet.DialUDP
	Dial Dialer

	// StatusInterval throttles status pushes driven by frames
	StatusInterval time.Duration
}

// Target is the UDP destination of the packet record
type Target struct {
	IP     string `json:"ip"`
	Port   int    `json:"port"`
	Device string `json:"device"`
}

// Server is the operator console server
type Server struct {
	app  *fiber.App
	port string
	opts Options

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	cameraHub *hub.Hub

	mu         sync.Mutex
	target     Target
	tolerance  float64
	lastStatus time.Time
}

// NewServer creates a new console server
func NewServer(port string, opts Options) *Server {
	if opts.Encoder == nil {
		opts.Encoder = encodeJPEG
	}
	if opts.Dial == nil {
		opts.Dial = func(ip string, port int) (packet.Transport, error) {
			return packet.DialUDP(ip, port)
		}
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = 500 * time.Millisecond
	}

	s := &Server{
		port:      port,
		opts:      opts,
		statusHub: hub.New("status", true),
		cameraHub: hub.New("camera", true),
		target:    opts.Target,
		tolerance: opts.Tolerance,
	}

	app := fiber.New(fiber.Config{
		AppName:               "SmartCam Console",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/dictionaries", s.handleDictionaries)
	api.Post("/stats/reset", s.handleResetStats)

	api.Get("/cameras", s.handleCameras)
	api.Get("/camera/config", s.handleCameraConfig)
	api.Put("/camera/config", s.handleUpdateCameraConfig)
	api.Get("/camera/presets", s.handleCameraPresets)
	api.Post("/camera/select", s.handleSelectCamera)
	api.Post("/camera/start", s.handleStartCamera)
	api.Post("/camera/stop", s.handleStopCamera)
	api.Post("/scan", s.handleScan)

	api.Get("/zones", s.handleZones)
	api.Post("/calibrate", s.handleCalibrate)
	api.Post("/reset", s.handleReset)
	api.Post("/save", s.handleSave)
	api.Post("/load", s.handleLoad)
	api.Post("/tolerance", s.handleTolerance)
	api.Post("/reassign", s.handleReassign)
	api.Post("/zones/:key/tolerance", s.handleZoneTolerance)
	api.Post("/zones/:key/line", s.handleZoneLine)

	api.Get("/packet", s.handlePacket)
	api.Post("/packet/send", s.handlePacketSend)
	api.Post("/packet/start", s.handlePacketStart)
	api.Post("/packet/stop", s.handlePacketStop)
	api.Post("/packet/target", s.handlePacketTarget)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hubs and serves until the listener fails. Hubs stop
// when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	log.Info("console listening", "url", "http://localhost:"+s.port)

	go s.statusHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			log.Error("console server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// ShowFrame pushes a processed frame to camera viewers and, at most once
// per status interval, a status update. It satisfies tracking.Display.
func (s *Server) ShowFrame(f *tracking.Frame) {
	if s.cameraHub.ClientCount() > 0 {
		data, err := s.opts.Encoder(f.Image, s.quality())
		if err != nil {
			log.Warn("frame encode failed", "seq", f.Seq, "error", err)
		} else {
			s.cameraHub.BroadcastBinary(data)
		}
	}

	s.mu.Lock()
	due := f.Time.Sub(s.lastStatus) >= s.opts.StatusInterval
	if due {
		s.lastStatus = f.Time
	}
	s.mu.Unlock()

	if due {
		s.PublishStatus()
	}
}

// PublishStatus pushes the current status to status viewers
func (s *Server) PublishStatus() {
	s.statusHub.BroadcastJSON(Event{Type: EventStatus, Status: s.status()})
}

// PublishPacket pushes a send result to status viewers. It matches the
// packet.Sender OnSend callback.
func (s *Server) PublishPacket(record string, err error) {
	ev := Event{Type: EventPacket, Record: record}
	if err != nil {
		ev.Error = err.Error()
	}
	s.statusHub.BroadcastJSON(ev)
}

func (s *Server) quality() int {
	if s.opts.Camera == nil {
		return camera.DefaultConfig().Quality
	}
	return s.opts.Camera.GetConfig().Quality
}

// encodeJPEG is the fallback encoder for builds without a native one
func encodeJPEG(buf *raster.Buffer, quality int) ([]byte, error) {
	var out bytes.Buffer
	if err := jpeg.Encode(&out, buf.Image(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// handleCameraWS streams annotated JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	if client := hub.NewClient(s.cameraHub, c); client != nil {
		client.Run()
	}
}

// handleStatusWS streams status and packet events
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if client := hub.NewClient(s.statusHub, c); client != nil {
		s.PublishStatus()
		client.Run()
	}
}
