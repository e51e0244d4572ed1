package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/teslashibe/smartcam/internal/config"
	"github.com/teslashibe/smartcam/internal/log"
	"github.com/teslashibe/smartcam/pkg/camera"
	"github.com/teslashibe/smartcam/pkg/camera/device"
	"github.com/teslashibe/smartcam/pkg/overlay"
	"github.com/teslashibe/smartcam/pkg/packet"
	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/tracking/detection"
	"github.com/teslashibe/smartcam/pkg/tracking/detection/aruco"
	"github.com/teslashibe/smartcam/pkg/web"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// App owns every component and their lifecycle.
type App struct {
	config config.Config

	camera   *camera.Manager
	detector *detection.Counting
	zones    *zone.Manager
	pipeline *tracking.Pipeline

	// Packet output. serial is nil unless serial.port is set.
	sender *packet.Sender
	serial *packet.Sender

	webServer *web.Server
}

// New checks the configuration and returns an uninitialized app.
func New(cfg config.Config) (*App, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	if err := detection.ValidateDictionary(cfg.Detector.Dictionary); err != nil {
		return nil, err
	}
	return &App{config: cfg}, nil
}

// Init builds the components. Call it after New and before Run.
func (a *App) Init() error {
	cfg := a.config

	// Camera
	a.camera = camera.NewManager(device.Open, device.Probe)
	camCfg := camera.DefaultConfig()
	camCfg.Device = cfg.Camera.Device
	camCfg.Width = cfg.Camera.Width
	camCfg.Height = cfg.Camera.Height
	camCfg.FPS = cfg.Camera.FPS
	camCfg.Quality = cfg.Camera.Quality
	if err := a.camera.SetConfig(camCfg); err != nil {
		return fmt.Errorf("camera config: %w", err)
	}
	if cfg.Camera.Start {
		if err := a.camera.Start(); err != nil {
			// The console can still select another device
			log.Warn("camera not started", "device", camCfg.Device, "error", err)
		}
	}

	// Detection
	det, err := aruco.New(detection.Config{
		Dictionary: cfg.Detector.Dictionary,
		Draw:       cfg.Detector.Draw,
	})
	if err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	a.detector = detection.WithStats(det)

	// Zones
	a.zones = zone.NewManager()
	if cfg.Calibration.AutoLoad {
		a.loadCalibration(cfg.Calibration.Path)
	}

	// Frame loop
	trackCfg := tracking.FromFPS(float64(camCfg.FPS))
	a.pipeline = tracking.NewPipeline(trackCfg, a.camera, a.detector, a.zones,
		overlay.New(overlay.DefaultConfig()), nil)

	// Packet output
	deviceField := cfg.Packet.Device
	if deviceField == "" {
		deviceField = packet.DeviceFromIP(cfg.Packet.IP)
	}
	a.sender = packet.NewSender(a.pipeline.Current, deviceField, cfg.Packet.Interval)
	if udp, err := packet.DialUDP(cfg.Packet.IP, cfg.Packet.Port); err != nil {
		log.Warn("packet destination unavailable", "ip", cfg.Packet.IP, "port", cfg.Packet.Port, "error", err)
	} else {
		a.sender.SetTransport(udp)
		a.sender.Enable(cfg.Packet.Enabled)
	}

	if cfg.Serial.Port != "" {
		port, err := packet.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			log.Warn("serial output unavailable", "port", cfg.Serial.Port, "error", err)
		} else {
			a.serial = packet.NewSender(a.pipeline.Current, deviceField, cfg.Packet.Interval)
			a.serial.SetTransport(port)
			a.serial.Enable(true)
		}
	}

	// Console
	a.webServer = web.NewServer(strconv.Itoa(cfg.Web.Port), web.Options{
		Pipeline:        a.pipeline,
		Camera:          a.camera,
		Sender:          a.sender,
		Detection:       a.detector,
		Dictionary:      cfg.Detector.Dictionary,
		CalibrationPath: cfg.Calibration.Path,
		Tolerance:       cfg.Calibration.Tolerance,
		Target:          web.Target{IP: cfg.Packet.IP, Port: cfg.Packet.Port, Device: deviceField},
		Encoder:         device.EncodeJPEG,
	})
	a.pipeline.SetDisplay(a.webServer)
	a.zones.OnChange = func(_ *zone.Store, revision string) {
		log.Debug("zones changed", "revision", revision)
		a.webServer.PublishStatus()
	}
	a.sender.OnSend = a.webServer.PublishPacket
	a.camera.OnConfigChange = func(c camera.Config) error {
		a.pipeline.SetFrameInterval(tracking.FromFPS(float64(c.FPS)).FrameInterval)
		a.webServer.PublishStatus()
		return nil
	}

	return nil
}

// loadCalibration restores a saved calibration. A missing file is normal
// on first run.
func (a *App) loadCalibration(path string) {
	err := a.zones.Load(path)
	switch {
	case err == nil:
		log.Info("calibration loaded", "path", path, "zones", a.zones.Len())
	case errors.Is(err, fs.ErrNotExist):
		log.Info("no saved calibration", "path", path)
	default:
		log.Warn("calibration not loaded", "path", path, "error", err)
	}
}

// Run starts the frame loop, packet output and console, and blocks until
// ctx is done.
func (a *App) Run(ctx context.Context) error {
	log.Info("smartcam started",
		"console", "http://localhost:"+strconv.Itoa(a.config.Web.Port),
		"dictionary", a.config.Detector.Dictionary,
		"zones", a.zones.Len())

	a.webServer.StartAsync(ctx)
	go a.pipeline.Run(ctx)
	go a.sender.Run(ctx)
	if a.serial != nil {
		go a.serial.Run(ctx)
	}

	<-ctx.Done()
	return nil
}

// Shutdown releases every component.
func (a *App) Shutdown() {
	log.Info("shutting down")

	if a.webServer != nil {
		a.webServer.Shutdown()
	}
	if a.sender != nil {
		a.sender.Close()
	}
	if a.serial != nil {
		a.serial.Close()
	}
	if a.camera != nil {
		a.camera.Stop()
	}
	if a.detector != nil {
		a.detector.Close()
	}
}
