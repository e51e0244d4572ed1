package camera

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/teslashibe/smartcam/internal/log"
	"github.com/teslashibe/smartcam/pkg/raster"
)

// Source is an open capture device.
type Source interface {
	// Frame returns the next frame, or ErrFrameUnavailable when the device
	// has nothing this tick.
	Frame() (*raster.Buffer, error)

	// Info reports the negotiated device properties
	Info() Device

	Close() error
}

// Opener opens a capture device with the given configuration.
type Opener func(cfg Config) (Source, error)

// Prober lists the capture devices that can be opened.
type Prober func() []Device

// Manager holds the current camera configuration and the active source.
type Manager struct {
	config Config
	source Source
	mu     sync.RWMutex

	open  Opener
	probe Prober

	// OnConfigChange is called after a config change has been applied to
	// the device
	OnConfigChange func(cfg Config) error
}

// NewManager creates a new camera manager with default config.
func NewManager(open Opener, probe Prober) *Manager {
	return &Manager{
		config: DefaultConfig(),
		open:   open,
		probe:  probe,
	}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig updates the camera configuration. A running camera is
// reopened with the new settings.
func (m *Manager) SetConfig(cfg Config) error {
	// Validate
	if errors := cfg.Validate(); len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	m.mu.Lock()
	m.config = cfg
	running := m.source != nil
	callback := m.OnConfigChange
	m.mu.Unlock()

	if running {
		if err := m.Start(); err != nil {
			return err
		}
	}

	// Notify callback if set
	if callback != nil {
		if err := callback(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// Select switches to device id.
func (m *Manager) Select(id int) error {
	cfg := m.GetConfig()
	cfg.Device = id
	return m.SetConfig(cfg)
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to values.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	cfg := m.GetConfig()

	// Check for preset first
	if presetName, ok := params["preset"].(string); ok {
		preset := GetPreset(presetName)
		if preset == nil {
			return fmt.Errorf("unknown preset: %s", presetName)
		}
		device := cfg.Device
		cfg = *preset
		cfg.Device = device
		// Remove preset from params so we can still apply other overrides
		delete(params, "preset")
	}

	// Apply individual parameters
	for key, value := range params {
		switch key {
		case "device":
			if v, ok := toInt(value); ok {
				cfg.Device = v
			}
		case "width":
			if v, ok := toInt(value); ok {
				cfg.Width = v
			}
		case "height":
			if v, ok := toInt(value); ok {
				cfg.Height = v
			}
		case "fps":
			if v, ok := toInt(value); ok {
				cfg.FPS = v
			}
		case "quality":
			if v, ok := toInt(value); ok {
				cfg.Quality = v
			}
		case "mirror":
			if v, ok := value.(bool); ok {
				cfg.Mirror = v
			}
		}
	}

	return m.SetConfig(cfg)
}

// GetConfigJSON returns the current config as a map for JSON serialization.
func (m *Manager) GetConfigJSON() map[string]interface{} {
	cfg := m.GetConfig()

	// Convert to map via JSON for consistent serialization
	data, _ := json.Marshal(cfg)
	var result map[string]interface{}
	json.Unmarshal(data, &result)

	return result
}

// Devices probes for openable capture devices.
func (m *Manager) Devices() []Device {
	if m.probe == nil {
		return nil
	}
	return m.probe()
}

// Start opens the configured device, closing any running one first.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source != nil {
		m.source.Close()
		m.source = nil
	}
	if m.open == nil {
		return ErrNoDevice
	}

	src, err := m.open(m.config)
	if err != nil {
		return fmt.Errorf("open device %d: %w", m.config.Device, err)
	}
	m.source = src

	info := src.Info()
	log.Info("camera started", "device", info.ID, "width", info.Width, "height", info.Height, "fps", info.FPS)
	return nil
}

// Stop closes the running device. Stopping a stopped camera is a no-op.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source == nil {
		return nil
	}
	err := m.source.Close()
	m.source = nil
	log.Info("camera stopped", "device", m.config.Device)
	return err
}

// Running reports whether a device is open.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.source != nil
}

// Info returns the running device's properties.
func (m *Manager) Info() (Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.source == nil {
		return Device{}, false
	}
	return m.source.Info(), true
}

// Frame reads the next frame from the running device.
func (m *Manager) Frame() (*raster.Buffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.source == nil {
		return nil, ErrNotOpen
	}
	return m.source.Frame()
}

// Helper functions for type conversion

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}
