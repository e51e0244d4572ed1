// Package config loads smartcam settings from smartcam.json and
// SMARTCAM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file base name, searched for in the config dir.
const FileName = "smartcam"

// EnvPrefix prefixes environment overrides, e.g. SMARTCAM_PACKET_IP.
const EnvPrefix = "SMARTCAM"

// Config is the typed view of every setting.
type Config struct {
	LogLevel    string            `json:"logLevel" mapstructure:"logLevel"`
	Web         WebConfig         `json:"web" mapstructure:"web"`
	Camera      CameraConfig      `json:"camera" mapstructure:"camera"`
	Detector    DetectorConfig    `json:"detector" mapstructure:"detector"`
	Calibration CalibrationConfig `json:"calibration" mapstructure:"calibration"`
	Packet      PacketConfig      `json:"packet" mapstructure:"packet"`
	Serial      SerialConfig      `json:"serial" mapstructure:"serial"`
}

// WebConfig holds operator console settings
type WebConfig struct {
	Port int `json:"port" mapstructure:"port"`
}

// CameraConfig holds capture settings
type CameraConfig struct {
	Device  int  `json:"device" mapstructure:"device"`
	Width   int  `json:"width" mapstructure:"width"`
	Height  int  `json:"height" mapstructure:"height"`
	FPS     int  `json:"fps" mapstructure:"fps"`
	Quality int  `json:"quality" mapstructure:"quality"`
	Start   bool `json:"start" mapstructure:"start"`
}

// DetectorConfig holds marker detector settings
type DetectorConfig struct {
	Dictionary string `json:"dictionary" mapstructure:"dictionary"`
	Draw       bool   `json:"draw" mapstructure:"draw"`
}

// CalibrationConfig holds zone calibration settings
type CalibrationConfig struct {
	Path      string  `json:"path" mapstructure:"path"`
	Tolerance float64 `json:"tolerance" mapstructure:"tolerance"`
	AutoLoad  bool    `json:"autoLoad" mapstructure:"autoLoad"`
}

// PacketConfig holds the UDP record destination
type PacketConfig struct {
	IP       string        `json:"ip" mapstructure:"ip"`
	Port     int           `json:"port" mapstructure:"port"`
	Device   string        `json:"device" mapstructure:"device"`
	Interval time.Duration `json:"interval" mapstructure:"interval"`
	Enabled  bool          `json:"enabled" mapstructure:"enabled"`
}

// SerialConfig holds the optional serial record destination. An empty
// Port disables it.
type SerialConfig struct {
	Port string `json:"port" mapstructure:"port"`
	Baud int    `json:"baud" mapstructure:"baud"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("web.port", 8080)

	viper.SetDefault("camera.device", 0)
	viper.SetDefault("camera.width", 640)
	viper.SetDefault("camera.height", 480)
	viper.SetDefault("camera.fps", 30)
	viper.SetDefault("camera.quality", 80)
	viper.SetDefault("camera.start", true)

	viper.SetDefault("detector.dictionary", "6x6_250")
	viper.SetDefault("detector.draw", true)

	viper.SetDefault("calibration.path", "calibration.json")
	viper.SetDefault("calibration.tolerance", 1.0)
	viper.SetDefault("calibration.autoLoad", true)

	viper.SetDefault("packet.ip", "192.168.1.228")
	viper.SetDefault("packet.port", 5005)
	viper.SetDefault("packet.device", "")
	viper.SetDefault("packet.interval", "100ms")
	viper.SetDefault("packet.enabled", false)

	viper.SetDefault("serial.port", "")
	viper.SetDefault("serial.baud", 115200)
}

// Load reads configuration from the JSON file in configDir and applies
// environment overrides. A missing file is not an error; defaults apply.
func Load(configDir string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Get returns the typed configuration.
func Get() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate returns a list of problems, or nil if the config is usable.
func (c Config) Validate() []string {
	var errors []string

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errors = append(errors, "web.port must be between 1 and 65535")
	}
	if c.Packet.Port < 1 || c.Packet.Port > 65535 {
		errors = append(errors, "packet.port must be between 1 and 65535")
	}
	if c.Packet.Interval <= 0 {
		errors = append(errors, "packet.interval must be positive")
	}
	if c.Calibration.Tolerance <= 0 {
		errors = append(errors, "calibration.tolerance must be positive")
	}
	if c.Serial.Port != "" && c.Serial.Baud <= 0 {
		errors = append(errors, "serial.baud must be positive")
	}

	return errors
}
