// Package config decodes the neolink TOML configuration surface and
// supports live updates (re-read on SIGHUP or an MQTT config payload).
package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Stream is the substream a camera publishes.
type Stream string

const (
	StreamMain  Stream = "Main"
	StreamSub   Stream = "Sub"
	StreamThird Stream = "Third"
	StreamNone  Stream = "None"
)

// Discovery is the strategy used to locate a camera.
type Discovery string

const (
	DiscoveryLocal    Discovery = "local"
	DiscoveryRemote   Discovery = "remote"
	DiscoveryMap      Discovery = "map"
	DiscoveryRelay    Discovery = "relay"
	DiscoveryCellular Discovery = "cellular"
)

// Pause controls when a camera's stream is allowed to idle.
type Pause struct {
	OnMotion bool `toml:"on_motion"`
	OnClient bool `toml:"on_client"`
	Timeout  int  `toml:"timeout"` // seconds
}

// MQTTDiscovery is the Home Assistant-style discovery block for a camera.
type MQTTDiscovery struct {
	Topic    string   `toml:"topic"`
	Features []string `toml:"features"`
}

// CameraMQTT holds per-camera MQTT feature toggles and poll intervals.
type CameraMQTT struct {
	EnableMotion     bool          `toml:"enable_motion"`
	EnableLight      bool          `toml:"enable_light"`
	EnableBattery    bool          `toml:"enable_battery"`
	EnablePreview    bool          `toml:"enable_preview"`
	EnableFloodlight bool          `toml:"enable_floodlight"`
	BatteryUpdate    int           `toml:"battery_update"`   // ms
	PreviewUpdate    int           `toml:"preview_update"`   // ms
	FloodlightUpdate int           `toml:"floodlight_update"` // ms
	Discovery        MQTTDiscovery `toml:"discovery"`
}

// Camera is one `[[cameras]]` entry.
type Camera struct {
	Name              string     `toml:"name"`
	Username          string     `toml:"username"`
	Password          string     `toml:"password"`
	UID               string     `toml:"uid"`
	Address           string     `toml:"address"`
	Discovery         Discovery  `toml:"discovery"`
	Stream            Stream     `toml:"stream"`
	Debug             bool       `toml:"debug"`
	Enabled           bool       `toml:"enabled"`
	UpdateTime        bool       `toml:"update_time"`
	PrintFormat       string     `toml:"print_format"`
	IdleDisconnect    bool       `toml:"idle_disconnect"`
	PushNotifications bool       `toml:"push_notifications"`
	Pause             Pause      `toml:"pause"`
	MQTT              CameraMQTT `toml:"mqtt"`
}

// MQTT is the top-level `[mqtt]` broker block.
type MQTT struct {
	BrokerAddr string `toml:"broker_addr"`
	Port       int    `toml:"port"`
	Credentials struct {
		Username string `toml:"username"`
		Password string `toml:"password"`
	} `toml:"credentials"`
}

// Config is the full decoded configuration file.
type Config struct {
	Bind    string   `toml:"bind"`
	MQTT    MQTT     `toml:"mqtt"`
	Cameras []Camera `toml:"cameras"`
}

// Load reads, expands, and decodes the TOML config file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: empty path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(ReplaceEnvVars(string(data)))

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// AbsPath resolves path against the working directory when relative.
func AbsPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, path)
	}
	return path
}

// CameraByName returns the camera entry with the given name, or nil.
func (c *Config) CameraByName(name string) *Camera {
	for i := range c.Cameras {
		if c.Cameras[i].Name == name {
			return &c.Cameras[i]
		}
	}
	return nil
}

var envVar = regexp.MustCompile(`\${([^}{]+)}`)

// ReplaceEnvVars expands `${NAME}` and `${NAME:default}` occurrences in
// text against the process environment, before the TOML parser ever sees
// the file.
func ReplaceEnvVars(text string) string {
	return envVar.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-1]

		var def string
		var hasDefault bool

		if i := strings.IndexByte(key, ':'); i > 0 {
			key, def = key[:i], key[i+1:]
			hasDefault = true
		}

		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		if hasDefault {
			return def
		}
		return match
	})
}
