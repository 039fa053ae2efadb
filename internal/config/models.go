package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only configuration schema version understood.
const CurrentVersion = 1

// Config is the root of the configuration file.
type Config struct {
	Version  int            `yaml:"version"`
	LogLevel string         `yaml:"log_level,omitempty"`
	Scan     ScanConfig     `yaml:"scan"`
	Datasets DatasetsConfig `yaml:"datasets"`
	Publish  PublishConfig  `yaml:"publish"`
}

// ScanConfig controls the per-adapter scan loop.
type ScanConfig struct {
	Dwell        Duration `yaml:"dwell"`
	Interval     Duration `yaml:"interval"`
	CarryForward bool     `yaml:"carry_forward"`

	// Simulate replaces the radio with a generated demo population.
	Simulate bool  `yaml:"simulate,omitempty"`
	Seed     int64 `yaml:"seed,omitempty"`
}

// DatasetsConfig locates the reference tables.
type DatasetsConfig struct {
	Vendors        string `yaml:"vendors,omitempty"`
	Services       string `yaml:"services,omitempty"`
	BuiltinVendors bool   `yaml:"builtin_vendors"`

	// AllowMissing starts with empty tables instead of failing when a
	// dataset cannot be loaded.
	AllowMissing bool `yaml:"allow_missing"`
}

// PublishConfig selects the snapshot sinks. A sink is active when its
// section is enabled or, for file and mqtt, when its target is set.
type PublishConfig struct {
	File    FileConfig    `yaml:"file"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Server  ServerConfig  `yaml:"server"`
	Console ConsoleConfig `yaml:"console"`
}

// FileConfig writes each snapshot to disk.
type FileConfig struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// MQTTConfig publishes retained snapshots to a broker.
type MQTTConfig struct {
	Broker   string `yaml:"broker,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
	QoS      int    `yaml:"qos"`
}

// ServerConfig exposes snapshots over HTTP and WebSocket.
type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host,omitempty"`
	Port      int    `yaml:"port"`
	Advertise bool   `yaml:"advertise"`
	Instance  string `yaml:"instance,omitempty"`
	CertPath  string `yaml:"cert,omitempty"`
	KeyPath   string `yaml:"key,omitempty"`
}

// ConsoleConfig prints snapshots to the terminal.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
	// Watch shows a live view instead of printing each snapshot.
	Watch bool `yaml:"watch,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Plain integers are read as
// seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}
	var secs int64
	if err := node.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	return fmt.Errorf("line %d: invalid duration %q", node.Line, s)
}
