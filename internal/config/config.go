package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/muurk/bleradar/internal/logging"
	"github.com/muurk/bleradar/internal/publish"
)

const (
	appName    = "bleradar"
	configFile = "config.yaml"

	// PasswordEnv overrides publish.mqtt.password.
	PasswordEnv = "BLERADAR_MQTT_PASSWORD"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/bleradar or $HOME/.config/bleradar
//   - macOS: $HOME/.config/bleradar (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\bleradar
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:  CurrentVersion,
		LogLevel: "",
		Scan: ScanConfig{
			Dwell:    Duration(10 * time.Second),
			Interval: Duration(5 * time.Second),
		},
		Datasets: DatasetsConfig{
			BuiltinVendors: true,
		},
		Publish: PublishConfig{
			File: FileConfig{Format: "json"},
			MQTT: MQTTConfig{
				ClientID: appName,
				Prefix:   publish.DefaultTopicPrefix,
				QoS:      1,
			},
			Server: ServerConfig{
				Port:      8765,
				Advertise: true,
			},
			Console: ConsoleConfig{Enabled: true},
		},
	}
}

// Load reads the configuration at path over the defaults. A missing file
// yields the defaults; found reports whether the file existed.
func Load(path string) (cfg *Config, found bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg.applyEnv()
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, true, fmt.Errorf("unsupported config version: %d (expected %d)", cfg.Version, CurrentVersion)
	}

	cfg.applyEnv()
	return cfg, true, nil
}

func (c *Config) applyEnv() {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		c.Publish.MQTT.Password = pw
	}
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var err error

	if c.Version != CurrentVersion {
		err = multierr.Append(err, fmt.Errorf("version: unsupported value %d", c.Version))
	}
	if c.LogLevel != "" {
		if _, lerr := logging.ParseLevel(c.LogLevel); lerr != nil {
			err = multierr.Append(err, fmt.Errorf("log_level: %w", lerr))
		}
	}
	if c.Scan.Dwell.Std() <= 0 {
		err = multierr.Append(err, fmt.Errorf("scan.dwell: must be positive, got %s", c.Scan.Dwell.Std()))
	}
	if c.Scan.Interval.Std() < 0 {
		err = multierr.Append(err, fmt.Errorf("scan.interval: must not be negative, got %s", c.Scan.Interval.Std()))
	}
	if _, ferr := publish.ParseFormat(c.Publish.File.Format); ferr != nil {
		err = multierr.Append(err, fmt.Errorf("publish.file.format: %w", ferr))
	}

	mqtt := c.Publish.MQTT
	if mqtt.QoS < 0 || mqtt.QoS > 2 {
		err = multierr.Append(err, fmt.Errorf("publish.mqtt.qos: must be 0, 1 or 2, got %d", mqtt.QoS))
	}
	if mqtt.Broker != "" && !strings.Contains(mqtt.Broker, "://") {
		err = multierr.Append(err, fmt.Errorf("publish.mqtt.broker: %q needs a scheme such as tcp://", mqtt.Broker))
	}

	srv := c.Publish.Server
	if srv.Enabled && (srv.Port < 0 || srv.Port > 65535) {
		err = multierr.Append(err, fmt.Errorf("publish.server.port: %d out of range", srv.Port))
	}
	if (srv.CertPath == "") != (srv.KeyPath == "") {
		err = multierr.Append(err, errors.New("publish.server: cert and key must be set together"))
	}

	return err
}

// ValidateAdapters checks settings that depend on the adapters in use.
// Several adapters cannot share one snapshot file.
func (c *Config) ValidateAdapters(adapters []string) error {
	path := c.Publish.File.Path
	if path == "" || len(adapters) < 2 || publish.PerAdapter(path) {
		return nil
	}
	return fmt.Errorf("publish.file.path: %d adapters (%s) would overwrite %s; add %s to the path",
		len(adapters), strings.Join(adapters, ", "), path, publish.AdapterPlaceholder)
}

// Save writes the configuration to path atomically, creating the directory
// if needed.
func (c *Config) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# bleradar configuration file
# Command-line flags override these values.
# The MQTT password may be supplied via ` + PasswordEnv + ` instead.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}
