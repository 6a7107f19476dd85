package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for spinbridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Camera  CameraConfig  `yaml:"camera"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Metrics MetricsConfig `yaml:"metrics"`
	Audit   AuditConfig   `yaml:"audit"`
	Logging LoggingConfig `yaml:"logging"`
}

// CameraConfig contains camera device and acquisition settings.
type CameraConfig struct {
	// SerialNumber identifies which physical camera to attach to.
	SerialNumber string `yaml:"serial_number"`

	// ParameterFile is the path to the logical-name → device-node mapping file.
	// One entry per line: <logical_name> <kind> <device_node_name>
	ParameterFile string `yaml:"parameter_file"`

	// CalibrationFile is an optional path to a YAML calibration description
	// published alongside each image. A missing file is not fatal.
	CalibrationFile string `yaml:"calibration_file"`

	// FrameID is the identifier stamped on every outgoing image message.
	FrameID string `yaml:"frame_id"`

	// DumpNodeMap logs the device's full node map after init.
	DumpNodeMap bool `yaml:"dump_node_map"`

	// ComputeBrightness asks the driver to compute per-frame brightness.
	ComputeBrightness bool `yaml:"compute_brightness"`

	// AcquisitionTimeout is the driver-side frame delivery timeout in seconds.
	AcquisitionTimeout float64 `yaml:"acquisition_timeout"`

	// Discovery bounds the startup camera search.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// StatusInterval is how often throughput statistics are reported, in seconds.
	StatusInterval int `yaml:"status_interval"`
}

// DiscoveryConfig bounds the startup camera search.
type DiscoveryConfig struct {
	// Attempts is the number of camera list refreshes before giving up.
	Attempts int `yaml:"attempts"`

	// DelaySeconds is the pause between attempts.
	DelaySeconds int `yaml:"delay_seconds"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// MetricsConfig contains InfluxDB connection settings for throughput metrics.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// AuditConfig contains settings for the SQLite-backed setting audit trail.
type AuditConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SPINBRIDGE_SECTION_KEY
// For example: SPINBRIDGE_CAMERA_SERIAL, SPINBRIDGE_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Camera: CameraConfig{
			SerialNumber:       "missing_serial_number",
			ParameterFile:      "configs/parameters.cfg",
			FrameID:            "camera",
			AcquisitionTimeout: 3.0,
			Discovery: DiscoveryConfig{
				Attempts:     5,
				DelaySeconds: 1,
			},
			StatusInterval: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "spinbridge",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Audit: AuditConfig{
			Path:        "./data/spinbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SPINBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Camera
	if v := os.Getenv("SPINBRIDGE_CAMERA_SERIAL"); v != "" {
		cfg.Camera.SerialNumber = v
	}
	if v := os.Getenv("SPINBRIDGE_CAMERA_PARAMETER_FILE"); v != "" {
		cfg.Camera.ParameterFile = v
	}

	// MQTT
	if v := os.Getenv("SPINBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SPINBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SPINBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Metrics
	if v := os.Getenv("SPINBRIDGE_METRICS_TOKEN"); v != "" {
		cfg.Metrics.Token = v
	}

	// Audit
	if v := os.Getenv("SPINBRIDGE_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Camera validation
	if c.Camera.SerialNumber == "" {
		errs = append(errs, "camera.serial_number is required")
	}
	if c.Camera.ParameterFile == "" {
		errs = append(errs, "camera.parameter_file is required")
	}
	if c.Camera.Discovery.Attempts < 1 {
		errs = append(errs, "camera.discovery.attempts must be at least 1")
	}
	if c.Camera.StatusInterval < 1 {
		errs = append(errs, "camera.status_interval must be at least 1 second")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// Metrics validation
	if c.Metrics.Enabled && c.Metrics.URL == "" {
		errs = append(errs, "metrics.url is required when metrics are enabled")
	}

	// Audit validation
	if c.Audit.Enabled && c.Audit.Path == "" {
		errs = append(errs, "audit.path is required when the audit trail is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetDiscoveryDelay returns the pause between discovery attempts as a Duration.
func (c *Config) GetDiscoveryDelay() time.Duration {
	return time.Duration(c.Camera.Discovery.DelaySeconds) * time.Second
}

// GetStatusInterval returns the statistics reporting interval as a Duration.
func (c *Config) GetStatusInterval() time.Duration {
	return time.Duration(c.Camera.StatusInterval) * time.Second
}
