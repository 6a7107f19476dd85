package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
camera:
  serial_number: "20435008"
  parameter_file: "/etc/spinbridge/parameters.cfg"
  frame_id: "left_cam"
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-bridge"
  qos: 0
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Camera.SerialNumber != "20435008" {
		t.Errorf("Camera.SerialNumber = %q, want %q", cfg.Camera.SerialNumber, "20435008")
	}

	if cfg.Camera.FrameID != "left_cam" {
		t.Errorf("Camera.FrameID = %q, want %q", cfg.Camera.FrameID, "left_cam")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	// Defaults survive a partial file
	if cfg.Camera.Discovery.Attempts != 5 {
		t.Errorf("Camera.Discovery.Attempts = %d, want default 5", cfg.Camera.Discovery.Attempts)
	}
	if cfg.Camera.StatusInterval != 5 {
		t.Errorf("Camera.StatusInterval = %d, want default 5", cfg.Camera.StatusInterval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return defaultConfig()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing serial",
			mutate:  func(c *Config) { c.Camera.SerialNumber = "" },
			wantErr: true,
		},
		{
			name:    "missing parameter file",
			mutate:  func(c *Config) { c.Camera.ParameterFile = "" },
			wantErr: true,
		},
		{
			name:    "zero discovery attempts",
			mutate:  func(c *Config) { c.Camera.Discovery.Attempts = 0 },
			wantErr: true,
		},
		{
			name:    "zero status interval",
			mutate:  func(c *Config) { c.Camera.StatusInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: true,
		},
		{
			name:    "metrics enabled without URL",
			mutate:  func(c *Config) { c.Metrics.Enabled = true },
			wantErr: true,
		},
		{
			name: "metrics enabled with URL",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.URL = "http://localhost:8086"
			},
			wantErr: false,
		},
		{
			name: "audit enabled without path",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.Path = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SPINBRIDGE_CAMERA_SERIAL", "99887766")
	t.Setenv("SPINBRIDGE_CAMERA_PARAMETER_FILE", "/custom/parameters.cfg")
	t.Setenv("SPINBRIDGE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SPINBRIDGE_MQTT_USERNAME", "testuser")
	t.Setenv("SPINBRIDGE_MQTT_PASSWORD", "testpass")
	t.Setenv("SPINBRIDGE_METRICS_TOKEN", "secret-token")
	t.Setenv("SPINBRIDGE_AUDIT_PATH", "/custom/audit.db")

	applyEnvOverrides(cfg)

	if cfg.Camera.SerialNumber != "99887766" {
		t.Errorf("Camera.SerialNumber = %q, want %q", cfg.Camera.SerialNumber, "99887766")
	}

	if cfg.Camera.ParameterFile != "/custom/parameters.cfg" {
		t.Errorf("Camera.ParameterFile = %q, want %q", cfg.Camera.ParameterFile, "/custom/parameters.cfg")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.Metrics.Token != "secret-token" {
		t.Errorf("Metrics.Token = %q, want %q", cfg.Metrics.Token, "secret-token")
	}

	if cfg.Audit.Path != "/custom/audit.db" {
		t.Errorf("Audit.Path = %q, want %q", cfg.Audit.Path, "/custom/audit.db")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Camera.Discovery.Attempts != 5 {
		t.Errorf("defaultConfig Discovery.Attempts = %d, want 5", cfg.Camera.Discovery.Attempts)
	}

	if cfg.Camera.Discovery.DelaySeconds != 1 {
		t.Errorf("defaultConfig Discovery.DelaySeconds = %d, want 1", cfg.Camera.Discovery.DelaySeconds)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if got := cfg.GetStatusInterval().Seconds(); got != 5 {
		t.Errorf("GetStatusInterval() = %vs, want 5s", got)
	}

	if got := cfg.GetDiscoveryDelay().Seconds(); got != 1 {
		t.Errorf("GetDiscoveryDelay() = %vs, want 1s", got)
	}
}
