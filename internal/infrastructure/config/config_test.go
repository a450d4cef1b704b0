package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validConfigYAML is the minimal configuration accepted by Validate().
const validConfigYAML = `
site:
  id: "test-site"
cameras:
  - serial: "Q2GV-TEST-0001"
    zones:
      - id: "1"
        name: "Start"
      - id: "2"
        name: "Far"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 5000
cloud:
  base_url: "https://cloud.example.test/api"
  api_key: "test-key"
  step_timeout: 10
bot:
  url: "https://bot.example.test/messages"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if len(cfg.Cameras) != 1 {
		t.Fatalf("len(Cameras) = %d, want 1", len(cfg.Cameras))
	}
	if cfg.Cameras[0].Serial != "Q2GV-TEST-0001" {
		t.Errorf("Cameras[0].Serial = %q, want %q", cfg.Cameras[0].Serial, "Q2GV-TEST-0001")
	}
	if cfg.Cameras[0].Zones[1].Name != "Far" {
		t.Errorf("zone name = %q, want %q", cfg.Cameras[0].Zones[1].Name, "Far")
	}
	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Scenario defaults come from defaultConfig, not the file
	if cfg.Scenario.WarnThreshold != 7 {
		t.Errorf("Scenario.WarnThreshold = %d, want 7", cfg.Scenario.WarnThreshold)
	}
	if cfg.Scenario.WarnCap != 2 {
		t.Errorf("Scenario.WarnCap = %d, want 2", cfg.Scenario.WarnCap)
	}
	if got := cfg.GetWarnThreshold(); got != 7*time.Second {
		t.Errorf("GetWarnThreshold() = %v, want 7s", got)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ROOMSENSE_MQTT_HOST", "broker.example.test")
	t.Setenv("ROOMSENSE_CLOUD_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example.test" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.Cloud.APIKey != "env-key" {
		t.Errorf("Cloud.APIKey = %q, want env override", cfg.Cloud.APIKey)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing site id",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantSub: "site.id",
		},
		{
			name:    "no cameras",
			mutate:  func(c *Config) { c.Cameras = nil },
			wantSub: "at least one camera",
		},
		{
			name: "duplicate serial",
			mutate: func(c *Config) {
				c.Cameras = append(c.Cameras, c.Cameras[0])
			},
			wantSub: "duplicated",
		},
		{
			name: "camera without zones",
			mutate: func(c *Config) {
				c.Cameras[0].Zones = nil
			},
			wantSub: "no zones",
		},
		{
			name:    "bad qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantSub: "mqtt.qos",
		},
		{
			name:    "bad warn cap",
			mutate:  func(c *Config) { c.Scenario.WarnCap = 0 },
			wantSub: "warn_cap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfigYAML))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}
