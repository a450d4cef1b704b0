package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for RoomSense Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Cameras  []CameraConfig `yaml:"cameras"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	Cloud    CloudConfig    `yaml:"cloud"`
	Endpoint EndpointConfig `yaml:"endpoint"`
	Bot      BotConfig      `yaml:"bot"`
	Scenario ScenarioConfig `yaml:"scenario"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// CameraConfig describes one monitored camera and its detection zones.
// The serial is the MQTT topic key; zones are the camera's configured
// sub-regions in detection order.
type CameraConfig struct {
	Serial string       `yaml:"serial"`
	Zones  []ZoneConfig `yaml:"zones"`
}

// ZoneConfig is a single detection zone (id as reported on the wire,
// name as shown to scenario logic, e.g. "Start" or "Far").
type ZoneConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings for the scenario
// execution log.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
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

// APIConfig contains HTTP command server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CloudConfig contains the camera cloud / data API settings used by the
// identity-resolution chain (network lookup, snapshot, person identification,
// room and meeting lookups).
type CloudConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// StepTimeout bounds each individual lookup call (seconds).
	StepTimeout int `yaml:"step_timeout"`
}

// EndpointConfig contains fallback credentials for the meeting-room
// conferencing endpoint. Normally the endpoint is resolved per-room via the
// cloud API; these values are used by test routes and as connection defaults.
type EndpointConfig struct {
	IP       string `yaml:"ip"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// BotConfig contains chat bot settings.
type BotConfig struct {
	URL string `yaml:"url"`
}

// ScenarioConfig contains scenario tuning knobs.
type ScenarioConfig struct {
	// WarnThreshold is the minimum interval between warnings (seconds).
	WarnThreshold int `yaml:"warn_threshold"`
	// WarnCap is the maximum number of warnings per process lifetime.
	WarnCap int `yaml:"warn_cap"`
	// FallbackUsername is substituted when the same resolved user would be
	// warned twice (two-seat policy).
	FallbackUsername string `yaml:"fallback_username"`
	// Default toggle states. Toggles can only be switched on at runtime.
	EnterEnabled     bool `yaml:"enter_enabled"`
	WarnEnabled      bool `yaml:"warn_enabled"`
	RecordingEnabled bool `yaml:"recording_enabled"`
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
// Environment variables follow the pattern: ROOMSENSE_SECTION_KEY
// For example: ROOMSENSE_MQTT_HOST, ROOMSENSE_CLOUD_API_KEY
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
		Site: SiteConfig{
			ID:   "site-001",
			Name: "RoomSense",
		},
		Database: DatabaseConfig{
			Path:        "./data/roomsense.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "roomsense-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 5000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Cloud: CloudConfig{
			BaseURL:     "https://api.meraki.com/api/v0",
			StepTimeout: 10,
		},
		Scenario: ScenarioConfig{
			WarnThreshold:    7,
			WarnCap:          2,
			FallbackUsername: "guest",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ROOMSENSE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("ROOMSENSE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("ROOMSENSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ROOMSENSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ROOMSENSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("ROOMSENSE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("ROOMSENSE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Cloud API key (IMPORTANT: prefer env over file in production)
	if v := os.Getenv("ROOMSENSE_CLOUD_API_KEY"); v != "" {
		cfg.Cloud.APIKey = v
	}
	if v := os.Getenv("ROOMSENSE_CLOUD_BASE_URL"); v != "" {
		cfg.Cloud.BaseURL = v
	}

	// Endpoint credentials
	if v := os.Getenv("ROOMSENSE_ENDPOINT_PASSWORD"); v != "" {
		cfg.Endpoint.Password = v
	}

	// Bot
	if v := os.Getenv("ROOMSENSE_BOT_URL"); v != "" {
		cfg.Bot.URL = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Camera topology validation
	if len(c.Cameras) == 0 {
		errs = append(errs, "at least one camera is required")
	}
	seen := make(map[string]bool, len(c.Cameras))
	for i, cam := range c.Cameras {
		if cam.Serial == "" {
			errs = append(errs, fmt.Sprintf("cameras[%d].serial is required", i))
			continue
		}
		if seen[cam.Serial] {
			errs = append(errs, fmt.Sprintf("cameras[%d].serial %q is duplicated", i, cam.Serial))
		}
		seen[cam.Serial] = true
		if len(cam.Zones) == 0 {
			errs = append(errs, fmt.Sprintf("camera %q has no zones", cam.Serial))
		}
		for j, zone := range cam.Zones {
			if zone.ID == "" || zone.Name == "" {
				errs = append(errs, fmt.Sprintf("camera %q zone[%d] needs both id and name", cam.Serial, j))
			}
		}
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Cloud validation
	if c.Cloud.BaseURL == "" {
		errs = append(errs, "cloud.base_url is required")
	}
	if c.Cloud.StepTimeout < 1 {
		errs = append(errs, "cloud.step_timeout must be at least 1 second")
	}

	// Scenario validation
	if c.Scenario.WarnThreshold < 1 {
		errs = append(errs, "scenario.warn_threshold must be at least 1 second")
	}
	if c.Scenario.WarnCap < 1 {
		errs = append(errs, "scenario.warn_cap must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}

// GetWarnThreshold returns the warn rate-limit interval as a Duration.
func (c *Config) GetWarnThreshold() time.Duration {
	return time.Duration(c.Scenario.WarnThreshold) * time.Second
}

// GetStepTimeout returns the per-step lookup timeout as a Duration.
func (c CloudConfig) GetStepTimeout() time.Duration {
	return time.Duration(c.StepTimeout) * time.Second
}
