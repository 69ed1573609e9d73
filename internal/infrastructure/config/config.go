package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage facility names accepted in storage.save_destination and
// storage.load_sources.
const (
	FacilityHeap     = "heap"
	FacilityFS       = "fs"
	FacilityYAML     = "yaml"
	FacilitySQLite   = "sqlite"
	FacilityMQTT     = "mqtt"
	FacilityInfluxDB = "influxdb"
)

// Facilities lists every known storage facility name.
var Facilities = []string{FacilityHeap, FacilityFS, FacilityYAML, FacilitySQLite, FacilityMQTT, FacilityInfluxDB}

// Config is the root configuration structure for the Gray Logic registry.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
	Storage   StorageConfig   `yaml:"storage"`
}

// SiteConfig identifies the device this registry belongs to.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains settings for the change feed.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// StorageConfig selects and configures the registry's storage facilities.
type StorageConfig struct {
	// SaveDestination names the facility written by save. Empty disables save.
	SaveDestination string `yaml:"save_destination"`

	// LoadSources names the facilities read by load, in order. Later sources
	// override earlier ones.
	LoadSources []string `yaml:"load_sources"`

	// Dedup skips writing parameters the destination already holds.
	Dedup bool `yaml:"dedup"`

	FS       FSConfig       `yaml:"fs"`
	YAML     YAMLConfig     `yaml:"yaml"`
	SQLite   DatabaseConfig `yaml:"sqlite"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
}

// FSConfig configures the filesystem facility.
type FSConfig struct {
	Root string `yaml:"root"`

	// Watch reloads values changed on disk while serving.
	Watch bool `yaml:"watch"`
}

// YAMLConfig configures the YAML snapshot facility.
type YAMLConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig contains SQLite database settings.
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

	// TopicPrefix is prepended to every value topic.
	TopicPrefix string `yaml:"topic_prefix"`

	// LoadQuiet is how long load waits for further retained messages (ms).
	LoadQuiet int `yaml:"load_quiet"`
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

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_REGISTRY_SECTION_KEY
// For example: GRAYLOGIC_REGISTRY_SQLITE_PATH, GRAYLOGIC_REGISTRY_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

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
			Name: "Gray Logic",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 15,
			},
		},
		Storage: StorageConfig{
			SaveDestination: FacilityYAML,
			LoadSources:     []string{FacilityYAML},
			FS: FSConfig{
				Root: "./data/registry",
			},
			YAML: YAMLConfig{
				Path: "./data/registry.yaml",
			},
			SQLite: DatabaseConfig{
				Path:        "./data/registry.db",
				WALMode:     true,
				BusyTimeout: 5,
			},
			MQTT: MQTTConfig{
				Broker: MQTTBrokerConfig{
					Host:     "localhost",
					Port:     1883,
					ClientID: "graylogic-registry",
				},
				QoS: 1,
				Reconnect: MQTTReconnectConfig{
					InitialDelay: 1,
					MaxDelay:     60,
				},
				TopicPrefix: "graylogic/registry",
				LoadQuiet:   500,
			},
			InfluxDB: InfluxDBConfig{
				URL:           "http://localhost:8086",
				Org:           "graylogic",
				Bucket:        "registry",
				BatchSize:     100,
				FlushInterval: 10,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_REGISTRY_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	const prefix = "GRAYLOGIC_REGISTRY_"
	env := func(key string) string { return os.Getenv(prefix + key) }

	// Site
	if v := env("SITE_ID"); v != "" {
		cfg.Site.ID = v
	}

	// Logging
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// API
	if v := env("API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := env("API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sAPI_PORT: %w", prefix, err)
		}
		cfg.API.Port = port
	}

	// Storage selection
	if v, ok := os.LookupEnv(prefix + "STORAGE_SAVE_DESTINATION"); ok {
		cfg.Storage.SaveDestination = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(prefix + "STORAGE_LOAD_SOURCES"); ok {
		cfg.Storage.LoadSources = splitList(v)
	}
	if v := env("FS_ROOT"); v != "" {
		cfg.Storage.FS.Root = v
	}
	if v := env("YAML_PATH"); v != "" {
		cfg.Storage.YAML.Path = v
	}
	if v := env("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}

	// MQTT
	if v := env("MQTT_HOST"); v != "" {
		cfg.Storage.MQTT.Broker.Host = v
	}
	if v := env("MQTT_USERNAME"); v != "" {
		cfg.Storage.MQTT.Auth.Username = v
	}
	if v := env("MQTT_PASSWORD"); v != "" {
		cfg.Storage.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := env("INFLUXDB_URL"); v != "" {
		cfg.Storage.InfluxDB.URL = v
	}
	if v := env("INFLUXDB_TOKEN"); v != "" {
		cfg.Storage.InfluxDB.Token = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := env("JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for errors.
//
// The JWT secret is not checked here because only the API server and token
// command need it; they call ValidateSecurity.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	st := c.Storage
	used := slices.Clone(st.LoadSources)
	if st.SaveDestination != "" {
		used = append(used, st.SaveDestination)
	}
	for _, name := range used {
		if !slices.Contains(Facilities, name) {
			errs = append(errs, fmt.Sprintf("storage: unknown facility %q (want one of %s)", name, strings.Join(Facilities, ", ")))
			continue
		}
		switch name {
		case FacilityFS:
			if st.FS.Root == "" {
				errs = append(errs, "storage.fs.root is required")
			}
		case FacilityYAML:
			if st.YAML.Path == "" {
				errs = append(errs, "storage.yaml.path is required")
			}
		case FacilitySQLite:
			if st.SQLite.Path == "" {
				errs = append(errs, "storage.sqlite.path is required")
			}
		case FacilityMQTT:
			if st.MQTT.QoS < 0 || st.MQTT.QoS > 2 {
				errs = append(errs, "storage.mqtt.qos must be 0, 1, or 2")
			}
			if st.MQTT.TopicPrefix == "" {
				errs = append(errs, "storage.mqtt.topic_prefix is required")
			}
		case FacilityInfluxDB:
			if st.InfluxDB.URL == "" || st.InfluxDB.Bucket == "" {
				errs = append(errs, "storage.influxdb.url and bucket are required")
			}
		}
	}

	if len(errs) > 0 {
		errs = slices.Compact(errs)
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ValidateSecurity checks the settings required to issue and verify tokens.
//
// Empty or weak secrets would allow anyone to forge tokens and rewrite the
// device configuration over the API.
func (c *Config) ValidateSecurity() error {
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		return errors.New("security.jwt.secret is required (set GRAYLOGIC_REGISTRY_JWT_SECRET environment variable)")
	}
	if len(c.Security.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("security.jwt.secret must be at least %d characters for adequate security", minJWTSecretLength)
	}
	return nil
}

// UsesFacility reports whether name is the save destination or a load source.
func (c *Config) UsesFacility(name string) bool {
	return c.Storage.SaveDestination == name || slices.Contains(c.Storage.LoadSources, name)
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetAccessTokenTTL returns the lifetime of issued access tokens.
func (c *Config) GetAccessTokenTTL() time.Duration {
	return time.Duration(c.Security.JWT.AccessTokenTTL) * time.Minute
}
