package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  id: "test-site"
api:
  port: 9090
storage:
  save_destination: sqlite
  load_sources: [yaml, sqlite]
  dedup: true
  sqlite:
    path: "/tmp/test.db"
  mqtt:
    broker:
      host: "broker.local"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Storage.SaveDestination != FacilitySQLite {
		t.Errorf("Storage.SaveDestination = %q, want %q", cfg.Storage.SaveDestination, FacilitySQLite)
	}
	if want := []string{FacilityYAML, FacilitySQLite}; !slices.Equal(cfg.Storage.LoadSources, want) {
		t.Errorf("Storage.LoadSources = %v, want %v", cfg.Storage.LoadSources, want)
	}
	if !cfg.Storage.Dedup {
		t.Error("Storage.Dedup = false, want true")
	}
	if cfg.Storage.SQLite.Path != "/tmp/test.db" {
		t.Errorf("Storage.SQLite.Path = %q, want %q", cfg.Storage.SQLite.Path, "/tmp/test.db")
	}
	if cfg.Storage.MQTT.Broker.Host != "broker.local" {
		t.Errorf("Storage.MQTT.Broker.Host = %q, want %q", cfg.Storage.MQTT.Broker.Host, "broker.local")
	}
	// Unset fields keep their defaults.
	if cfg.Storage.MQTT.Broker.Port != 1883 {
		t.Errorf("Storage.MQTT.Broker.Port = %d, want 1883", cfg.Storage.MQTT.Broker.Port)
	}
	if !cfg.UsesFacility(FacilityYAML) {
		t.Error("UsesFacility(yaml) = false, want true")
	}
	if cfg.UsesFacility(FacilityMQTT) {
		t.Error("UsesFacility(mqtt) = true, want false")
	}
	if err := cfg.ValidateSecurity(); err != nil {
		t.Errorf("ValidateSecurity() error = %v", err)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Storage.SaveDestination != FacilityYAML {
		t.Errorf("Storage.SaveDestination = %q, want %q", cfg.Storage.SaveDestination, FacilityYAML)
	}
	if cfg.Storage.YAML.Path != "./data/registry.yaml" {
		t.Errorf("Storage.YAML.Path = %q, want ./data/registry.yaml", cfg.Storage.YAML.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "storage: [unclosed"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, `
storage:
  save_destination: floppy
`))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), `unknown facility "floppy"`) {
		t.Errorf("Load() error = %v, want unknown facility", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing site", func(c *Config) { c.Site.ID = "" }, "site.id"},
		{"bad port", func(c *Config) { c.API.Port = 70000 }, "api.port"},
		{"no storage", func(c *Config) {
			c.Storage.SaveDestination = ""
			c.Storage.LoadSources = nil
		}, ""},
		{"fs without root", func(c *Config) {
			c.Storage.LoadSources = []string{FacilityFS}
			c.Storage.FS.Root = ""
		}, "storage.fs.root"},
		{"mqtt qos", func(c *Config) {
			c.Storage.SaveDestination = FacilityMQTT
			c.Storage.MQTT.QoS = 3
		}, "storage.mqtt.qos"},
		{"influx bucket", func(c *Config) {
			c.Storage.SaveDestination = FacilityInfluxDB
			c.Storage.InfluxDB.Bucket = ""
		}, "storage.influxdb"},
		{"unused facility is not checked", func(c *Config) { c.Storage.SQLite.Path = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateSecurity(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.ValidateSecurity(); err == nil {
		t.Error("ValidateSecurity() with empty secret: expected error")
	}

	cfg.Security.JWT.Secret = "short"
	err := cfg.ValidateSecurity()
	if err == nil || !strings.Contains(err.Error(), "at least 32") {
		t.Errorf("ValidateSecurity() with short secret error = %v, want length error", err)
	}

	cfg.Security.JWT.Secret = strings.Repeat("s", 32)
	if err := cfg.ValidateSecurity(); err != nil {
		t.Errorf("ValidateSecurity() error = %v", err)
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := defaultConfig()
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"read", cfg.GetReadTimeout(), 30 * time.Second},
		{"write", cfg.GetWriteTimeout(), 30 * time.Second},
		{"idle", cfg.GetIdleTimeout(), 60 * time.Second},
		{"access token", cfg.GetAccessTokenTTL(), 15 * time.Minute},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s timeout = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GRAYLOGIC_REGISTRY_API_PORT", "9191")
	t.Setenv("GRAYLOGIC_REGISTRY_STORAGE_SAVE_DESTINATION", "fs")
	t.Setenv("GRAYLOGIC_REGISTRY_STORAGE_LOAD_SOURCES", "yaml, fs ,")
	t.Setenv("GRAYLOGIC_REGISTRY_FS_ROOT", "/var/lib/registry")
	t.Setenv("GRAYLOGIC_REGISTRY_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYLOGIC_REGISTRY_MQTT_USERNAME", "testuser")
	t.Setenv("GRAYLOGIC_REGISTRY_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GRAYLOGIC_REGISTRY_JWT_SECRET", "jwt-secret")

	cfg := defaultConfig()
	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.API.Port != 9191 {
		t.Errorf("API.Port = %d, want 9191", cfg.API.Port)
	}
	if cfg.Storage.SaveDestination != FacilityFS {
		t.Errorf("Storage.SaveDestination = %q, want %q", cfg.Storage.SaveDestination, FacilityFS)
	}
	if want := []string{FacilityYAML, FacilityFS}; !slices.Equal(cfg.Storage.LoadSources, want) {
		t.Errorf("Storage.LoadSources = %v, want %v", cfg.Storage.LoadSources, want)
	}
	if cfg.Storage.FS.Root != "/var/lib/registry" {
		t.Errorf("Storage.FS.Root = %q, want /var/lib/registry", cfg.Storage.FS.Root)
	}
	if cfg.Storage.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("Storage.MQTT.Broker.Host = %q, want mqtt.example.com", cfg.Storage.MQTT.Broker.Host)
	}
	if cfg.Storage.MQTT.Auth.Username != "testuser" {
		t.Errorf("Storage.MQTT.Auth.Username = %q, want testuser", cfg.Storage.MQTT.Auth.Username)
	}
	if cfg.Storage.InfluxDB.Token != "secret-token" {
		t.Errorf("Storage.InfluxDB.Token = %q, want secret-token", cfg.Storage.InfluxDB.Token)
	}
	if cfg.Security.JWT.Secret != "jwt-secret" {
		t.Errorf("Security.JWT.Secret = %q, want jwt-secret", cfg.Security.JWT.Secret)
	}
}

func TestApplyEnvOverrides_BadPort(t *testing.T) {
	t.Setenv("GRAYLOGIC_REGISTRY_API_PORT", "http")
	if err := applyEnvOverrides(defaultConfig()); err == nil {
		t.Error("applyEnvOverrides() expected error for non-numeric port")
	}
}

func TestApplyEnvOverrides_EmptySaveDestinationDisablesSave(t *testing.T) {
	t.Setenv("GRAYLOGIC_REGISTRY_STORAGE_SAVE_DESTINATION", "")
	cfg := defaultConfig()
	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}
	if cfg.Storage.SaveDestination != "" {
		t.Errorf("Storage.SaveDestination = %q, want empty", cfg.Storage.SaveDestination)
	}
}
