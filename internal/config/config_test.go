package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RelayURL == "" {
		t.Error("RelayURL should have a default")
	}
	if cfg.RequestTimeout != 300 {
		t.Errorf("RequestTimeout = %d, want 300", cfg.RequestTimeout)
	}
	if cfg.Timeout() != 300*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.Relay.Model != "google/gemini-3-flash-preview" {
		t.Errorf("Relay.Model = %q", cfg.Relay.Model)
	}
	if cfg.Markdown.Style != "vestry" {
		t.Errorf("Markdown.Style = %q", cfg.Markdown.Style)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if want := filepath.Join(home, ".vestry", "config.json"); path != want {
		t.Errorf("GetConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadConfigFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfigFrom() = %+v, want defaults", cfg)
	}
}

func TestLoadConfigFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "relay_url": "https://relay.example/outfit-chat",
  "request_timeout": 45,
  "markdown": {"style": "light"},
  "relay": {"model": "other-model"}
}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.RelayURL != "https://relay.example/outfit-chat" {
		t.Errorf("RelayURL = %q", cfg.RelayURL)
	}
	if cfg.RequestTimeout != 45 {
		t.Errorf("RequestTimeout = %d", cfg.RequestTimeout)
	}
	if cfg.Markdown.Style != "light" {
		t.Errorf("Markdown.Style = %q", cfg.Markdown.Style)
	}
	if !cfg.Markdown.EnableEmoji {
		t.Error("unset nested keys should keep their defaults")
	}
	if cfg.Relay.Model != "other-model" || cfg.Relay.ListenAddr != "127.0.0.1:8787" {
		t.Errorf("Relay = %+v", cfg.Relay)
	}
}

func TestLoadConfigFrom_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"api_key": "from-file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VESTRY_API_KEY", "from-env")
	t.Setenv("VESTRY_RELAY_GATEWAY_API_KEY", "gw-key")
	t.Setenv("VESTRY_LOG_LEVEL", "debug")

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, env should win over file", cfg.APIKey)
	}
	if cfg.Relay.GatewayAPIKey != "gw-key" {
		t.Errorf("Relay.GatewayAPIKey = %q", cfg.Relay.GatewayAPIKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfigFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err == nil {
		t.Error("LoadConfigFrom() should fail on invalid JSON")
	}
	if cfg != DefaultConfig() {
		t.Error("LoadConfigFrom() should return defaults on error")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.WardrobeFile = "/tmp/wardrobe.yaml"
	cfg.CopyToClipboard = true
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded != cfg {
		t.Errorf("LoadConfig() = %+v, want %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty relay url", func(c *Config) { c.RelayURL = " " }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"uppercase level", func(c *Config) { c.LogLevel = "DEBUG" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
