// Package config handles layered configuration for vestry: defaults, then
// ~/.vestry/config.json, then VESTRY_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VESTRY_RELAY_URL or
// VESTRY_RELAY_GATEWAY_API_KEY for relay.gateway_api_key
const EnvPrefix = "VESTRY"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" mapstructure:"style"`                         // glamour style name or path to a JSON style
	EnableEmoji      bool   `json:"enable_emoji" mapstructure:"enable_emoji"`           // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" mapstructure:"preserve_newlines"` // Preserve original line breaks
}

// RelayConfig configures `vestry serve`
type RelayConfig struct {
	ListenAddr    string `json:"listen_addr" mapstructure:"listen_addr"`
	GatewayURL    string `json:"gateway_url" mapstructure:"gateway_url"`
	GatewayAPIKey string `json:"gateway_api_key,omitempty" mapstructure:"gateway_api_key"`
	Model         string `json:"model" mapstructure:"model"`
}

// Config represents the user configuration
type Config struct {
	// RelayURL is the outfit-chat endpoint the chat client posts to.
	RelayURL string `json:"relay_url" mapstructure:"relay_url"`
	// APIKey is sent as the bearer token to the relay.
	APIKey string `json:"api_key,omitempty" mapstructure:"api_key"`
	// WardrobeFile is a YAML or JSON item list. Empty means the starter wardrobe.
	WardrobeFile string `json:"wardrobe_file,omitempty" mapstructure:"wardrobe_file"`
	// RequestTimeout bounds one streamed reply, in seconds.
	RequestTimeout  int            `json:"request_timeout" mapstructure:"request_timeout"`
	LogLevel        string         `json:"log_level" mapstructure:"log_level"`
	CopyToClipboard bool           `json:"copy_to_clipboard" mapstructure:"copy_to_clipboard"`
	Markdown        MarkdownConfig `json:"markdown" mapstructure:"markdown"`
	Relay           RelayConfig    `json:"relay" mapstructure:"relay"`
}

// Timeout returns RequestTimeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "vestry",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		RelayURL:        "http://127.0.0.1:8787/outfit-chat",
		RequestTimeout:  300,
		LogLevel:        "warn",
		CopyToClipboard: false,
		Markdown:        DefaultMarkdownConfig(),
		Relay: RelayConfig{
			ListenAddr: "127.0.0.1:8787",
			GatewayURL: "https://ai.gateway.lovable.dev/v1/chat/completions",
			Model:      "google/gemini-3-flash-preview",
		},
	}
}

// LogLevels returns the accepted log_level values
func LogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks values that cannot be defaulted silently
func (c Config) Validate() error {
	if strings.TrimSpace(c.RelayURL) == "" {
		return fmt.Errorf("relay_url cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %d", c.RequestTimeout)
	}
	level := strings.ToLower(c.LogLevel)
	for _, l := range LogLevels() {
		if level == l {
			return nil
		}
	}
	return fmt.Errorf("unknown log_level %q (want one of %s)", c.LogLevel, strings.Join(LogLevels(), ", "))
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".vestry"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the config may hold API keys
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads defaults, then the JSON file at path if it exists,
// then environment overrides
func LoadConfigFrom(path string) (Config, error) {
	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the default path
func SaveConfig(cfg Config) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(configPath, cfg)
}

// SaveConfigTo writes cfg as indented JSON to path
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0o600: the config may hold API keys
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("relay_url", def.RelayURL)
	v.SetDefault("api_key", def.APIKey)
	v.SetDefault("wardrobe_file", def.WardrobeFile)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("copy_to_clipboard", def.CopyToClipboard)
	v.SetDefault("markdown.style", def.Markdown.Style)
	v.SetDefault("markdown.enable_emoji", def.Markdown.EnableEmoji)
	v.SetDefault("markdown.preserve_newlines", def.Markdown.PreserveNewLines)
	v.SetDefault("relay.listen_addr", def.Relay.ListenAddr)
	v.SetDefault("relay.gateway_url", def.Relay.GatewayURL)
	v.SetDefault("relay.gateway_api_key", def.Relay.GatewayAPIKey)
	v.SetDefault("relay.model", def.Relay.Model)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}
