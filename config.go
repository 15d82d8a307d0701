package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	koanfenv "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// Config represents the application configuration structure
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Logging LoggingConfig `koanf:"logging"`
	UI      UIConfig      `koanf:"ui"`
	Chat    ChatConfig    `koanf:"chat"`
	History HistoryConfig `koanf:"history"`
}

// ServerConfig holds backend connection configuration
type ServerConfig struct {
	BaseURL        string `koanf:"base_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	DatabasePath string `koanf:"database_path"` // Path to SQLite database
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ChatConfig holds chat behavior configuration
type ChatConfig struct {
	// RevealDelayMs is the per-character delay when typing out an answer
	RevealDelayMs int `koanf:"reveal_delay_ms"`
	// StreamTimeoutSeconds bounds a whole answer stream, not a single read
	StreamTimeoutSeconds int `koanf:"stream_timeout_seconds"`
	// AbortOnTabSwitch cancels an in-flight answer when the user switches
	// tabs instead of letting it finish in the background
	AbortOnTabSwitch bool `koanf:"abort_on_tab_switch"`
}

// HistoryConfig holds prompt history configuration
type HistoryConfig struct {
	Enabled    bool `koanf:"enabled"`
	MaxEntries int  `koanf:"max_entries"`
	MaxAgeDays int  `koanf:"max_age_days"`
}

// UIConfig holds UI-specific configuration
type UIConfig struct {
	MarkdownEnabled bool `koanf:"markdown_enabled"`
}

// defaultConfig returns the configuration populated with sensible defaults.
func defaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".local", "share", "moa", "moa.sqlite")

	return Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8080",
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			DatabasePath: dbPath,
		},
		Chat: ChatConfig{
			RevealDelayMs:        10,
			StreamTimeoutSeconds: 120,
			AbortOnTabSwitch:     false,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 200,
			MaxAgeDays: 30,
		},
		UI: UIConfig{
			MarkdownEnabled: true,
		},
	}
}

// LoadConfig loads configuration from multiple sources
func LoadConfig() (*Config, error) {
	// Create a new koanf instance
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get user home directory: %v", err)
	} else {
		userConfigPath := filepath.Join(homeDir, ".config", "moa", "conf.toml")
		if err := k.Load(file.Provider(userConfigPath), koanftoml.Parser()); err != nil {
			log.Printf("Failed to load user config from %s: %v", userConfigPath, err)
		}
	}

	// Environment variables with prefix "MOA_" override config values
	// e.g., MOA_SERVER_BASE_URL overrides server.base_url
	if err := k.Load(koanfenv.Provider(".", koanfenv.Opt{
		Prefix: "MOA_",
		TransformFunc: func(key, value string) (string, any) {
			// Only the first underscore separates the section, so
			// MOA_SERVER_BASE_URL becomes "server.base_url"
			key = strings.ToLower(strings.TrimPrefix(key, "MOA_"))
			if section, rest, ok := strings.Cut(key, "_"); ok {
				key = section + "." + rest
			}
			return key, value
		},
	}), nil); err != nil {
		log.Printf("Failed to load environment variables: %v", err)
	}

	// Unmarshal the configuration into our struct
	config := defaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Chat.RevealDelayMs < 0 {
		config.Chat.RevealDelayMs = 0
	}
	if config.Chat.StreamTimeoutSeconds <= 0 {
		config.Chat.StreamTimeoutSeconds = 120
	}
	if config.Server.TimeoutSeconds <= 0 {
		config.Server.TimeoutSeconds = 30
	}

	return &config, nil
}

// SaveServerConfig persists the backend base URL to ~/.config/moa/conf.toml
func SaveServerConfig(baseURL string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home dir: %w", err)
	}
	cfgDir := filepath.Join(homeDir, ".config", "moa")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	cfgPath := filepath.Join(cfgDir, "conf.toml")

	k := koanf.New(".")
	if _, err := os.Stat(cfgPath); err == nil {
		if err := k.Load(file.Provider(cfgPath), koanftoml.Parser()); err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
	}

	if err := k.Set("server.base_url", baseURL); err != nil {
		return fmt.Errorf("failed to update base_url in config: %w", err)
	}

	data, err := k.Marshal(koanftoml.Parser())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
