// Package config handles configuration loading for gavchat.
//
// Configuration lives in a YAML settings file (settings.yaml in the gavchat
// data directory, or an explicit --config path). Everything has a usable
// default so the chat works against a local backend with zero configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// BackendURLEnv overrides the backend URL from the environment.
	BackendURLEnv = "GAVCHAT_BACKEND_URL"

	// DefaultAppName is the ADK application the backend hosts the agents under.
	DefaultAppName = "gavigans_agent"

	// DefaultWelcomeMessage seeds a fresh conversation.
	DefaultWelcomeMessage = "Hi! 👋 How can we help you today?"

	// DefaultReconnectInterval is the fixed delay between inbox reconnection
	// attempts. Reconnection retries forever: human-handoff delivery is
	// favored over resource conservation.
	DefaultReconnectInterval = 3 * time.Second
)

// Config represents the complete gavchat configuration.
type Config struct {
	// BackendURL is the base URL of the hosted agent backend.
	BackendURL string `yaml:"backend_url"`
	// AppName is the ADK application name used in session and run requests.
	AppName string `yaml:"app_name"`
	// WelcomeMessage is the single message a fresh or reset conversation
	// starts with.
	WelcomeMessage string `yaml:"welcome_message"`
	// Launch carries the launch parameters the widget was embedded with.
	Launch LaunchParams `yaml:"launch"`
	// Inbox configures the inbound human-agent channel.
	Inbox InboxConfig `yaml:"inbox"`
	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// InboxConfig configures the inbound listener.
type InboxConfig struct {
	// ReconnectInterval is the fixed delay between reconnection attempts,
	// e.g. "3s". There is no retry ceiling.
	ReconnectInterval string `yaml:"reconnect_interval"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	JSON       bool   `yaml:"json"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BackendURL:     "http://localhost:8000",
		AppName:        DefaultAppName,
		WelcomeMessage: DefaultWelcomeMessage,
	}
}

// Load reads and parses the configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOrDefault loads the configuration from path, falling back to the
// defaults when the file does not exist. Environment overrides are applied
// in both cases.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Parse parses YAML configuration data into a Config struct, filling in
// defaults for anything left unset.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = Default().BackendURL
	}
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}
	if cfg.WelcomeMessage == "" {
		cfg.WelcomeMessage = DefaultWelcomeMessage
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if url := os.Getenv(BackendURLEnv); url != "" {
		c.BackendURL = url
	}
}

// ReconnectInterval returns the parsed inbox reconnect interval, falling
// back to the default on an empty or malformed value.
func (c *Config) ReconnectInterval() time.Duration {
	if c.Inbox.ReconnectInterval == "" {
		return DefaultReconnectInterval
	}
	d, err := time.ParseDuration(c.Inbox.ReconnectInterval)
	if err != nil || d <= 0 {
		return DefaultReconnectInterval
	}
	return d
}
