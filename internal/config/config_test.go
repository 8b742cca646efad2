package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.BackendURL == "" {
		t.Error("default backend URL is empty")
	}
	if cfg.AppName != DefaultAppName {
		t.Errorf("AppName = %q, want %q", cfg.AppName, DefaultAppName)
	}
	if cfg.WelcomeMessage != DefaultWelcomeMessage {
		t.Errorf("WelcomeMessage = %q, want default", cfg.WelcomeMessage)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
backend_url: https://backend.example.com
welcome_message: "Welcome to the store!"
launch:
  email: jane@example.com
  customer_id: cust-42
inbox:
  reconnect_interval: 5s
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.BackendURL != "https://backend.example.com" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	// app_name left unset falls back to the default.
	if cfg.AppName != DefaultAppName {
		t.Errorf("AppName = %q, want %q", cfg.AppName, DefaultAppName)
	}
	if cfg.WelcomeMessage != "Welcome to the store!" {
		t.Errorf("WelcomeMessage = %q", cfg.WelcomeMessage)
	}
	if cfg.Launch.Email != "jane@example.com" {
		t.Errorf("Launch.Email = %q", cfg.Launch.Email)
	}
	if got := cfg.ReconnectInterval(); got != 5*time.Second {
		t.Errorf("ReconnectInterval = %v, want 5s", got)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("backend_url: [not, a, string")); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.BackendURL != Default().BackendURL {
		t.Errorf("BackendURL = %q, want default", cfg.BackendURL)
	}
}

func TestLoadOrDefaultEnvOverride(t *testing.T) {
	t.Setenv(BackendURLEnv, "https://env.example.com")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.BackendURL != "https://env.example.com" {
		t.Errorf("BackendURL = %q, want env override", cfg.BackendURL)
	}
}

func TestLoadOrDefaultReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("backend_url: https://file.example.com\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.BackendURL != "https://file.example.com" {
		t.Errorf("BackendURL = %q, want file value", cfg.BackendURL)
	}
}

func TestReconnectIntervalFallback(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", DefaultReconnectInterval},
		{"malformed", "soon", DefaultReconnectInterval},
		{"negative", "-2s", DefaultReconnectInterval},
		{"valid", "500ms", 500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Inbox.ReconnectInterval = tt.value
			if got := cfg.ReconnectInterval(); got != tt.want {
				t.Errorf("ReconnectInterval(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
