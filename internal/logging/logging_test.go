package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithSession(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	base := slog.New(handler)

	logger := WithSession(base, "sess-123", "user_abc")
	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "session_id=sess-123") {
		t.Errorf("Expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, "user_id=user_abc") {
		t.Errorf("Expected user_id in output, got: %s", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected message in output, got: %s", output)
	}
}

func TestWithSession_NilLogger(t *testing.T) {
	if logger := WithSession(nil, "sess", "user"); logger != nil {
		t.Error("WithSession(nil, ...) should return nil")
	}
}

func TestWithSession_MultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	base := slog.New(handler)

	logger := WithSession(base, "persistent-session", "user_1")

	logger.Info("first message")
	logger.Debug("second message")
	logger.Warn("third message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 log lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.Contains(line, "session_id=persistent-session") {
			t.Errorf("Line %d missing session_id: %s", i+1, line)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentFiltering(t *testing.T) {
	if err := Initialize(Config{Level: "debug", Components: []string{"chat"}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer func() {
		// Reset to "all components" for other tests.
		Initialize(Config{Level: "info"})
		Close()
	}()

	if !isComponentAllowed("chat") {
		t.Error("chat component should be allowed")
	}
	if isComponentAllowed("inbox") {
		t.Error("inbox component should be filtered out")
	}

	// A filtered component's logger is disabled at every level.
	filtered := WithComponent("inbox")
	if filtered.Enabled(context.Background(), slog.LevelError) {
		t.Error("filtered component logger should be disabled")
	}
	allowed := WithComponent("chat")
	if !allowed.Enabled(context.Background(), slog.LevelError) {
		t.Error("allowed component logger should be enabled")
	}
}

func TestComponentAllowedWhenUnfiltered(t *testing.T) {
	if err := Initialize(Config{Level: "info"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer Close()

	if !isComponentAllowed("anything") {
		t.Error("all components should be allowed when no filter is set")
	}
}
