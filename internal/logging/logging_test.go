package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"":        slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithFormatJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithFormat(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("visible", "component", "pipeline")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("record is not json: %v", err)
	}
	if record["msg"] != "visible" || record["component"] != "pipeline" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewWithFormatText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithFormat(&buf, "warn", "").Warn("thin pool", "available", 2)

	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "available=2") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}
