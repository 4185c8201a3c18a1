package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"aircheck/internal/services"
)

func TestConsoleHandlerComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger = NewComponentLogger(logger, "placement")
	logger.Info("segment placed", String("target", "/archive/2025/02/14/a.mp3"))

	line := buf.String()
	if !strings.Contains(line, " INFO placement: segment placed") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "target=/archive/2025/02/14/a.mp3") {
		t.Fatalf("missing attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("odd value", String("reason", "has spaces"))
	if !strings.Contains(buf.String(), `reason="has spaces"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Info("hello", String("station", "WBOR"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if record["msg"] != "hello" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("level = %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("missing ts field")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithSegment(context.Background(), "WBOR-2025-02-14T00:35:01Z.mp3")
	ctx = services.WithCorrelationID(ctx, "abc123")

	WithContext(ctx, logger).Info("processing")

	line := buf.String()
	if !strings.Contains(line, "segment=WBOR-2025-02-14T00:35:01Z.mp3") {
		t.Fatalf("missing segment field: %q", line)
	}
	if !strings.Contains(line, "correlation_id=abc123") {
		t.Fatalf("missing correlation field: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
