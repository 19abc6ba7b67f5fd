package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipdeck/internal/config"
	"clipdeck/internal/logging"
	"clipdeck/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerCallerLocation(t *testing.T) {
	tests := []struct {
		level      string
		wantCaller bool
	}{
		{"info", false},
		{"debug", true},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		logger, err := logging.New(logging.Options{Format: "console", Level: tc.level, Writer: &buf})
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		logger.Info("caller check")
		if got := strings.Contains(buf.String(), "logger_test.go:"); got != tc.wantCaller {
			t.Fatalf("level %s: caller shown = %v in %q", tc.level, got, buf.String())
		}
	}
}

func TestConsoleLoggerPrefixesComponentAndPhase(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithPhase(context.Background(), "uploading")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "orchestrator")).Info("chunk accepted",
		logging.Args(logging.Int64("offset", 262144), logging.Bytes(512, 1024), logging.String("file", "my clip.mp4"))...)

	line := buf.String()
	if !strings.Contains(line, " INFO orchestrator[uploading]: chunk accepted") {
		t.Fatalf("unexpected console prefix: %q", line)
	}
	for _, want := range []string{"offset=262144", "bytes.acknowledged=512", "bytes.total=1024", `file="my clip.mp4"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") || strings.Contains(line, "phase=") {
		t.Fatalf("prefix fields repeated as attributes: %q", line)
	}
}

func TestConsoleLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warning", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.WithGroup("retry").Warn("shown", "attempt", 2)
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info line written at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "WARN shown retry.attempt=2") {
		t.Fatalf("unexpected warn line: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewJSONLoggerUsesShortKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.Args(logging.String("k", "v"))...)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["msg"] != "json message" || entry["level"] != "info" || entry["k"] != "v" {
		t.Fatalf("unexpected json entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

type captureHandler struct {
	attrs []slog.Attr
	recs  *[]slog.Record
}

func (h captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h captureHandler) Handle(_ context.Context, r slog.Record) error {
	rec := r.Clone()
	rec.AddAttrs(h.attrs...)
	*h.recs = append(*h.recs, rec)
	return nil
}

func (h captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return captureHandler{attrs: append(append([]slog.Attr{}, h.attrs...), attrs...), recs: h.recs}
}

func (h captureHandler) WithGroup(string) slog.Handler { return h }

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithUploadID(ctx, "up-123")
	ctx = services.WithPhase(ctx, "analyzing")
	ctx = services.WithRequestID(ctx, "req-xyz")

	var records []slog.Record
	logger := slog.New(captureHandler{recs: &records})
	logging.WithContext(ctx, logger).Info("contextual log")

	if len(records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(records))
	}
	got := map[string]string{}
	records[0].Attrs(func(a slog.Attr) bool {
		got[a.Key] = a.Value.String()
		return true
	})
	want := map[string]string{
		logging.FieldUploadID:      "up-123",
		logging.FieldPhase:         "analyzing",
		logging.FieldCorrelationID: "req-xyz",
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("field %s = %q, want %q", key, got[key], value)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var records []slog.Record
	logger := slog.New(captureHandler{recs: &records})
	logging.WarnWithContext(logger, "moderation disabled", "moderation_skipped", logging.String(logging.FieldImpact, "content not analyzed"))

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := map[string]string{}
	records[0].Attrs(func(a slog.Attr) bool {
		got[a.Key] = a.Value.String()
		return true
	})
	if got[logging.FieldEventType] != "moderation_skipped" {
		t.Fatalf("unexpected event type %q", got[logging.FieldEventType])
	}
	if got[logging.FieldErrorHint] == "" {
		t.Fatal("expected default error hint")
	}
	if got[logging.FieldImpact] != "content not analyzed" {
		t.Fatalf("expected caller impact to win, got %q", got[logging.FieldImpact])
	}
}
