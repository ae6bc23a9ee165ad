package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	logger.Info("batch started", String(FieldBatchID, "b-1"), Int("total", 3))
	out := buf.String()
	for _, want := range []string{"INFO", "batch started", "batch_id=b-1", "total=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))
	logger.Warn("item failed", String("reason", "timeout after call"))
	if !strings.Contains(buf.String(), `reason="timeout after call"`) {
		t.Fatalf("value not quoted: %s", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(newConsoleHandler(&buf, slog.LevelWarn))
	logger.Info("ignored")
	logger.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "ignored") || !strings.Contains(out, "kept") {
		t.Fatalf("level filtering broken: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	tmp := t.TempDir() + "/log.json"
	logger, err := New(Options{Format: "json", Level: "debug", OutputPaths: []string{tmp}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug("hello", Int("n", 1))
	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, data)
	}
	if entry["msg"] != "hello" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf strings.Builder
	base := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	ctx := WithBatchID(WithRecordID(context.Background(), "rec-9"), "batch-4")
	WithContext(ctx, base).Info("processing")

	out := buf.String()
	if !strings.Contains(out, "record_id=rec-9") || !strings.Contains(out, "batch_id=batch-4") {
		t.Fatalf("context fields missing: %s", out)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected fallback logger")
	}
}
