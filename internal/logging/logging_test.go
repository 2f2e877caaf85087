package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("visible", "images", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if record["msg"] != "visible" || record["images"] != float64(3) {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewTextLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "DEBUG", "text")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("trace", "path", "a.jpg")

	if !strings.Contains(buf.String(), "msg=trace") || !strings.Contains(buf.String(), "path=a.jpg") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger, err := New(&bytes.Buffer{}, "info", "json")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatal("expected logger from context")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatal("expected nil logger from empty context")
	}
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatal("nil logger must leave the context unchanged")
	}
}
