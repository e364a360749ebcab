package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("container replaced", slog.String(FieldContainer, "/lib/a.scorepack"), slog.Int("entries", 6))

	line := buf.String()
	if !strings.Contains(line, "INFO") || !strings.Contains(line, "container replaced") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "container=/lib/a.scorepack") || !strings.Contains(line, "entries=6") {
		t.Fatalf("attrs missing: %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("level filtering broken: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	ctx := ContextWithJob(context.Background(), 42, "corr-1")
	WithContext(ctx, logger).Info("converting")

	line := buf.String()
	if !strings.Contains(line, "job_id=42") || !strings.Contains(line, "correlation_id=corr-1") {
		t.Fatalf("context fields missing: %q", line)
	}
}

func TestWithContextNilSafe(t *testing.T) {
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected non-nil logger")
	}
}
