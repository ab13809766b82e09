package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(level string) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(newPrettyHandler(buf, levelVar)), buf
}

func TestPrettyHandlerPromotesComponent(t *testing.T) {
	logger, buf := newBufferLogger("info")
	NewComponentLogger(logger, "engine").Info("kept candidate", Int64(FieldMediaID, 42))

	line := buf.String()
	if !strings.Contains(line, " engine: kept candidate") {
		t.Fatalf("component not promoted: %q", line)
	}
	if !strings.Contains(line, "media_id=42") {
		t.Fatalf("attribute missing: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as key=value: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	logger, buf := newBufferLogger("info")
	logger.Info("decision", String(FieldTitle, "The Movie (2020)"))

	if !strings.Contains(buf.String(), `title="The Movie (2020)"`) {
		t.Fatalf("expected quoted title, got %q", buf.String())
	}
}

func TestPrettyHandlerHonorsLevel(t *testing.T) {
	logger, buf := newBufferLogger("warn")
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be suppressed: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
