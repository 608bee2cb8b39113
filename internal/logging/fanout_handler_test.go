package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if newFanoutHandler(nil, inner) != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeLoggerRespectsPerHandlerLevels(t *testing.T) {
	var console, file bytes.Buffer
	base := slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger := TeeLogger(base, slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.With(String(FieldInstance, "db1")).Debug("portion appended", Int64(FieldBytes, 42))
	logger.Info("streaming file")

	if strings.Contains(console.String(), "portion appended") {
		t.Fatalf("console should drop debug records: %q", console.String())
	}
	if !strings.Contains(file.String(), `"instance":"db1"`) || !strings.Contains(file.String(), "portion appended") {
		t.Fatalf("file handler should receive debug record with attrs: %q", file.String())
	}
	if !strings.Contains(console.String(), "streaming file") || !strings.Contains(file.String(), "streaming file") {
		t.Fatal("info record should reach both handlers")
	}
}

func TestFanoutHandlerEnabled(t *testing.T) {
	h := newFanoutHandler(
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("no handler accepts info")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("first handler accepts warn")
	}
}

func TestTeeLoggerNilBase(t *testing.T) {
	var buf bytes.Buffer
	logger := TeeLogger(nil, slog.NewTextHandler(&buf, nil))
	logger.WithGroup("tail").Info("rotated", "to", "log.3")
	if !strings.Contains(buf.String(), "tail.to=log.3") {
		t.Fatalf("expected grouped attr, got %q", buf.String())
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestFanoutHandlerKeepsDeliveringAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := newFanoutHandler(
		failingHandler{slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		slog.NewJSONHandler(&buf, nil),
	)
	record := slog.NewRecord(time.Now(), slog.LevelInfo, "log file rotated", 0)
	if err := h.Handle(context.Background(), record); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected sink error, got %v", err)
	}
	if !strings.Contains(buf.String(), "log file rotated") {
		t.Fatal("healthy sink should still receive the record")
	}
}
