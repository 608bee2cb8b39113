package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestStampHandlerAddsRunAttributes(t *testing.T) {
	var buf bytes.Buffer
	handler := newStampHandler(slog.NewJSONHandler(&buf, nil),
		slog.String(FieldSessionID, "7f3a"),
		slog.String(FieldRunID, "20240101T000000.000Z"),
	)

	slog.New(handler).With(String(FieldInstance, "db1")).Info("streaming file")

	output := buf.String()
	for _, want := range []string{`"session_id":"7f3a"`, `"run_id":"20240101T000000.000Z"`, `"instance":"db1"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestStampHandlerSkipsEmptyValues(t *testing.T) {
	base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if newStampHandler(base, slog.String(FieldSessionID, "")) != base {
		t.Fatal("expected base handler when nothing is stamped")
	}
	if _, ok := newStampHandler(nil, slog.String(FieldSessionID, "x")).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil base")
	}
}
