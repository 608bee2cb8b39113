package logging

import (
	"context"
	"log/slog"
)

// stampHandler appends a fixed set of run-scoped attributes to every record
// after the record's own attributes, so they land at the end of console lines.
type stampHandler struct {
	base  slog.Handler
	attrs []slog.Attr
}

func newStampHandler(base slog.Handler, attrs ...slog.Attr) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	kept := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Key != "" && attr.Value.String() != "" {
			kept = append(kept, attr)
		}
	}
	if len(kept) == 0 {
		return base
	}
	return &stampHandler{base: base, attrs: kept}
}

func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *stampHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.attrs...)
	return h.base.Handle(ctx, record)
}

func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stampHandler{base: h.base.WithAttrs(attrs), attrs: h.attrs}
}

func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{base: h.base.WithGroup(name), attrs: h.attrs}
}
