package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	got := renderStatusLine("Free space", statusWarn, "512 MiB available")
	if !strings.HasPrefix(got, "  Free space:") || !strings.HasSuffix(got, "[WARN] 512 MiB available") {
		t.Fatalf("unexpected line %q", got)
	}
	if got := renderStatusLine("Daemon", statusOK, ""); !strings.HasSuffix(got, "[OK]") {
		t.Fatalf("empty message should end at the kind label: %q", got)
	}
}

func TestStatusPrinterSkipsColourForBuffers(t *testing.T) {
	var buf bytes.Buffer
	p := newStatusPrinter(&buf)
	p.section("Instances")
	p.line("db1", statusError, "stalled")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("unexpected ANSI codes: %q", buf.String())
	}
	requireContains(t, buf.String(), "== Instances ==")
}
