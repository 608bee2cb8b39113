package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusKinds = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset        = "\x1b[0m"
	statusLabelWidth = 20
)

// statusPrinter writes aligned "label: [KIND] message" lines, coloured when
// the destination is a terminal.
type statusPrinter struct {
	out      io.Writer
	colorize bool
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out, colorize: shouldColorize(out)}
}

func (p *statusPrinter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(p.out, p.paint(kind, renderStatusLine(label, kind, message)))
}

func (p *statusPrinter) section(title string) {
	fmt.Fprintln(p.out, p.paint(statusInfo, "== "+title+" =="))
}

func (p *statusPrinter) paint(kind statusKind, s string) string {
	if !p.colorize {
		return s
	}
	return statusKinds[kind].color + s + ansiReset
}

func renderStatusLine(label string, kind statusKind, message string) string {
	text := "[" + statusKinds[kind].label + "]"
	if message != "" {
		text += " " + message
	}
	return fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", text)
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
