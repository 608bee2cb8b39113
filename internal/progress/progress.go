package progress

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"logmirror/internal/logging"
)

// Reporter hands out a Task per unit of tracked work.
type Reporter interface {
	Begin(instance string, total int) Task
}

// Task tracks one instance's historical download.
type Task interface {
	Advance(n int)
	Done()
}

// Nop discards progress.
type Nop struct{}

func (Nop) Begin(string, int) Task { return nopTask{} }

type nopTask struct{}

func (nopTask) Advance(int) {}
func (nopTask) Done()       {}

// New picks a terminal bar when w is a TTY and sampled log lines otherwise.
func New(w io.Writer, logger *slog.Logger) Reporter {
	if IsTerminal(w) {
		return NewBar(w)
	}
	return NewLog(logger, 25)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Bar renders one progress bar whose total grows as instances begin.
type Bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBar constructs a Bar drawing to w.
func NewBar(w io.Writer) *Bar {
	return &Bar{bar: progressbar.NewOptions(0,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("historical files"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)}
}

func (b *Bar) Begin(_ string, total int) Task {
	if total <= 0 {
		return nopTask{}
	}
	b.mu.Lock()
	b.bar.ChangeMax64(b.bar.GetMax64() + int64(total))
	b.mu.Unlock()
	return &barTask{bar: b}
}

type barTask struct {
	bar *Bar
}

func (t *barTask) Advance(n int) {
	t.bar.mu.Lock()
	defer t.bar.mu.Unlock()
	_ = t.bar.bar.Add(n)
}

func (t *barTask) Done() {
	t.bar.mu.Lock()
	defer t.bar.mu.Unlock()
	if t.bar.bar.State().CurrentNum >= t.bar.bar.GetMax64() {
		_ = t.bar.bar.Finish()
	}
}

// Log writes sampled progress lines through a logger.
type Log struct {
	logger *slog.Logger
	bucket float64
}

// NewLog reports at every bucket percent of each instance's file count.
func NewLog(logger *slog.Logger, bucket float64) *Log {
	return &Log{logger: logging.NewComponentLogger(logger, "progress"), bucket: bucket}
}

func (l *Log) Begin(instance string, total int) Task {
	return &logTask{
		logger:   logging.ForInstance(l.logger, instance),
		sampler:  logging.NewProgressSampler(l.bucket),
		instance: instance,
		total:    int64(total),
	}
}

type logTask struct {
	mu       sync.Mutex
	logger   *slog.Logger
	sampler  *logging.ProgressSampler
	instance string
	done     int64
	total    int64
}

func (t *logTask) Advance(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done += int64(n)
	if t.sampler.ShouldLog(t.instance, t.done, t.total) {
		t.logger.Info("historical progress",
			logging.Int64("files_done", t.done),
			logging.Int64("files_total", t.total),
			logging.String(logging.FieldEventType, "historical_progress"),
		)
	}
}

func (t *logTask) Done() {}
