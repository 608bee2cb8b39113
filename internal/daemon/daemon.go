package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"logmirror/internal/config"
	"logmirror/internal/logging"
	"logmirror/internal/mirror"
	"logmirror/internal/preflight"
)

// LockFileName is created in the target directory while a daemon runs.
const LockFileName = ".logmirror.lock"

// ErrLocked is returned by Start when another process holds the target lock.
var ErrLocked = errors.New("another logmirror process is mirroring this target directory")

// Options carries run metadata surfaced in status payloads.
type Options struct {
	SessionID string
	LogPath   string
	Checks    []preflight.Result
}

// Daemon runs the orchestrator for a fixed instance list and enforces
// single-process access to the target directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	orch      *mirror.Orchestrator
	instances []string
	opts      Options

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	mu        sync.Mutex
	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	runErr    error
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	SessionID     string
	StartedAt     time.Time
	TargetDir     string
	LockFilePath  string
	LogPath       string
	MaxHistorical int
	InFlight      int
	Instances     int
	Checks        []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, orch *mirror.Orchestrator, instances []string, logger *slog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil || orch == nil {
		return nil, errors.New("daemon requires config and orchestrator")
	}
	if len(instances) == 0 {
		return nil, errors.New("daemon requires at least one instance")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.TargetDir, LockFileName)
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		orch:      orch,
		instances: append([]string(nil), instances...),
		opts:      opts,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	if cfg.Status.Enabled {
		d.api = newAPIServer(cfg.Status.Bind, cfg.Status.Token, d, logger)
	}
	return d, nil
}

// Start acquires the target lock, starts the status API, and launches the
// orchestrator in the background.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(d.cfg.Paths.TargetDir, 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrLocked, d.lockPath)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start status api: %w", err)
	}

	d.cancel = cancel
	d.done = make(chan struct{})
	d.runErr = nil
	d.startedAt = time.Now()
	d.running.Store(true)

	go func(done chan struct{}) {
		defer close(done)
		err := d.orch.Run(runCtx, d.instances)
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.ErrorWithContext(d.logger, "orchestrator stopped", "orchestrator_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check instance names and target directory permissions"),
			)
		}
		d.mu.Lock()
		d.runErr = err
		d.mu.Unlock()
	}(d.done)

	d.logger.Info("logmirror daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("instances", len(d.instances)),
	)
	return nil
}

// Done is closed when the orchestrator returns. It is nil before Start.
func (d *Daemon) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// Err returns the orchestrator's result once Done is closed.
func (d *Daemon) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runErr
}

// Stop cancels all workers, waits for them to close their files, and
// releases the target lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return
	}
	cancel, done := d.cancel, d.done
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release target lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("logmirror daemon stopped")
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()
	gate := d.orch.Gate()
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		SessionID:     d.opts.SessionID,
		StartedAt:     startedAt,
		TargetDir:     d.cfg.Paths.TargetDir,
		LockFilePath:  d.lockPath,
		LogPath:       d.opts.LogPath,
		MaxHistorical: gate.Capacity(),
		InFlight:      gate.InFlight(),
		Instances:     len(d.instances),
		Checks:        d.opts.Checks,
	}
}

// Instances returns every instance's sync status.
func (d *Daemon) Instances() []mirror.InstanceStatus {
	return d.orch.Registry().Snapshot()
}

// Instance returns one instance's sync status.
func (d *Daemon) Instance(id string) (mirror.InstanceStatus, bool) {
	return d.orch.Registry().Get(id)
}

// APIAddr returns the status API's listening address, or "" when disabled.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}
