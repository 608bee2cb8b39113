package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"logmirror/internal/logging"
	"logmirror/internal/progress"
	"logmirror/internal/remote"
)

var errNoWorkers = errors.New("no instance worker started")

// Options configures an Orchestrator.
type Options struct {
	TargetDir       string
	CreatedAfter    int64
	PageLines       int
	PollInterval    time.Duration
	MaxHistorical   int
	StallAlertPolls int
}

// Orchestrator runs one Worker per instance and bounds concurrent historical
// syncs with a shared Gate.
type Orchestrator struct {
	source   remote.Source
	opts     Options
	base     *slog.Logger
	logger   *slog.Logger
	progress progress.Reporter
	registry *Registry
	gate     *Gate
}

// NewOrchestrator builds an orchestrator. A nil logger, reporter or registry
// is replaced with a no-op.
func NewOrchestrator(src remote.Source, opts Options, logger *slog.Logger, reporter progress.Reporter, registry *Registry) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	return &Orchestrator{
		source:   src,
		opts:     opts,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "orchestrator"),
		progress: reporter,
		registry: registry,
		gate:     NewGate(opts.MaxHistorical),
	}
}

// Registry returns the status registry workers report to.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Gate returns the historical admission gate.
func (o *Orchestrator) Gate() *Gate { return o.gate }

// Run starts a worker per instance and waits for all of them. Workers run
// until ctx ends. Instances whose worker cannot start are logged and skipped;
// Run fails only when none started.
func (o *Orchestrator) Run(ctx context.Context, instances []string) error {
	var wg sync.WaitGroup
	started := 0
	for _, instance := range instances {
		worker, err := o.newWorker(instance)
		if err != nil {
			logging.ErrorWithContext(o.logger, "cannot start instance worker; instance skipped", "worker_launch_failed",
				logging.String(logging.FieldInstance, instance),
				logging.Error(err),
			)
			o.registry.update(instance, func(s *InstanceStatus) {
				s.Phase = PhaseFailed
				s.LastError = err.Error()
			})
			continue
		}
		o.registry.setPhase(instance, PhaseQueued)
		started++
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.runWorker(ctx, worker)
		}()
	}
	if started == 0 {
		return errNoWorkers
	}
	o.logger.Info("instance workers started",
		logging.Int("workers", started),
		logging.Int("max_historical", o.gate.Capacity()),
		logging.Duration("poll_interval", o.opts.PollInterval),
	)
	wg.Wait()
	o.logger.Info("instance workers stopped")
	return ctx.Err()
}

func (o *Orchestrator) newWorker(instance string) (*Worker, error) {
	if err := remote.ValidateInstanceID(instance); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkerLaunch, err)
	}
	if err := ensureInstanceDir(o.opts.TargetDir, instance); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkerLaunch, err)
	}
	return &Worker{
		Instance: instance,
		Gate:     o.gate,
		Historical: &Historical{
			Source:       o.source,
			TargetDir:    o.opts.TargetDir,
			CreatedAfter: o.opts.CreatedAfter,
			PageLines:    o.opts.PageLines,
			Logger:       o.base,
			Progress:     o.progress,
			Registry:     o.registry,
		},
		Tailer: &Tailer{
			Source:          o.source,
			TargetDir:       o.opts.TargetDir,
			PageLines:       o.opts.PageLines,
			PollInterval:    o.opts.PollInterval,
			StallAlertPolls: o.opts.StallAlertPolls,
			Logger:          o.base,
			Registry:        o.registry,
		},
		Logger:   o.base,
		Registry: o.registry,
	}, nil
}

// runWorker contains a panicking worker to its own instance.
func (o *Orchestrator) runWorker(ctx context.Context, w *Worker) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(o.logger, "instance worker crashed", "worker_panic",
				logging.String(logging.FieldInstance, w.Instance),
				logging.Any("panic", r),
			)
			o.registry.update(w.Instance, func(s *InstanceStatus) {
				s.Phase = PhaseFailed
				s.LastError = fmt.Sprint(r)
			})
		}
	}()
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Warn("instance worker ended", logging.String(logging.FieldInstance, w.Instance), logging.Error(err))
	}
}
