package mirror

import (
	"context"
	"log/slog"

	"logmirror/internal/logging"
	"logmirror/internal/remote"
)

// Worker syncs one instance: a gated historical pass, then tailing.
type Worker struct {
	Instance   string
	Gate       *Gate
	Historical *Historical
	Tailer     *Tailer
	Logger     *slog.Logger
	Registry   *Registry
}

// Run returns when ctx ends.
func (w *Worker) Run(ctx context.Context) error {
	logger := logging.ForInstance(logging.NewComponentLogger(w.Logger, "worker"), w.Instance)
	w.Registry.setPhase(w.Instance, PhaseWaiting)

	var active *remote.LogFile
	err := w.Gate.Admit(ctx, func(ctx context.Context) error {
		w.Registry.setPhase(w.Instance, PhaseHistorical)
		logger.Debug("historical slot acquired", logging.Int("in_flight", w.Gate.InFlight()))
		file, err := w.Historical.Run(ctx, w.Instance)
		active = file
		return err
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		w.Registry.setPhase(w.Instance, PhaseStopped)
		return ctxErr
	}
	if err != nil {
		// The tailer resolves the active file itself when historical sync
		// could not list one.
		logger.Warn("historical sync incomplete; tailing anyway", logging.Error(err))
	}

	err = w.Tailer.Run(ctx, w.Instance, active)
	w.Registry.setPhase(w.Instance, PhaseStopped)
	return err
}
