package mirror

import (
	"context"
	"log/slog"
	"time"

	"logmirror/internal/logging"
	"logmirror/internal/remote"
)

// Tailer follows an instance's active log file, appending new data to the
// local mirror and cutting over when the remote file rotates.
type Tailer struct {
	Source          remote.Source
	TargetDir       string
	PageLines       int
	PollInterval    time.Duration
	StallAlertPolls int
	Logger          *slog.Logger
	Registry        *Registry
}

// tailState is the in-memory sync state of one instance. It holds at most one
// open local file.
type tailState struct {
	active *remote.LogFile
	marker remote.Marker
	out    *mirrorFile
}

func (s *tailState) switchTo(file remote.LogFile) {
	s.close()
	s.active = &file
	s.marker = remote.InitialMarker
}

func (s *tailState) close() {
	if s.out != nil {
		_ = s.out.Close()
		s.out = nil
	}
}

// Run polls until ctx ends and returns ctx.Err(). When last is nil the active
// file is resolved from the first successful listing.
func (t *Tailer) Run(ctx context.Context, instance string, last *remote.LogFile) error {
	logger := logging.ForInstance(logging.NewComponentLogger(t.Logger, "tail"), instance)
	t.Registry.setPhase(instance, PhaseTailing)

	state := &tailState{}
	defer state.close()
	if last != nil {
		state.switchTo(*last)
		t.openActive(logger, instance, state)
	}

	streak := 0
	alerted := false
	for {
		if err := sleepCtx(ctx, t.PollInterval); err != nil {
			return err
		}
		healthy := t.poll(ctx, logger, instance, state)
		if err := ctx.Err(); err != nil {
			return err
		}

		if healthy {
			if alerted {
				logger.Info("mirror recovered",
					logging.String(logging.FieldEventType, "mirror_recovered"),
					logging.Int("failed_polls", streak),
				)
			}
			streak = 0
			alerted = false
		} else {
			streak++
			if t.StallAlertPolls > 0 && streak >= t.StallAlertPolls && !alerted {
				logging.WarnWithContext(logger, "mirror stalled", "mirror_stalled",
					logging.Alert("mirror_stalled"),
					logging.Int("failed_polls", streak),
					logging.String(logging.FieldErrorHint, "check instance availability and API credentials"),
					logging.String(logging.FieldImpact, "local mirror is not growing"),
				)
				alerted = true
			}
		}
		t.Registry.update(instance, func(s *InstanceStatus) {
			s.FailureStreak = streak
			s.LastPoll = time.Now()
			if healthy {
				s.LastError = ""
			}
		})
	}
}

// poll runs one cycle: list, drain the file that was active before this poll,
// then switch to the newest listed file if its name changed. It reports
// whether the cycle completed without errors.
func (t *Tailer) poll(ctx context.Context, logger *slog.Logger, instance string, state *tailState) bool {
	files, listErr := t.Source.ListLogFiles(ctx, instance, 0)
	healthy := listErr == nil
	drained := true

	if state.active != nil {
		if state.out == nil && !t.openActive(logger, instance, state) {
			healthy = false
			drained = false
		}
		if state.out != nil {
			res := drain(ctx, t.Source, instance, state.active.Name, state.marker, t.PageLines, state.out)
			state.marker = res.Marker
			t.Registry.update(instance, func(s *InstanceStatus) {
				s.BytesWritten += res.Bytes
				s.Marker = string(res.Marker)
			})
			if res.Bytes > 0 {
				logger.Debug("appended data",
					logging.String(logging.FieldFile, state.active.Name),
					logging.Int64(logging.FieldBytes, res.Bytes),
					logging.String(logging.FieldMarker, string(res.Marker)),
				)
			}
			if res.Err != nil {
				if ctx.Err() != nil {
					return false
				}
				healthy = false
				// A retryable failure keeps the old file in focus so its tail is
				// drained from the retained marker before any rotation.
				drained = !remote.Retryable(res.Err)
				logging.WarnWithContext(logger, "drain interrupted; retrying next poll", "drain_failed",
					logging.Error(res.Err),
					logging.String(logging.FieldErrorKind, remote.Kind(res.Err)),
					logging.String(logging.FieldFile, state.active.Name),
					logging.String(logging.FieldMarker, string(state.marker)),
				)
				t.Registry.setError(instance, res.Err)
			}
		}
	}

	if listErr != nil {
		if ctx.Err() != nil {
			return false
		}
		logging.WarnWithContext(logger, "listing log files failed; rotation check skipped", "listing_failed",
			logging.Error(listErr),
			logging.String(logging.FieldErrorKind, remote.Kind(listErr)),
		)
		t.Registry.setError(instance, listErr)
		return false
	}

	newest, ok := remote.Active(files)
	if !ok || !drained {
		return healthy
	}
	if state.active != nil && state.active.Name == newest.Name {
		return healthy
	}

	if state.active != nil {
		logger.Info("log file rotated",
			logging.String("from", state.active.Name),
			logging.String("to", newest.Name),
		)
	} else {
		logger.Info("resolved active file", logging.String(logging.FieldFile, newest.Name))
	}
	state.switchTo(newest)
	if !t.openActive(logger, instance, state) {
		healthy = false
	}
	return healthy
}

// openActive opens the local mirror of the active file, discarding any prior
// content since reading restarts at the initial marker.
func (t *Tailer) openActive(logger *slog.Logger, instance string, state *tailState) bool {
	state.marker = remote.InitialMarker
	path := LocalPath(t.TargetDir, instance, state.active.Name)
	err := ensureInstanceDir(t.TargetDir, instance)
	if err == nil {
		state.out, err = openMirror(path)
	}
	if err != nil {
		logging.ErrorWithContext(logger, "cannot open local file; retrying next poll", "local_open_failed",
			logging.Error(err),
			logging.String(logging.FieldLocalPath, path),
			logging.String(logging.FieldErrorHint, "check disk space and permissions on paths.target_dir"),
		)
		t.Registry.setError(instance, err)
		return false
	}
	t.Registry.update(instance, func(s *InstanceStatus) {
		s.ActiveFile = state.active.Name
		s.Marker = string(remote.InitialMarker)
	})
	logger.Info("streaming file",
		logging.String(logging.FieldFile, state.active.Name),
		logging.String(logging.FieldLocalPath, path),
	)
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return ctx.Err()
}
