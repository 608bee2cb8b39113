package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"logmirror/internal/config"
	"logmirror/internal/daemon"
	"logmirror/internal/logging"
	"logmirror/internal/mirror"
	"logmirror/internal/preflight"
	"logmirror/internal/progress"
	"logmirror/internal/remote"
)

// Options configures process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Source replaces the configured remote source when set.
	Source remote.Source
}

// Run mirrors the configured instances until the context is canceled or a
// termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.ValidateTargets(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("logmirror-%s.log", runID))
	sessionID := uuid.NewString()

	logger, err := newRunLogger(cfg, level, opts.Development, sessionID, runID, logPath)
	if err != nil {
		return err
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update logmirror.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "logmirror-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, "logmirror.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	src := opts.Source
	if src == nil {
		src, err = OpenSource(signalCtx, cfg)
		if err != nil {
			logging.ErrorWithContext(logger, "cannot open remote source", "source_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check source.region, source.profile and AWS credentials"),
			)
			return err
		}
	}

	instances, err := mirror.Resolve(signalCtx, src, cfg.Sync.Instances, cfg.Sync.AllInstances, cfg.Sync.EngineFilter)
	if err != nil {
		logging.ErrorWithContext(logger, "cannot resolve instances", "instance_resolve_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check sync.instances or sync.engine_filter"),
		)
		return err
	}

	checks := preflight.RunAll(signalCtx, cfg, src)
	logChecks(logger, checks)
	if failed := preflight.Failed(checks); len(failed) > 0 {
		return fmt.Errorf("preflight failed: %s: %s", failed[0].Name, failed[0].Detail)
	}

	logger.Info("logmirror starting",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("target_dir", cfg.Paths.TargetDir),
		logging.Any("instances", instances),
		logging.Int64("from_time", cfg.Sync.FromTime),
		logging.Duration("poll_interval", cfg.PollInterval()),
		logging.Int("page_lines", cfg.Sync.PageLines),
	)

	orch := mirror.NewOrchestrator(src, mirror.Options{
		TargetDir:       cfg.Paths.TargetDir,
		CreatedAfter:    cfg.Sync.FromTime,
		PageLines:       cfg.Sync.PageLines,
		PollInterval:    cfg.PollInterval(),
		MaxHistorical:   cfg.Sync.MaxHistoricalWorkers,
		StallAlertPolls: cfg.Sync.StallAlertPolls,
	}, logger, progress.New(os.Stdout, logger), mirror.NewRegistry())

	d, err := daemon.New(cfg, orch, instances, logger, daemon.Options{
		SessionID: sessionID,
		LogPath:   logPath,
		Checks:    checks,
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check target directory permissions and the status bind address"),
		)
		return err
	}
	defer d.Stop()

	select {
	case <-signalCtx.Done():
		logger.Info("logmirror shutting down")
		return nil
	case <-d.Done():
		if err := d.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// OpenSource builds the RDS-backed source for cfg, throttled when
// source.requests_per_second is set.
func OpenSource(ctx context.Context, cfg *config.Config) (remote.Source, error) {
	rds, err := remote.OpenRDS(ctx, remote.RDSOptions{
		Region:   cfg.Source.Region,
		Profile:  cfg.Source.Profile,
		Endpoint: cfg.Source.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return remote.Throttle(rds, cfg.Source.RequestsPerSecond, cfg.Source.Burst), nil
}

func newRunLogger(cfg *config.Config, level string, development bool, sessionID, runID, logPath string) (*slog.Logger, error) {
	console, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout"},
		Development: development,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	file, err := logging.New(logging.Options{
		Level:       level,
		Format:      "json",
		OutputPaths: []string{logPath},
		Development: development,
		SessionID:   sessionID,
		RunID:       runID,
	})
	if err != nil {
		return nil, fmt.Errorf("init run log: %w", err)
	}
	return logging.TeeLogger(console, file.Handler()), nil
}

func logChecks(logger *slog.Logger, checks []preflight.Result) {
	for _, check := range checks {
		if check.Passed {
			logger.Info("preflight check passed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
			continue
		}
		impact := "feature degraded"
		if check.Required {
			impact = "logmirror cannot start"
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, impact),
		)
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "logmirror.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
