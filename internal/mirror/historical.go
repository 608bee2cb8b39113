package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"logmirror/internal/logging"
	"logmirror/internal/progress"
	"logmirror/internal/remote"
)

// Historical downloads an instance's closed log files.
type Historical struct {
	Source       remote.Source
	TargetDir    string
	CreatedAfter int64
	PageLines    int
	Logger       *slog.Logger
	Progress     progress.Reporter
	Registry     *Registry
}

type copyOutcome int

const (
	copyDownloaded copyOutcome = iota
	copySkipped
	copyFailed
)

// Run lists instance's log files and downloads all but the newest, skipping
// any whose local copy already has the remote size. It returns the newest file
// undownloaded, or nil when the listing is empty. Per-file failures are logged
// and do not stop the remaining files; an error is returned only when the
// instance directory or the listing is unavailable, or ctx ends.
func (h *Historical) Run(ctx context.Context, instance string) (*remote.LogFile, error) {
	logger := logging.ForInstance(logging.NewComponentLogger(h.Logger, "historical"), instance)

	if err := ensureInstanceDir(h.TargetDir, instance); err != nil {
		logging.ErrorWithContext(logger, "cannot create instance directory", "instance_dir_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on paths.target_dir"),
		)
		return nil, err
	}

	files, err := h.Source.ListLogFiles(ctx, instance, h.CreatedAfter)
	if err != nil {
		logging.ErrorWithContext(logger, "listing log files failed; historical sync skipped", "listing_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, remote.Kind(err)),
			logging.String(logging.FieldErrorHint, "check the instance name and API credentials"),
		)
		h.Registry.setError(instance, err)
		return nil, fmt.Errorf("list log files: %w", err)
	}
	logger.Info("listed log files", logging.Int("count", len(files)))

	active, ok := remote.Active(files)
	if !ok {
		return nil, nil
	}
	closed := files[:len(files)-1]

	reporter := h.Progress
	if reporter == nil {
		reporter = progress.Nop{}
	}
	task := reporter.Begin(instance, len(closed))
	defer task.Done()

	for _, file := range closed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, written := h.copyOne(ctx, logger, instance, file)
		h.Registry.update(instance, func(s *InstanceStatus) {
			s.BytesWritten += written
			switch outcome {
			case copyDownloaded:
				s.FilesDownloaded++
			case copySkipped:
				s.FilesSkipped++
			case copyFailed:
				s.FilesFailed++
			}
		})
		task.Advance(1)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &active, nil
}

func (h *Historical) copyOne(ctx context.Context, logger *slog.Logger, instance string, file remote.LogFile) (copyOutcome, int64) {
	path := LocalPath(h.TargetDir, instance, file.Name)
	fileLogger := logger.With(logging.String(logging.FieldFile, file.Name))

	complete, err := isComplete(path, file.Size)
	if err != nil {
		fileLogger.Warn("cannot inspect local copy; downloading again", logging.Error(err))
	}
	if complete {
		fileLogger.Info("file exists with correct size; skipping",
			logging.String(logging.FieldLocalPath, path),
			logging.String("size", humanize.IBytes(uint64(file.Size))),
		)
		return copySkipped, 0
	}

	out, err := openMirror(path)
	if err != nil {
		logging.ErrorWithContext(fileLogger, "cannot open local file; file skipped", "local_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check disk space and permissions on paths.target_dir"),
		)
		h.Registry.setError(instance, err)
		return copyFailed, 0
	}
	defer out.Close()

	fileLogger.Info("dumping file", logging.String(logging.FieldLocalPath, path))
	res := drain(ctx, h.Source, instance, file.Name, remote.InitialMarker, h.PageLines, out)
	if res.Err != nil {
		logging.WarnWithContext(fileLogger, "download interrupted; partial file left on disk", "download_failed",
			logging.Error(res.Err),
			logging.String(logging.FieldErrorKind, remote.Kind(res.Err)),
			logging.Int64(logging.FieldBytes, res.Bytes),
			logging.String(logging.FieldErrorHint, "the next run downloads the file again"),
			logging.String(logging.FieldImpact, "local copy is incomplete"),
		)
		h.Registry.setError(instance, res.Err)
		return copyFailed, res.Bytes
	}
	fileLogger.Info("file downloaded",
		logging.String("size", humanize.IBytes(uint64(res.Bytes))),
		logging.Int("portions", res.Portions),
	)
	return copyDownloaded, res.Bytes
}
