package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"logmirror/internal/remote"
)

// minFreeBytes is the free-space floor below which the mirror check warns.
const minFreeBytes = 1 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace reports the space available to unprivileged writers at path
// and fails when it is below minBytes.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free", humanize.IBytes(free))
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (below %s)", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSource verifies the remote log API answers for instance. With an empty
// instance it asks for instance discovery instead. It uses a 30-second
// timeout and a single attempt.
func CheckSource(ctx context.Context, src remote.Source, instance string) Result {
	const name = "Remote log API"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if instance == "" {
		discoverer, ok := src.(remote.Discoverer)
		if !ok {
			return Result{Name: name, Detail: "instance discovery unsupported"}
		}
		instances, err := discoverer.ListInstances(checkCtx)
		if err != nil {
			return Result{Name: name, Detail: summarizeSourceError(err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d instances)", len(instances))}
	}

	files, err := src.ListLogFiles(checkCtx, instance, 0)
	if err != nil {
		return Result{Name: name, Detail: summarizeSourceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%s: %d log files)", instance, len(files))}
}

func summarizeSourceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (log API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (log API unreachable)"
	}
	if errors.Is(err, remote.ErrRejected) {
		return "request rejected: " + err.Error()
	}
	return err.Error()
}
