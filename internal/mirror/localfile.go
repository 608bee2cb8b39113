package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"logmirror/internal/remote"
)

// InstanceDir returns the mirror directory for instance.
func InstanceDir(targetDir, instance string) string {
	return filepath.Join(targetDir, instance)
}

// LocalPath returns the mirror path of remoteName for instance.
func LocalPath(targetDir, instance, remoteName string) string {
	return filepath.Join(InstanceDir(targetDir, instance), remote.LogFile{Name: remoteName}.BaseName())
}

// LocalSize returns the size of the mirror file at path, or -1 when it does
// not exist.
func LocalSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return -1, nil
		}
		return -1, fmt.Errorf("%w: stat %s: %w", ErrLocalIO, path, err)
	}
	if info.IsDir() {
		return -1, fmt.Errorf("%w: %s is a directory", ErrLocalIO, path)
	}
	return info.Size(), nil
}

// isComplete reports whether a local copy exists with exactly size bytes.
// Equal size is treated as complete; content is not compared.
func isComplete(path string, size int64) (bool, error) {
	local, err := LocalSize(path)
	if err != nil {
		return false, err
	}
	return local >= 0 && local == size, nil
}

func ensureInstanceDir(targetDir, instance string) error {
	dir := InstanceDir(targetDir, instance)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrLocalIO, dir, err)
	}
	return nil
}

// appender receives portion data in marker order.
type appender interface {
	Append(p []byte) error
}

// mirrorFile is an append-only handle on one local mirror file.
type mirrorFile struct {
	path string
	file *os.File
	size int64
}

// openMirror creates or truncates the mirror file at path. Every mirror read
// starts at the initial marker, so existing content is always discarded.
func openMirror(path string) (*mirrorFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrLocalIO, path, err)
	}
	return &mirrorFile{path: path, file: file}, nil
}

// Append writes p in full or leaves the file as it was before the call.
func (m *mirrorFile) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := m.file.Write(p)
	if err != nil {
		if n > 0 {
			_ = m.file.Truncate(m.size)
		}
		return fmt.Errorf("%w: write %s: %w", ErrLocalIO, m.path, err)
	}
	m.size += int64(n)
	return nil
}

func (m *mirrorFile) Close() error {
	if m == nil || m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file = nil
	return err
}
