package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logmirror/internal/remote"
	"logmirror/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 0); !result.Passed || !strings.HasSuffix(result.Detail, "free") {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result := CheckFreeSpace("space", dir, ^uint64(0)); result.Passed {
		t.Fatal("expected failure for unreachable floor")
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), 0); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckSource(t *testing.T) {
	src := testsupport.NewFakeSource()
	src.Put("db1", "log.1", "x")

	if result := CheckSource(context.Background(), src, "db1"); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if result := CheckSource(context.Background(), src, "missing"); result.Passed {
		t.Fatal("expected failure for unknown instance")
	}

	src.FailList("db1", remote.Wrap(remote.ErrRejected, "db1", "describe log files", errors.New("bad parameter")))
	result := CheckSource(context.Background(), src, "db1")
	if result.Passed || !strings.HasPrefix(result.Detail, "request rejected") {
		t.Fatalf("unexpected result: %+v", result)
	}

	src.AddInstance("db1", "postgres")
	if result := CheckSource(context.Background(), src, ""); !result.Passed {
		t.Fatalf("discovery check failed: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg, nil)
	// target access + free space + log directory
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Passed || !results[0].Required {
		t.Fatalf("unexpected target result: %+v", results[0])
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected required failures: %+v", failed)
	}
}

func TestRunAll_MissingTargetFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.LogDir = ""

	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 1 {
		t.Fatalf("expected only the target check, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 1 {
		t.Fatalf("expected target failure, got %+v", failed)
	}
}

func TestRunAll_IncludesSourceCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	src := testsupport.NewFakeSource()
	src.Put("db1", "log.1", "x")

	results := RunAll(context.Background(), cfg, src)
	last := results[len(results)-1]
	if last.Name != "Remote log API" || !last.Passed {
		t.Fatalf("unexpected source result: %+v", last)
	}
}
