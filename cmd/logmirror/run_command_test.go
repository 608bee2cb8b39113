package main

import (
	"path/filepath"
	"testing"

	"logmirror/internal/testsupport"
)

func TestApplyRunFlagsOverridesOnlyChangedValues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Sync.PageLines = 500
	target := filepath.Join(testsupport.BaseDir(cfg), "other")

	cmd := newRunCommand(newCommandContext(nil))
	if err := cmd.ParseFlags([]string{
		"-i", "db2,db3", "--instance", "db3",
		"--target-dir", target,
		"--max-historical", "7",
		"-p", "5",
		"--from-time", "1700000000",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := applyRunFlags(cmd.Flags(), cfg); err != nil {
		t.Fatalf("applyRunFlags: %v", err)
	}

	if got := cfg.Sync.Instances; len(got) != 2 || got[0] != "db2" || got[1] != "db3" {
		t.Fatalf("instances = %v", got)
	}
	if cfg.Paths.TargetDir != target {
		t.Fatalf("target dir = %q", cfg.Paths.TargetDir)
	}
	if cfg.Sync.MaxHistoricalWorkers != 7 || cfg.Sync.PollInterval != 5 || cfg.Sync.FromTime != 1700000000 {
		t.Fatalf("unexpected sync config: %+v", cfg.Sync)
	}
	if cfg.Sync.PageLines != 500 {
		t.Fatalf("unset flag overrode page lines: %d", cfg.Sync.PageLines)
	}
}

func TestApplyRunFlagsRejectsInvalidValues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cmd := newRunCommand(newCommandContext(nil))
	if err := cmd.ParseFlags([]string{"--page-lines", "0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := applyRunFlags(cmd.Flags(), cfg); err == nil {
		t.Fatal("expected validation error for zero page lines")
	}
}

func TestRunCommandRequiresTargets(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Sync.Instances = nil
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err == nil {
		t.Fatal("expected run without instances to fail")
	}
}
