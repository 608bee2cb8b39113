package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"logmirror/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Sync.MaxHistoricalWorkers != 3 || cfg.Sync.PageLines != 1000 {
		t.Fatalf("unexpected defaults: %+v", cfg.Sync)
	}
	if cfg.PollInterval() != time.Minute {
		t.Fatalf("PollInterval = %v", cfg.PollInterval())
	}
	if !filepath.IsAbs(cfg.Paths.TargetDir) {
		t.Fatalf("expected expanded target dir, got %q", cfg.Paths.TargetDir)
	}
}

func TestLoadFileAndEnvironment(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
target_dir = "`+filepath.Join(base, "mirror")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[sync]
instances = ["db1", " db2 ", "db1"]
poll_interval = 5
page_lines = 200
from_time = 1700000000

[logging]
format = "JSON"
`)
	t.Setenv("LOGMIRROR_REGION", "eu-west-1")
	t.Setenv("LOGMIRROR_STATUS_BIND", "127.0.0.1:0")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if got := strings.Join(cfg.Sync.Instances, ","); got != "db1,db2" {
		t.Fatalf("instances = %q", got)
	}
	if cfg.Sync.PollInterval != 5 || cfg.Sync.PageLines != 200 || cfg.Sync.FromTime != 1700000000 {
		t.Fatalf("unexpected sync section: %+v", cfg.Sync)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q", cfg.Logging.Format)
	}
	if cfg.Source.Region != "eu-west-1" {
		t.Fatalf("region = %q", cfg.Source.Region)
	}
	if !cfg.Status.Enabled || cfg.Status.Bind != "127.0.0.1:0" {
		t.Fatalf("status = %+v", cfg.Status)
	}
}

func TestLoadEnvironmentInstances(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("LOGMIRROR_INSTANCES", "db3,db4")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := strings.Join(cfg.Sync.Instances, ","); got != "db3,db4" {
		t.Fatalf("instances = %q", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to be reported")
	}
	if cfg.Sync.PollInterval != 60 {
		t.Fatalf("expected default poll interval, got %d", cfg.Sync.PollInterval)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[sync]\npolling = 3\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero workers", func(c *config.Config) { c.Sync.MaxHistoricalWorkers = 0 }, "sync.max_historical_workers"},
		{"zero poll", func(c *config.Config) { c.Sync.PollInterval = 0 }, "sync.poll_interval"},
		{"negative from", func(c *config.Config) { c.Sync.FromTime = -1 }, "sync.from_time"},
		{"bad instance", func(c *config.Config) { c.Sync.Instances = []string{"../etc"} }, "sync.instances"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative rate", func(c *config.Config) { c.Source.RequestsPerSecond = -1 }, "source.requests_per_second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if err := cfg.Normalize(); err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateTargets(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidateTargets(); err == nil {
		t.Fatal("expected error with no instances")
	}
	cfg.Sync.AllInstances = true
	if err := cfg.ValidateTargets(); err != nil {
		t.Fatalf("discovery should satisfy targets: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "max_historical_workers = 3") {
		t.Fatalf("encoded config missing sync settings:\n%s", buf.String())
	}
}
