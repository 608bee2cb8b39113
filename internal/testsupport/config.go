package testsupport

import (
	"path/filepath"
	"testing"

	"logmirror/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It mirrors a single instance, db1, unless options say otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TargetDir = filepath.Join(base, "mirror")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Sync.Instances = []string{"db1"}
	cfgVal.Sync.PollInterval = 1
	cfgVal.Status.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithInstances replaces the mirrored instance list.
func WithInstances(ids ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.Instances = append([]string(nil), ids...)
	}
}

// WithStatusAPI enables the status API on an ephemeral port.
func WithStatusAPI() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Status.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TargetDir)
}
