package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the settings that may be supplied as LOGMIRROR_*
// environment variables.
type envOverrides struct {
	TargetDir   string   `envconfig:"TARGET_DIR"`
	LogDir      string   `envconfig:"LOG_DIR"`
	Region      string   `envconfig:"REGION"`
	Profile     string   `envconfig:"PROFILE"`
	Instances   []string `envconfig:"INSTANCES"`
	LogLevel    string   `envconfig:"LOG_LEVEL"`
	StatusBind  string   `envconfig:"STATUS_BIND"`
	StatusToken string   `envconfig:"STATUS_TOKEN"`
}

const envPrefix = "LOGMIRROR"

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if env.TargetDir != "" {
		c.Paths.TargetDir = env.TargetDir
	}
	if env.LogDir != "" {
		c.Paths.LogDir = env.LogDir
	}
	if env.Region != "" {
		c.Source.Region = env.Region
	}
	if env.Profile != "" {
		c.Source.Profile = env.Profile
	}
	if len(env.Instances) > 0 {
		c.Sync.Instances = env.Instances
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.StatusBind != "" {
		c.Status.Bind = env.StatusBind
		c.Status.Enabled = true
	}
	if env.StatusToken != "" {
		c.Status.Token = env.StatusToken
	}
	return nil
}

// Normalize expands paths and canonicalizes free-form values. The CLI calls it
// again after applying flag overrides.
func (c *Config) Normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.TargetDir) == "" {
		c.Paths.TargetDir = defaultTargetDir
	}
	if c.Paths.TargetDir, err = expandPath(strings.TrimSpace(c.Paths.TargetDir)); err != nil {
		return fmt.Errorf("paths.target_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Source.Region = strings.TrimSpace(c.Source.Region)
	c.Source.Profile = strings.TrimSpace(c.Source.Profile)
	c.Source.Endpoint = strings.TrimSpace(c.Source.Endpoint)
	if c.Source.Burst <= 0 {
		c.Source.Burst = defaultSourceBurst
	}

	c.Sync.Instances = normalizeInstances(c.Sync.Instances)
	c.Sync.EngineFilter = strings.TrimSpace(c.Sync.EngineFilter)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Status.Bind = strings.TrimSpace(c.Status.Bind)
	c.Status.Token = strings.TrimSpace(c.Status.Token)
	if c.Status.Bind == "" {
		c.Status.Bind = defaultStatusBind
	}
	return nil
}

func normalizeInstances(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
