package config

import (
	"errors"
	"fmt"

	"logmirror/internal/remote"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateStatus()
}

// ValidateTargets reports whether the config names something to mirror. It is
// separate from Validate because inspection commands run without targets.
func (c *Config) ValidateTargets() error {
	if !c.Sync.AllInstances && len(c.Sync.Instances) == 0 {
		return errors.New("no instances selected: set sync.instances, pass --instance, or enable --all-instances")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.TargetDir == "" {
		return errors.New("paths.target_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.RequestsPerSecond < 0 {
		return errors.New("source.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateSync() error {
	if err := ensurePositiveMap(map[string]int{
		"sync.max_historical_workers": c.Sync.MaxHistoricalWorkers,
		"sync.poll_interval":          c.Sync.PollInterval,
		"sync.page_lines":             c.Sync.PageLines,
	}); err != nil {
		return err
	}
	if c.Sync.FromTime < 0 {
		return errors.New("sync.from_time must be a POSIX timestamp (seconds) or 0")
	}
	if c.Sync.StallAlertPolls < 0 {
		return errors.New("sync.stall_alert_polls must not be negative")
	}
	for _, id := range c.Sync.Instances {
		if err := remote.ValidateInstanceID(id); err != nil {
			return fmt.Errorf("sync.instances: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}

func (c *Config) validateStatus() error {
	if c.Status.Enabled && c.Status.Bind == "" {
		return errors.New("status.bind must be set when status.enabled is true")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
