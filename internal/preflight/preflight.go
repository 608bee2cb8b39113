package preflight

import (
	"context"

	"logmirror/internal/config"
	"logmirror/internal/remote"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

// RunAll executes the preflight checks for cfg. The source check is skipped
// when src is nil.
func RunAll(ctx context.Context, cfg *config.Config, src remote.Source) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	target := CheckDirectoryAccess("Mirror directory", cfg.Paths.TargetDir)
	target.Required = true
	results = append(results, target)
	if target.Passed {
		results = append(results, CheckFreeSpace("Mirror free space", cfg.Paths.TargetDir, minFreeBytes))
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if src != nil {
		if probe := probeInstance(cfg); probe != "" || cfg.Sync.AllInstances {
			results = append(results, CheckSource(ctx, src, probe))
		}
	}

	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Required && !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func probeInstance(cfg *config.Config) string {
	if len(cfg.Sync.Instances) == 0 || cfg.Sync.AllInstances {
		return ""
	}
	return cfg.Sync.Instances[0]
}
