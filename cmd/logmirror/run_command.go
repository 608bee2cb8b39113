package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"logmirror/internal/config"
	"logmirror/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mirror closed log files, then tail the active file of each instance",
		Long: "Run downloads every closed log file that is missing or incomplete locally, then " +
			"follows the file each instance is currently writing until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := applyRunFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			opts := daemonrun.Options{}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				opts.LogLevel = "debug"
			}
			return daemonrun.Run(cmd.Context(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceP("instance", "i", nil, "Instance to mirror (repeatable or comma separated)")
	flags.BoolP("all-instances", "a", false, "Mirror every instance visible to the account")
	flags.StringP("engine", "e", "", "Only mirror discovered instances running this engine")
	flags.StringP("target-dir", "t", "", "Local directory that receives the mirror")
	flags.Int("max-historical", 0, "Maximum concurrent historical downloads")
	flags.IntP("poll-interval", "p", 0, "Seconds between polls of the active file")
	flags.IntP("page-lines", "l", 0, "Lines requested per download portion")
	flags.Int64("from-time", 0, "Only mirror files written after this POSIX timestamp (seconds)")
	flags.BoolP("debug", "d", false, "Enable debug logging")
	return cmd
}

// applyRunFlags overlays explicitly set flags onto cfg and revalidates it.
func applyRunFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}
	set("instance", func() (e error) { cfg.Sync.Instances, e = flags.GetStringSlice("instance"); return })
	set("all-instances", func() (e error) { cfg.Sync.AllInstances, e = flags.GetBool("all-instances"); return })
	set("engine", func() (e error) { cfg.Sync.EngineFilter, e = flags.GetString("engine"); return })
	set("target-dir", func() (e error) { cfg.Paths.TargetDir, e = flags.GetString("target-dir"); return })
	set("max-historical", func() (e error) { cfg.Sync.MaxHistoricalWorkers, e = flags.GetInt("max-historical"); return })
	set("poll-interval", func() (e error) { cfg.Sync.PollInterval, e = flags.GetInt("poll-interval"); return })
	set("page-lines", func() (e error) { cfg.Sync.PageLines, e = flags.GetInt("page-lines"); return })
	set("from-time", func() (e error) { cfg.Sync.FromTime, e = flags.GetInt64("from-time"); return })
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	return nil
}
