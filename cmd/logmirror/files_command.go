package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"logmirror/internal/mirror"
	"logmirror/internal/remote"
)

type fileRow struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	LastWritten string `json:"lastWritten"`
	LocalSize   int64  `json:"localSize"`
	State       string `json:"state"`
	Active      bool   `json:"active"`
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var fromTime int64

	cmd := &cobra.Command{
		Use:   "files <instance>",
		Short: "List remote log files and their local mirror state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance := strings.TrimSpace(args[0])
			if err := remote.ValidateInstanceID(instance); err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			src, err := ctx.source(cmd.Context())
			if err != nil {
				return err
			}
			cutoff := cfg.Sync.FromTime
			if cmd.Flags().Changed("from-time") {
				cutoff = fromTime
			}
			files, err := src.ListLogFiles(cmd.Context(), instance, cutoff)
			if err != nil {
				return fmt.Errorf("list log files: %w", err)
			}
			rows, err := buildFileRows(cfg.Paths.TargetDir, instance, files)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No log files reported for %s\n", instance)
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{
					row.Name,
					formatSize(row.Size),
					row.LastWritten,
					formatSize(row.LocalSize),
					row.State,
					yesNo(row.Active),
				})
			}
			fmt.Fprint(out, renderTable([]column{
				{title: "File"},
				{title: "Size", numeric: true},
				{title: "Last Written"},
				{title: "Local", numeric: true},
				{title: "State"},
				{title: "Active"},
			}, table))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().Int64Var(&fromTime, "from-time", 0, "Only list files written after this POSIX timestamp (seconds)")
	return cmd
}

// buildFileRows compares a listing with the local mirror. The newest file is
// the active one and is never reported complete.
func buildFileRows(targetDir, instance string, files []remote.LogFile) ([]fileRow, error) {
	active, hasActive := remote.Active(files)
	rows := make([]fileRow, 0, len(files))
	for _, file := range files {
		local, err := mirror.LocalSize(mirror.LocalPath(targetDir, instance, file.Name))
		if err != nil {
			return nil, err
		}
		isActive := hasActive && file.Name == active.Name
		rows = append(rows, fileRow{
			Name:        file.Name,
			Size:        file.Size,
			LastWritten: formatLastWritten(file.LastWritten),
			LocalSize:   local,
			State:       fileState(local, file.Size, isActive),
			Active:      isActive,
		})
	}
	return rows, nil
}

func fileState(local, remoteSize int64, active bool) string {
	switch {
	case local < 0:
		return "missing"
	case active:
		return "streaming"
	case local == remoteSize:
		return "complete"
	default:
		return "partial"
	}
}
