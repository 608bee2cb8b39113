package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"logmirror/internal/api"
)

type statusSnapshot struct {
	Daemon    api.DaemonStatus     `json:"daemon"`
	Instances []api.InstanceStatus `json:"instances"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running mirror process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			address := cfg.Status.Bind
			if strings.TrimSpace(bind) != "" {
				address = bind
			}
			client, err := api.NewClient(address, cfg.Status.Token)
			if err != nil {
				return fmt.Errorf("status api client: %w", err)
			}

			snapshot, err := fetchStatus(cmd.Context(), client)
			out := cmd.OutOrStdout()
			if err != nil {
				if api.IsUnavailable(err) {
					if jsonOut {
						return writeJSON(cmd, statusSnapshot{})
					}
					newStatusPrinter(out).line("Daemon", statusWarn, "not running (status API unreachable at "+address+")")
					return nil
				}
				return err
			}
			if jsonOut {
				return writeJSON(cmd, snapshot)
			}
			renderStatus(newStatusPrinter(out), snapshot)
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Status API address (defaults to status.bind)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func fetchStatus(ctx context.Context, client *api.Client) (statusSnapshot, error) {
	if client == nil {
		return statusSnapshot{}, api.ErrUnavailable
	}
	health, err := client.Health(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return statusSnapshot{}, fmt.Errorf("%w (set status.token or LOGMIRROR_STATUS_TOKEN)", err)
		}
		return statusSnapshot{}, err
	}
	instances, err := client.Instances(ctx)
	if err != nil {
		return statusSnapshot{}, err
	}
	return statusSnapshot{Daemon: health, Instances: instances}, nil
}

func renderStatus(p *statusPrinter, snapshot statusSnapshot) {
	d := snapshot.Daemon
	p.section("Daemon")
	if d.Running {
		p.line("Daemon", statusOK, "running (pid "+strconv.Itoa(d.PID)+")")
	} else {
		p.line("Daemon", statusWarn, "stopped")
	}
	optional := []struct{ label, value string }{
		{"Started", d.StartedAt},
		{"Session", d.SessionID},
		{"Target", d.TargetDir},
		{"Log", d.LogPath},
	}
	for _, item := range optional {
		if item.value != "" {
			p.line(item.label, statusInfo, item.value)
		}
	}
	p.line("Historical", statusInfo, fmt.Sprintf("%d of %d slots in use", d.InFlight, d.MaxHistorical))

	if len(d.Checks) > 0 {
		fmt.Fprintln(p.out)
		p.section("Checks")
		for _, check := range d.Checks {
			kind := statusOK
			switch {
			case check.Passed:
			case check.Required:
				kind = statusError
			default:
				kind = statusWarn
			}
			p.line(check.Name, kind, check.Detail)
		}
	}

	fmt.Fprintln(p.out)
	p.section("Instances")
	if len(snapshot.Instances) == 0 {
		fmt.Fprintln(p.out, "  No instances")
		return
	}
	rows := make([][]string, 0, len(snapshot.Instances))
	for _, inst := range snapshot.Instances {
		phase := inst.Phase
		if inst.Stalled {
			phase += " (stalled)"
		}
		active := inst.ActiveFile
		if active == "" {
			active = "-"
		}
		rows = append(rows, []string{
			inst.Instance,
			phase,
			active,
			formatSize(inst.BytesWritten),
			fmt.Sprintf("%d/%d/%d", inst.FilesDownloaded, inst.FilesSkipped, inst.FilesFailed),
			strconv.Itoa(inst.FailureStreak),
		})
	}
	fmt.Fprint(p.out, renderTable([]column{
		{title: "Instance"},
		{title: "Phase"},
		{title: "Active File"},
		{title: "Written", numeric: true},
		{title: "Got/Skip/Fail", numeric: true},
		{title: "Failed Polls", numeric: true},
	}, rows))
	fmt.Fprintln(p.out)
}
