package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"logmirror/internal/remote"
)

func newInstancesCommand(ctx *commandContext) *cobra.Command {
	var engine string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "instances",
		Short: "List database instances visible to the configured account",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := ctx.source(cmd.Context())
			if err != nil {
				return err
			}
			discoverer, ok := src.(remote.Discoverer)
			if !ok {
				return errors.New("configured source cannot list instances")
			}
			instances, err := discoverer.ListInstances(cmd.Context())
			if err != nil {
				return fmt.Errorf("list instances: %w", err)
			}
			instances = remote.FilterByEngine(instances, engine)

			if jsonOut {
				return writeJSON(cmd, instances)
			}
			out := cmd.OutOrStdout()
			if len(instances) == 0 {
				fmt.Fprintln(out, "No instances found")
				return nil
			}
			rows := make([][]string, 0, len(instances))
			for _, inst := range instances {
				rows = append(rows, []string{inst.ID, inst.Engine, inst.Status})
			}
			fmt.Fprint(out, renderTable([]column{{title: "Instance"}, {title: "Engine"}, {title: "Status"}}, rows))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&engine, "engine", "e", "", "Only list instances running this engine")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
