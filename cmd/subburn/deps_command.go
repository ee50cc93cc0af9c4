package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subburn/internal/api"
	"subburn/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.Check(cfg)
			if ctx.JSONMode() {
				return writeJSON(cmd, api.FromDependencyStatuses(statuses))
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(api.FromDependencyStatuses(statuses), colorize) {
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}
}
