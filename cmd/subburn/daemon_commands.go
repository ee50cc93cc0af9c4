package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Start()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				switch {
				case resp == nil:
					fmt.Fprintln(stdout, "Start request sent")
				case resp.Started:
					fmt.Fprintln(stdout, "Workflow started")
				case strings.TrimSpace(resp.Message) != "":
					fmt.Fprintln(stdout, resp.Message)
				default:
					fmt.Fprintln(stdout, "Workflow already running")
				}
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp != nil && resp.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "Workflow stopped")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Stop request sent")
				}
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				renderStatus(cmd, resp)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

func renderStatus(cmd *cobra.Command, resp *ipc.StatusResponse) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	runningKind := statusWarn
	if resp.Running {
		runningKind = statusOK
	}
	fmt.Fprintln(stdout, renderStatusLine("Workflow running", runningKind, yesNo(resp.Running), colorize))
	if resp.PID > 0 {
		fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", resp.PID), colorize))
	}
	if resp.QueueDBPath != "" {
		fmt.Fprintln(stdout, renderStatusLine("Queue database", statusInfo, resp.QueueDBPath, colorize))
	}
	if resp.LastError != "" {
		fmt.Fprintln(stdout, renderStatusLine("Last error", statusError, resp.LastError, colorize))
	}
	fmt.Fprintln(stdout)

	if len(resp.StageHealth) > 0 {
		for _, line := range renderSectionHeader("Stages", colorize) {
			fmt.Fprintln(stdout, line)
		}
		for _, stage := range resp.StageHealth {
			kind := statusOK
			message := "Ready"
			if !stage.Ready {
				kind = statusWarn
				message = stage.Detail
				if strings.TrimSpace(message) == "" {
					message = "not ready"
				}
			}
			fmt.Fprintln(stdout, renderStatusLine(stage.Name, kind, message, colorize))
		}
		fmt.Fprintln(stdout)
	}

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range dependencyLines(resp.Dependencies, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Queue Status", colorize) {
		fmt.Fprintln(stdout, line)
	}
	rows := buildQueueStatusRows(resp.QueueStats)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "Queue is empty")
		return
	}
	table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	fmt.Fprintln(stdout, table)
}

func dependencyLines(deps []ipc.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps)+1)
	missing := make([]string, 0)
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}
