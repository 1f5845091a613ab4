package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soundboard/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize daemon playback state and local dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			lines := renderSectionHeader("Daemon", colorize)

			if _, err := ctx.call(cmd.Context(), "ping", nil); err != nil {
				lines = append(lines, renderStatusLine("Daemon", statusError, "not reachable", colorize))
			} else {
				lines = append(lines, renderStatusLine("Daemon", statusOK, "running", colorize))
				lines = append(lines, playbackLines(cmd, ctx, colorize)...)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(deps.CheckBinaries(deps.Requirements(cfg)), colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

// playbackLines queries the daemon field by field; a failed query renders
// the daemon's message instead of aborting the report.
func playbackLines(cmd *cobra.Command, ctx *commandContext, colorize bool) []string {
	fields := []struct {
		label   string
		request string
	}{
		{"State", "get_state"},
		{"File", "get_current_file_path"},
		{"Position", "get_position"},
		{"Duration", "get_duration"},
		{"Volume", "get_volume"},
		{"Loop", "get_loop"},
		{"Input", "get_input"},
		{"Output", "get_output"},
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		message, err := ctx.call(cmd.Context(), f.request, nil)
		if err != nil {
			lines = append(lines, renderStatusLine(f.label, statusWarn, err.Error(), colorize))
			continue
		}
		if f.request == "get_state" {
			message = unquoteState(message)
		}
		lines = append(lines, renderStatusLine(f.label, statusInfo, message, colorize))
	}
	return lines
}
