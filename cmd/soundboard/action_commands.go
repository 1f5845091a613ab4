package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"soundboard/internal/commands"
)

// simpleActions maps argument-less action subcommands to request names.
var simpleActions = []struct {
	use     string
	request string
	short   string
}{
	{"ping", "ping", "Check that the daemon is answering"},
	{"pause", "pause", "Pause the main track"},
	{"resume", "resume", "Resume the main track"},
	{"toggle-pause", "toggle_pause", "Pause or resume the main track"},
	{"stop", "stop", "Stop the main track"},
	{"toggle-loop", "toggle_loop", "Flip looping of the main track"},
	{"stop-all-layers", "stop_all_layers", "Stop every layer"},
}

func newActionCommand(ctx *commandContext) *cobra.Command {
	actionCmd := &cobra.Command{
		Use:   "action",
		Short: "Control playback",
	}

	for _, action := range simpleActions {
		request := action.request
		actionCmd.AddCommand(&cobra.Command{
			Use:   action.use,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return ctx.sendAndPrint(cmd, request, nil)
			},
		})
	}

	actionCmd.AddCommand(newPlayFileCommand(ctx, "play", "play", "Play a file on the main track and the mic"))
	actionCmd.AddCommand(newPlayFileCommand(ctx, "preview", "preview", "Play a file on the main track without mic routing"))
	return actionCmd
}

func newPlayFileCommand(ctx *commandContext, use, request, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			return ctx.sendAndPrint(cmd, request, map[string]string{commands.ArgFilePath: path})
		},
	}
}

// absPath resolves relative paths against the client's working directory;
// the daemon resolves them against its own.
func absPath(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("file path is empty")
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", raw, err)
	}
	return abs, nil
}
