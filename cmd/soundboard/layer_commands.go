package main

import (
	"github.com/spf13/cobra"

	"soundboard/internal/commands"
)

func newLayerCommand(ctx *commandContext) *cobra.Command {
	layerCmd := &cobra.Command{
		Use:   "layer",
		Short: "Control the overlay layers",
	}

	layerCmd.AddCommand(&cobra.Command{
		Use:   "play INDEX FILE",
		Short: "Play a file on a layer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[1])
			if err != nil {
				return err
			}
			return ctx.sendAndPrint(cmd, "play_on_layer", map[string]string{
				commands.ArgLayerIndex: args[0],
				commands.ArgFilePath:   path,
			})
		},
	})

	layerCmd.AddCommand(&cobra.Command{
		Use:   "stop INDEX",
		Short: "Stop a layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.sendAndPrint(cmd, "stop_layer", map[string]string{commands.ArgLayerIndex: args[0]})
		},
	})

	layerCmd.AddCommand(&cobra.Command{
		Use:   "volume INDEX VOLUME",
		Short: "Set a layer's volume (0 to 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.sendAndPrint(cmd, "set_layer_volume", map[string]string{
				commands.ArgLayerIndex: args[0],
				commands.ArgVolume:     args[1],
			})
		},
	})

	return layerCmd
}
