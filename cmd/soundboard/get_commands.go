package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type getter struct {
	use     string
	request string
	short   string
	render  func(cmd *cobra.Command, message string) error
}

func newGetCommand(ctx *commandContext) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Query daemon state",
	}

	getters := []getter{
		{use: "state", request: "get_state", short: "Playback state of the main track", render: renderState},
		{use: "volume", request: "get_volume", short: "Main track volume"},
		{use: "gain", request: "get_gain", short: "Output gain"},
		{use: "mic-gain", request: "get_mic_gain", short: "Microphone gain"},
		{use: "position", request: "get_position", short: "Main track position in seconds"},
		{use: "duration", request: "get_duration", short: "Main track duration in seconds"},
		{use: "input", request: "get_input", short: "Selected input device"},
		{use: "inputs", request: "get_inputs", short: "Available input devices", render: renderInputs},
		{use: "output", request: "get_output", short: "Preferred output device"},
		{use: "outputs", request: "get_outputs", short: "Available output devices", render: renderOutputs},
		{use: "loop", request: "get_loop", short: "Whether the main track loops"},
		{use: "is-paused", request: "is_paused", short: "Whether the main track is paused"},
		{use: "current-file", request: "get_current_file_path", short: "File on the main track"},
		{use: "layers", request: "get_layers_info", short: "State of every layer", render: renderLayers},
	}

	for _, g := range getters {
		getCmd.AddCommand(&cobra.Command{
			Use:   g.use,
			Short: g.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				message, err := ctx.call(cmd.Context(), g.request, nil)
				if err != nil {
					return err
				}
				if g.render != nil {
					return g.render(cmd, message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), message)
				return nil
			},
		})
	}
	return getCmd
}
