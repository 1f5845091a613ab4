package main

import (
	"github.com/spf13/cobra"

	"soundboard/internal/commands"
)

func newSetCommand(ctx *commandContext) *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change daemon settings",
	}

	setters := []struct {
		use     string
		request string
		arg     string
		short   string
	}{
		{"volume", "set_volume", commands.ArgVolume, "Set the main track volume"},
		{"gain", "set_gain", commands.ArgGain, "Set the output gain (0 to 5)"},
		{"mic-gain", "set_mic_gain", commands.ArgMicGain, "Set the microphone gain (0.5 to 3)"},
		{"position", "seek", commands.ArgPosition, "Seek the main track to SECONDS"},
		{"input", "set_input", commands.ArgInputName, "Select the input device routed to the mic"},
		{"output", "set_output", commands.ArgOutputName, "Save the preferred output device"},
		{"loop", "set_loop", commands.ArgEnabled, "Enable or disable looping (true|false)"},
	}

	for _, s := range setters {
		request, arg := s.request, s.arg
		setCmd.AddCommand(&cobra.Command{
			Use:   s.use + " VALUE",
			Short: s.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ctx.sendAndPrint(cmd, request, map[string]string{arg: args[0]})
			},
		})
	}
	return setCmd
}
