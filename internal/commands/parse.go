package commands

import (
	"math"
	"strconv"

	"soundboard/internal/ipc"
	"soundboard/internal/optional"
)

// Argument keys used on the wire.
const (
	ArgVolume     = "volume"
	ArgGain       = "gain"
	ArgMicGain    = "mic_gain"
	ArgPosition   = "position"
	ArgFilePath   = "file_path"
	ArgInputName  = "input_name"
	ArgOutputName = "output_name"
	ArgEnabled    = "enabled"
	ArgLayerIndex = "layer_index"
)

// Command is a parsed request. Only the fields relevant to Kind are read.
type Command struct {
	Kind Kind

	// Value carries volume, gain, mic gain or position.
	Value      optional.Optional[float64]
	Enabled    optional.Optional[bool]
	FilePath   optional.Optional[string]
	DeviceName optional.Optional[string]
	LayerIndex optional.Optional[int]
}

// Parse builds a Command from req. It reports false for names outside the
// command set.
func Parse(req ipc.Request) (Command, bool) {
	kind, ok := KindFromName(req.Name)
	if !ok {
		return Command{}, false
	}
	cmd := Command{Kind: kind}
	args := req.Args

	switch kind {
	case SetVolume:
		cmd.Value = parseFloat(args[ArgVolume])
	case SetGain:
		cmd.Value = parseFloat(args[ArgGain])
	case SetMicGain:
		cmd.Value = parseFloat(args[ArgMicGain])
	case Seek:
		cmd.Value = parseFloat(args[ArgPosition])
	case Play, Preview:
		cmd.FilePath = parsePath(args, ArgFilePath)
	case SetInput:
		cmd.DeviceName = parseName(args, ArgInputName)
	case SetOutput:
		cmd.DeviceName = parseName(args, ArgOutputName)
	case SetLoop:
		cmd.Enabled = parseBool(args[ArgEnabled])
	case PlayOnLayer:
		cmd.LayerIndex = parseIndex(args[ArgLayerIndex])
		cmd.FilePath = parsePath(args, ArgFilePath)
	case StopLayer:
		cmd.LayerIndex = parseIndex(args[ArgLayerIndex])
	case SetLayerVolume:
		cmd.LayerIndex = parseIndex(args[ArgLayerIndex])
		cmd.Value = parseFloat(args[ArgVolume])
	}
	return cmd, true
}

func parseFloat(raw string) optional.Optional[float64] {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return optional.None[float64]()
	}
	return optional.Some(v)
}

func parseBool(raw string) optional.Optional[bool] {
	switch raw {
	case "true":
		return optional.Some(true)
	case "false":
		return optional.Some(false)
	default:
		return optional.None[bool]()
	}
}

func parseIndex(raw string) optional.Optional[int] {
	v, err := strconv.ParseUint(raw, 10, strconv.IntSize-1)
	if err != nil {
		return optional.None[int]()
	}
	return optional.Some(int(v))
}

func parseName(args map[string]string, key string) optional.Optional[string] {
	name, ok := args[key]
	if !ok || name == "" {
		return optional.None[string]()
	}
	return optional.Some(name)
}

func parsePath(args map[string]string, key string) optional.Optional[string] {
	raw, ok := args[key]
	if !ok {
		return optional.None[string]()
	}
	path, ok := ValidateAudioPath(raw)
	if !ok {
		return optional.None[string]()
	}
	return optional.Some(path)
}
