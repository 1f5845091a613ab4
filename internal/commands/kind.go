package commands

// Kind identifies one command in the closed command set.
type Kind int

const (
	Ping Kind = iota
	Pause
	Resume
	TogglePause
	Stop
	IsPaused
	GetState
	GetVolume
	SetVolume
	GetGain
	SetGain
	GetMicGain
	SetMicGain
	GetPosition
	Seek
	GetDuration
	Play
	Preview
	GetCurrentFilePath
	GetInput
	GetInputs
	SetInput
	GetOutput
	GetOutputs
	SetOutput
	GetLoop
	SetLoop
	ToggleLoop
	PlayOnLayer
	StopLayer
	StopAllLayers
	SetLayerVolume
	GetLayersInfo
)

var kindNames = [...]string{
	Ping:               "ping",
	Pause:              "pause",
	Resume:             "resume",
	TogglePause:        "toggle_pause",
	Stop:               "stop",
	IsPaused:           "is_paused",
	GetState:           "get_state",
	GetVolume:          "get_volume",
	SetVolume:          "set_volume",
	GetGain:            "get_gain",
	SetGain:            "set_gain",
	GetMicGain:         "get_mic_gain",
	SetMicGain:         "set_mic_gain",
	GetPosition:        "get_position",
	Seek:               "seek",
	GetDuration:        "get_duration",
	Play:               "play",
	Preview:            "preview",
	GetCurrentFilePath: "get_current_file_path",
	GetInput:           "get_input",
	GetInputs:          "get_inputs",
	SetInput:           "set_input",
	GetOutput:          "get_output",
	GetOutputs:         "get_outputs",
	SetOutput:          "set_output",
	GetLoop:            "get_loop",
	SetLoop:            "set_loop",
	ToggleLoop:         "toggle_loop",
	PlayOnLayer:        "play_on_layer",
	StopLayer:          "stop_layer",
	StopAllLayers:      "stop_all_layers",
	SetLayerVolume:     "set_layer_volume",
	GetLayersInfo:      "get_layers_info",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindFromName looks up a wire command name.
func KindFromName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Names lists every wire command name in declaration order.
func Names() []string {
	return append([]string(nil), kindNames[:]...)
}
