package config

const (
	defaultLogDir                = "~/.local/share/soundboard/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultVolume                = 1.0
	defaultGain                  = 1.0
	defaultMicGain               = 1.0
	defaultSampleRate            = 48000
	defaultLatencyMS             = 50
	defaultVirtualMicName        = "soundboard-virtual-mic"
	defaultVirtualMicDescription = "Soundboard Virtual Mic"
	defaultPlayerNodeName        = "soundboard-player"
	defaultLinkAttempts          = 5
	defaultLinkRetryDelayMS      = 100
	defaultEnumerateQuietMS      = 100
	defaultHotplugDebounceMS     = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RuntimeDir: defaultRuntimeDir(),
			LogDir:     defaultLogDir,
		},
		Audio: Audio{
			DefaultVolume:  defaultVolume,
			DefaultGain:    defaultGain,
			DefaultMicGain: defaultMicGain,
			SampleRate:     defaultSampleRate,
			LatencyMS:      defaultLatencyMS,
		},
		PipeWire: PipeWire{
			VirtualMicName:        defaultVirtualMicName,
			VirtualMicDescription: defaultVirtualMicDescription,
			PlayerNodeName:        defaultPlayerNodeName,
			LinkAttempts:          defaultLinkAttempts,
			LinkRetryDelayMS:      defaultLinkRetryDelayMS,
			EnumerateQuietMS:      defaultEnumerateQuietMS,
		},
		Binaries: Binaries{
			PWDump:  "pw-dump",
			PWCli:   "pw-cli",
			Wpctl:   "wpctl",
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Hotplug: Hotplug{
			Enabled:    true,
			DebounceMS: defaultHotplugDebounceMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
