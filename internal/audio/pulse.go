package audio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jfreymuth/pulse"

	"soundboard/internal/logging"
)

// OutputOptions configures the playback stream.
type OutputOptions struct {
	// AppName becomes the client name and, under pipewire-pulse, the node
	// name other components link against.
	AppName    string
	StreamName string
	SinkName   string
	SampleRate int
	Latency    time.Duration
	Logger     *slog.Logger
}

// PulseOutput plays a Mixer through the PulseAudio protocol server.
type PulseOutput struct {
	client *pulse.Client
	stream *pulse.PlaybackStream
	logger *slog.Logger
}

// OpenPulse connects to the sound server and starts pulling from mixer. When
// SinkName is empty or unknown the server's default sink is used.
func OpenPulse(mixer *Mixer, opts OutputOptions) (*PulseOutput, error) {
	logger := logging.NewComponentLogger(opts.Logger, "output")
	client, err := pulse.NewClient(pulse.ClientApplicationName(opts.AppName))
	if err != nil {
		return nil, fmt.Errorf("connect to sound server: %w", err)
	}

	rate := opts.SampleRate
	if rate <= 0 {
		rate = 48000
	}
	streamOpts := []pulse.PlaybackOption{
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(rate),
		pulse.PlaybackMediaName(opts.StreamName),
	}
	if opts.Latency > 0 {
		streamOpts = append(streamOpts, pulse.PlaybackLatency(opts.Latency.Seconds()))
	}
	if opts.SinkName != "" {
		sink, err := client.SinkByID(opts.SinkName)
		if err != nil {
			logging.WarnWithContext(logger, "preferred output unavailable; using default", "output_fallback",
				logging.String(logging.FieldDevice, opts.SinkName),
				logging.String(logging.FieldErrorHint, "check `soundboard get outputs` for valid names"),
				logging.String(logging.FieldImpact, "audio plays on the default output"),
				logging.Error(err),
			)
		} else {
			streamOpts = append(streamOpts, pulse.PlaybackSink(sink))
		}
	}

	stream, err := client.NewPlayback(pulse.Float32Reader(mixer.Read), streamOpts...)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open playback stream: %w", err)
	}
	stream.Start()
	logger.Info("audio output started",
		logging.String(logging.FieldEventType, "output_started"),
		logging.Int("sample_rate", rate),
		logging.String(logging.FieldDevice, opts.SinkName),
	)
	return &PulseOutput{client: client, stream: stream, logger: logger}, nil
}

// Sinks lists the names of the server's output devices.
func (o *PulseOutput) Sinks() ([]string, error) {
	sinks, err := o.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("list sinks: %w", err)
	}
	names := make([]string, 0, len(sinks))
	for _, sink := range sinks {
		names = append(names, sink.ID())
	}
	return names, nil
}

// Err returns the error that stopped the stream, if any.
func (o *PulseOutput) Err() error {
	return o.stream.Error()
}

// Close stops playback and disconnects from the server.
func (o *PulseOutput) Close() error {
	o.stream.Stop()
	o.stream.Close()
	o.client.Close()
	return nil
}
