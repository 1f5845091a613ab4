package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"soundboard/internal/audio"
	"soundboard/internal/graph"
	"soundboard/internal/logging"
	"soundboard/internal/optional"
)

const (
	minGain    = 0.0
	maxGain    = 5.0
	minMicGain = 0.5
	maxMicGain = 3.0
)

// Loader probes and decodes audio files.
type Loader interface {
	Load(ctx context.Context, path string) (audio.Track, error)
	Open(track audio.Track, offset time.Duration) (audio.Source, error)
}

// Linker resolves graph devices and routes them into the virtual mic.
type Linker interface {
	LinkDevices(ctx context.Context, slot *graph.LinkSlot, targetInputName string) error
	FindDevice(ctx context.Context, name string) (graph.AudioDevice, error)
	Enumerate(ctx context.Context) (inputs, outputs []graph.AudioDevice, err error)
	VirtualMicName() string
}

// VolumeControl sets the capture volume of a graph node.
type VolumeControl interface {
	SetSourceVolume(ctx context.Context, id uint32, gain float64) error
}

// Output is the playback backend pulling from the engine's mixer.
type Output interface {
	Sinks() ([]string, error)
	Close() error
}

// OutputOpener attaches an Output to the engine's mixer.
type OutputOpener func(mixer *audio.Mixer) (Output, error)

// Options configures New.
type Options struct {
	Loader     Loader
	Linker     Linker
	Volume     VolumeControl
	OpenOutput OutputOpener
	SampleRate int

	DefaultVolume     float64
	DefaultGain       float64
	DefaultMicGain    float64
	DefaultInputName  string
	DefaultOutputName string

	Logger *slog.Logger
}

// Engine owns the sinks, the current input selection and the mic link.
type Engine struct {
	loader Loader
	linker Linker
	volCtl VolumeControl
	output Output
	logger *slog.Logger

	mixer  *audio.Mixer
	main   *audio.Sink
	layers [NumLayers]*layer
	link   graph.LinkSlot

	currentInput  *graph.AudioDevice
	currentOutput string

	volume  float64
	gain    float64
	micGain float64
	looped  bool

	currentFile optional.Optional[string]
	duration    optional.Optional[time.Duration]
}

// New builds the engine, opens its output and applies the configured
// defaults. A missing default input device is logged and ignored.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Loader == nil || opts.Linker == nil {
		return nil, errors.New("engine requires a loader and a linker")
	}
	e := &Engine{
		loader:        opts.Loader,
		linker:        opts.Linker,
		volCtl:        opts.Volume,
		logger:        logging.NewComponentLogger(opts.Logger, "engine"),
		main:          audio.NewSink(opts.SampleRate),
		volume:        opts.DefaultVolume,
		gain:          clamp(opts.DefaultGain, minGain, maxGain),
		micGain:       clamp(opts.DefaultMicGain, minMicGain, maxMicGain),
		currentOutput: opts.DefaultOutputName,
	}
	e.mixer = audio.NewMixer(e.main)
	for i := range e.layers {
		e.layers[i] = newLayer(opts.SampleRate)
		e.mixer.Add(e.layers[i].sink)
	}
	e.applyGain()

	if opts.OpenOutput != nil {
		out, err := opts.OpenOutput(e.mixer)
		if err != nil {
			return nil, fmt.Errorf("open audio output: %w", err)
		}
		e.output = out
	}

	if opts.DefaultInputName != "" {
		dev, err := e.linker.FindDevice(ctx, opts.DefaultInputName)
		switch {
		case err != nil:
			e.logger.Info("default input device unavailable",
				logging.String(logging.FieldDevice, opts.DefaultInputName),
				logging.Error(err),
			)
		case dev.Kind != graph.Input:
			e.logger.Info("default input device is not a capture device",
				logging.String(logging.FieldDevice, opts.DefaultInputName),
			)
		default:
			e.currentInput = &dev
			if err := e.relink(ctx); err != nil {
				return nil, err
			}
			e.applyMicGain(ctx)
		}
	}
	return e, nil
}

// Mixer exposes the shared mixer for an externally managed output.
func (e *Engine) Mixer() *audio.Mixer {
	return e.mixer
}

// Close stops every sink, drops the mic link and closes the output.
func (e *Engine) Close() error {
	e.main.Stop()
	e.StopAllLayers()
	e.link.Cancel()
	if e.output != nil {
		return e.output.Close()
	}
	return nil
}

// State derives the main sink's playback state.
func (e *Engine) State() State {
	return stateOf(e.main)
}

// Play replaces whatever the main sink holds with path, starts playback and
// relinks the current input into the virtual mic.
func (e *Engine) Play(ctx context.Context, path string) error {
	if err := e.startMain(ctx, path); err != nil {
		return err
	}
	return e.relink(ctx)
}

// Preview plays path like Play, but drops the mic link instead of relinking
// so the sound is only heard locally.
func (e *Engine) Preview(ctx context.Context, path string) error {
	track, src, err := e.open(ctx, path)
	if err != nil {
		return err
	}
	e.main.Stop()
	e.link.Cancel()
	e.installMain(track, src)
	return nil
}

func (e *Engine) startMain(ctx context.Context, path string) error {
	track, src, err := e.open(ctx, path)
	if err != nil {
		return err
	}
	e.main.Stop()
	e.installMain(track, src)
	return nil
}

func (e *Engine) installMain(track audio.Track, src audio.Source) {
	e.currentFile = optional.Some(track.Path)
	e.duration = track.Duration
	e.main.Replace(track, src, e.opener(track))
	e.main.Play()
	e.logger.Debug("main sink started", logging.String("file", track.Path))
}

func (e *Engine) open(ctx context.Context, path string) (audio.Track, audio.Source, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return audio.Track{}, nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return audio.Track{}, nil, err
	}
	track, err := e.loader.Load(ctx, path)
	if err != nil {
		return audio.Track{}, nil, err
	}
	src, err := e.loader.Open(track, 0)
	if err != nil {
		return audio.Track{}, nil, err
	}
	return track, src, nil
}

func (e *Engine) opener(track audio.Track) audio.Opener {
	return func(offset time.Duration) (audio.Source, error) {
		return e.loader.Open(track, offset)
	}
}

func (e *Engine) relink(ctx context.Context) error {
	name := ""
	if e.currentInput != nil {
		name = e.currentInput.Name
	}
	return e.linker.LinkDevices(ctx, &e.link, name)
}

// Relink re-runs input linking for the current selection.
func (e *Engine) Relink(ctx context.Context) error {
	return e.relink(ctx)
}

// Linked reports whether a mic link is currently held.
func (e *Engine) Linked() bool {
	return e.link.Active()
}

// Pause is effective only while playing.
func (e *Engine) Pause() {
	if e.State() == Playing {
		e.main.Pause()
	}
}

// Resume is effective only while paused.
func (e *Engine) Resume() {
	if e.State() == Paused {
		e.main.Play()
	}
}

// Stop empties the main sink.
func (e *Engine) Stop() {
	e.main.Stop()
}

// IsPaused reports the main sink's pause flag, regardless of state.
func (e *Engine) IsPaused() bool {
	return e.main.IsPaused()
}

// Seek moves the main sink to pos, clamping negative values to zero.
func (e *Engine) Seek(pos time.Duration) error {
	if pos < 0 {
		pos = 0
	}
	return e.main.TrySeek(pos)
}

// Position returns the main sink's position, or zero when stopped.
func (e *Engine) Position() time.Duration {
	if e.State() == Stopped {
		return 0
	}
	return e.main.Position()
}

// Duration returns the length of the current file.
func (e *Engine) Duration() (time.Duration, error) {
	if e.State() == Stopped {
		return 0, ErrNothingPlaying
	}
	d, ok := e.duration.Get()
	if !ok {
		return 0, ErrUnknownDuration
	}
	return d, nil
}

// CurrentFilePath returns the remembered file. Reading it while stopped and
// not looping forgets the file.
func (e *Engine) CurrentFilePath() (string, bool) {
	if e.State() == Stopped && !e.looped {
		e.currentFile.Unset()
	}
	return e.currentFile.Get()
}

// ReplayIfLooped restarts the remembered file when looping is on and the main
// sink has run dry. It reports whether playback was restarted.
func (e *Engine) ReplayIfLooped(ctx context.Context) (bool, error) {
	if !e.looped || e.State() != Stopped {
		return false, nil
	}
	path, ok := e.currentFile.Get()
	if !ok {
		return false, nil
	}
	if err := e.Play(ctx, path); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) Volume() float64 {
	return e.volume
}

// SetVolume sets the master volume.
func (e *Engine) SetVolume(v float64) {
	e.volume = v
	e.applyGain()
}

func (e *Engine) Gain() float64 {
	return e.gain
}

// SetGain sets the master gain, clamped to 0..5.
func (e *Engine) SetGain(g float64) {
	e.gain = clamp(g, minGain, maxGain)
	e.applyGain()
}

func (e *Engine) applyGain() {
	e.main.SetVolume(e.volume * e.gain)
	for _, l := range e.layers {
		l.sink.SetVolume(l.volume * e.gain)
	}
}

func (e *Engine) MicGain() float64 {
	return e.micGain
}

// SetMicGain stores g, clamped to 0.5..3, and applies it to the selected
// input device.
func (e *Engine) SetMicGain(ctx context.Context, g float64) {
	e.micGain = clamp(g, minMicGain, maxMicGain)
	e.applyMicGain(ctx)
}

func (e *Engine) applyMicGain(ctx context.Context) {
	if e.currentInput == nil || e.volCtl == nil {
		return
	}
	if err := e.volCtl.SetSourceVolume(ctx, e.currentInput.ID, e.micGain); err != nil {
		e.logger.Debug("mic gain not applied",
			logging.String(logging.FieldDevice, e.currentInput.Name),
			logging.Error(err),
		)
	}
}

// CurrentInput returns the selected capture device.
func (e *Engine) CurrentInput() (graph.AudioDevice, bool) {
	if e.currentInput == nil {
		return graph.AudioDevice{}, false
	}
	return *e.currentInput, true
}

// SetInput selects the capture device named name and relinks it.
func (e *Engine) SetInput(ctx context.Context, name string) error {
	dev, err := e.linker.FindDevice(ctx, name)
	if err != nil {
		return err
	}
	if dev.Kind != graph.Input {
		return graph.ErrNotInputDevice
	}
	e.currentInput = &dev
	return e.relink(ctx)
}

// Inputs lists capture devices other than the virtual mic.
func (e *Engine) Inputs(ctx context.Context) ([]graph.AudioDevice, error) {
	inputs, _, err := e.linker.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	vmic := e.linker.VirtualMicName()
	return slices.DeleteFunc(inputs, func(d graph.AudioDevice) bool {
		return d.Name == vmic
	}), nil
}

// CurrentOutput returns the preferred output device name.
func (e *Engine) CurrentOutput() (string, bool) {
	return e.currentOutput, e.currentOutput != ""
}

// Outputs lists the playback devices known to the output backend.
func (e *Engine) Outputs() ([]string, error) {
	if e.output == nil {
		return nil, ErrNoOutputBackend
	}
	return e.output.Sinks()
}

// SetOutputPreference records name as the preferred output. The stream is not
// moved; the preference applies the next time the daemon opens its output.
func (e *Engine) SetOutputPreference(name string) error {
	outputs, err := e.Outputs()
	if err != nil {
		return err
	}
	if !slices.Contains(outputs, name) {
		return ErrUnknownOutput
	}
	e.currentOutput = name
	return nil
}

func (e *Engine) Loop() bool {
	return e.looped
}

func (e *Engine) SetLoop(enabled bool) {
	e.looped = enabled
}

// ToggleLoop flips looping and returns the new value.
func (e *Engine) ToggleLoop() bool {
	e.looped = !e.looped
	return e.looped
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
