package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"soundboard/internal/audio"
	"soundboard/internal/graph"
	"soundboard/internal/optional"
)

// fakeSource yields silence; a negative left never ends.
type fakeSource struct {
	left   int
	closed bool
}

func (s *fakeSource) Read(dst []float32) (int, error) {
	if s.left == 0 {
		return 0, io.EOF
	}
	n := len(dst)
	if s.left > 0 {
		n = min(n, s.left)
		s.left -= n
	}
	clear(dst[:n])
	return n, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeLoader struct {
	durations map[string]time.Duration
	samples   int
	loadErr   error
	opened    []time.Duration
}

func (l *fakeLoader) Load(_ context.Context, path string) (audio.Track, error) {
	if l.loadErr != nil {
		return audio.Track{}, l.loadErr
	}
	track := audio.Track{Path: path}
	if d, ok := l.durations[path]; ok {
		track.Duration = optional.Some(d)
	}
	return track, nil
}

func (l *fakeLoader) Open(_ audio.Track, offset time.Duration) (audio.Source, error) {
	l.opened = append(l.opened, offset)
	left := l.samples
	if left == 0 {
		left = -1
	}
	return &fakeSource{left: left}, nil
}

type fakeLinker struct {
	inputs  []graph.AudioDevice
	outputs []graph.AudioDevice
	links   []string
	enumErr error
}

func (f *fakeLinker) LinkDevices(_ context.Context, slot *graph.LinkSlot, target string) error {
	slot.Cancel()
	f.links = append(f.links, target)
	return nil
}

func (f *fakeLinker) FindDevice(_ context.Context, name string) (graph.AudioDevice, error) {
	for _, d := range append(append([]graph.AudioDevice{}, f.inputs...), f.outputs...) {
		if d.Name == name {
			return d, nil
		}
	}
	return graph.AudioDevice{}, graph.ErrDeviceNotFound
}

func (f *fakeLinker) Enumerate(context.Context) ([]graph.AudioDevice, []graph.AudioDevice, error) {
	if f.enumErr != nil {
		return nil, nil, f.enumErr
	}
	return append([]graph.AudioDevice{}, f.inputs...), append([]graph.AudioDevice{}, f.outputs...), nil
}

func (f *fakeLinker) VirtualMicName() string { return "soundboard-virtual-mic" }

type volumeCall struct {
	id   uint32
	gain float64
}

type fakeVolume struct {
	calls []volumeCall
	err   error
}

func (v *fakeVolume) SetSourceVolume(_ context.Context, id uint32, gain float64) error {
	v.calls = append(v.calls, volumeCall{id, gain})
	return v.err
}

type fakeOutput struct {
	sinks  []string
	closed bool
}

func (o *fakeOutput) Sinks() ([]string, error) { return o.sinks, nil }
func (o *fakeOutput) Close() error {
	o.closed = true
	return nil
}

type harness struct {
	engine *Engine
	loader *fakeLoader
	linker *fakeLinker
	volume *fakeVolume
	output *fakeOutput
	dir    string
}

func defaultLinker() *fakeLinker {
	return &fakeLinker{
		inputs: []graph.AudioDevice{
			{ID: 50, Name: "alsa_input.usb-mic", Nick: "USB Mic", Kind: graph.Input},
			{ID: 60, Name: "soundboard-virtual-mic", Nick: "Soundboard Virtual Mic", Kind: graph.Input},
		},
		outputs: []graph.AudioDevice{
			{ID: 70, Name: "firefox", Nick: "Firefox", Kind: graph.Output},
		},
	}
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		loader: &fakeLoader{durations: map[string]time.Duration{}},
		linker: defaultLinker(),
		volume: &fakeVolume{},
		output: &fakeOutput{sinks: []string{"alsa_output.speakers", "alsa_output.hdmi"}},
		dir:    t.TempDir(),
	}
	opts := Options{
		Loader:         h.loader,
		Linker:         h.linker,
		Volume:         h.volume,
		OpenOutput:     func(*audio.Mixer) (Output, error) { return h.output, nil },
		SampleRate:     48000,
		DefaultVolume:  1,
		DefaultGain:    1,
		DefaultMicGain: 1,
	}
	if mutate != nil {
		mutate(&opts)
	}
	e, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	h.engine = e
	return h
}

// file creates an audio file in the harness directory.
func (h *harness) file(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// drain pulls enough audio through the mixer to exhaust finite sources.
func (h *harness) drain() {
	buf := make([]float32, 4096)
	for i := 0; i < 8; i++ {
		_, _ = h.engine.Mixer().Read(buf)
	}
}

var errDecode = errors.New("unrecognized format")
