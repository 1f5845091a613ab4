package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"soundboard/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The runtime directory lives under a short os.MkdirTemp path so the socket
// stays within the unix address length limit.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	runtimeDir, err := os.MkdirTemp("", "sbrt")
	if err != nil {
		t.Fatalf("create runtime dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(runtimeDir) })

	cfgVal := config.Default()
	cfgVal.Paths.RuntimeDir = runtimeDir
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Hotplug.Enabled = false
	cfgVal.PipeWire.LinkAttempts = 1
	cfgVal.PipeWire.LinkRetryDelayMS = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDefaultInput sets the input device linked at startup.
func WithDefaultInput(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.DefaultInputName = name
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, every external binary the
// daemon uses is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"pw-dump", "pw-cli", "wpctl", "ffmpeg", "ffprobe"}
		}
		for _, name := range names {
			b.writeStub(name, "exit 0\n")
		}
	}
}

// WithStubScript writes one stub whose body runs under /bin/sh.
func WithStubScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		b.writeStub(name, body)
	}
}

func (b *configBuilder) writeStub(name, body string) {
	b.t.Helper()
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	prependPath(b.t, binDir)
}

// prependPath puts dir at the front of PATH once per test.
func prependPath(t testing.TB, dir string) {
	oldPath := os.Getenv("PATH")
	if filepath.SplitList(oldPath)[0] == dir {
		return
	}
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
