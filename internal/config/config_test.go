package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"soundboard/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	runtime := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtime)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, ".local", "share", "soundboard", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, want)
	}
	if want := filepath.Join(runtime, "soundboard"); cfg.Paths.RuntimeDir != want {
		t.Fatalf("unexpected runtime dir: got %q want %q", cfg.Paths.RuntimeDir, want)
	}
	if cfg.SocketPath() != filepath.Join(runtime, "soundboard", "daemon.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.SocketPath())
	}
	if cfg.LockPath() != filepath.Join(runtime, "soundboard", "daemon.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.Audio.DefaultVolume != 1 || cfg.Audio.DefaultGain != 1 || cfg.Audio.DefaultMicGain != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.PipeWire.LinkAttempts != 5 {
		t.Fatalf("expected 5 link attempts, got %d", cfg.PipeWire.LinkAttempts)
	}
	if cfg.LinkRetryDelay().Milliseconds() != 100 {
		t.Fatalf("unexpected retry delay: %v", cfg.LinkRetryDelay())
	}
	if cfg.EnumerateQuietPeriod().Milliseconds() != 100 {
		t.Fatalf("unexpected quiet period: %v", cfg.EnumerateQuietPeriod())
	}
	if cfg.Binaries.PWCli != "pw-cli" || cfg.Binaries.FFmpeg != "ffmpeg" {
		t.Fatalf("unexpected binaries: %+v", cfg.Binaries)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"runtime_dir": "~/run",
		},
		"audio": map[string]any{
			"default_input_name": "  alsa_input.usb-mic  ",
			"default_volume":     0.5,
			"default_gain":       2.5,
			"default_mic_gain":   1.5,
		},
		"pipewire": map[string]any{
			"virtual_mic_name": "custom-mic",
			"link_attempts":    3,
		},
		"binaries": map[string]any{
			"pw_cli": "/opt/pipewire/bin/pw-cli",
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config to be found at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.RuntimeDir != filepath.Join(tempHome, "run") {
		t.Fatalf("unexpected runtime dir: %q", cfg.Paths.RuntimeDir)
	}
	if cfg.Audio.DefaultInputName != "alsa_input.usb-mic" {
		t.Fatalf("expected trimmed input name, got %q", cfg.Audio.DefaultInputName)
	}
	if cfg.Audio.DefaultVolume != 0.5 || cfg.Audio.DefaultGain != 2.5 || cfg.Audio.DefaultMicGain != 1.5 {
		t.Fatalf("unexpected audio values: %+v", cfg.Audio)
	}
	if cfg.PipeWire.VirtualMicName != "custom-mic" || cfg.PipeWire.LinkAttempts != 3 {
		t.Fatalf("unexpected pipewire values: %+v", cfg.PipeWire)
	}
	if cfg.PipeWire.VirtualMicDescription == "" {
		t.Fatal("expected virtual mic description default to survive")
	}
	if cfg.Binaries.PWCli != "/opt/pipewire/bin/pw-cli" || cfg.Binaries.PWDump != "pw-dump" {
		t.Fatalf("unexpected binaries: %+v", cfg.Binaries)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative volume", func(c *config.Config) { c.Audio.DefaultVolume = -1 }, "default_volume"},
		{"gain too high", func(c *config.Config) { c.Audio.DefaultGain = 5.5 }, "default_gain"},
		{"mic gain too low", func(c *config.Config) { c.Audio.DefaultMicGain = 0.1 }, "default_mic_gain"},
		{"zero attempts", func(c *config.Config) { c.PipeWire.LinkAttempts = 0 }, "link_attempts"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureRuntimeDirTightensPermissions(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.RuntimeDir = filepath.Join(t.TempDir(), "rt")
	if err := os.MkdirAll(cfg.Paths.RuntimeDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := cfg.EnsureRuntimeDir(); err != nil {
		t.Fatalf("EnsureRuntimeDir: %v", err)
	}
	info, err := os.Stat(cfg.Paths.RuntimeDir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Fatalf("expected 0700, got %o", perm)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample config to load, exists=%v err=%v", exists, err)
	}
}
