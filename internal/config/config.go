package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	RuntimeDir string `toml:"runtime_dir"`
	LogDir     string `toml:"log_dir"`
}

// Audio contains the engine defaults applied at daemon startup.
type Audio struct {
	DefaultInputName  string  `toml:"default_input_name"`
	DefaultOutputName string  `toml:"default_output_name"`
	DefaultVolume     float64 `toml:"default_volume"`
	DefaultGain       float64 `toml:"default_gain"`
	DefaultMicGain    float64 `toml:"default_mic_gain"`
	SampleRate        int     `toml:"sample_rate"`
	LatencyMS         int     `toml:"latency_ms"`
}

// PipeWire contains audio graph naming and linking behaviour.
type PipeWire struct {
	VirtualMicName        string `toml:"virtual_mic_name"`
	VirtualMicDescription string `toml:"virtual_mic_description"`
	PlayerNodeName        string `toml:"player_node_name"`
	LinkAttempts          int    `toml:"link_attempts"`
	LinkRetryDelayMS      int    `toml:"link_retry_delay_ms"`
	EnumerateQuietMS      int    `toml:"enumerate_quiet_ms"`
}

// Binaries names the external executables the daemon invokes.
type Binaries struct {
	PWDump  string `toml:"pw_dump"`
	PWCli   string `toml:"pw_cli"`
	Wpctl   string `toml:"wpctl"`
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Hotplug controls relinking when sound hardware appears or disappears.
type Hotplug struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for soundboard.
//
// Configuration sections by subsystem:
//   - Paths: runtime directory (socket, lock) and log directory
//   - Audio: engine defaults and output stream parameters
//   - PipeWire: virtual mic naming and link retry timings
//   - Binaries: external tools used for graph access and decoding
//   - Hotplug: udev-driven relinking
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Audio    Audio    `toml:"audio"`
	PipeWire PipeWire `toml:"pipewire"`
	Binaries Binaries `toml:"binaries"`
	Hotplug  Hotplug  `toml:"hotplug"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/soundboard/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("soundboard.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// SocketPath returns the IPC socket location inside the runtime directory.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.RuntimeDir, "daemon.sock")
}

// LockPath returns the single-instance lock file inside the runtime directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.RuntimeDir, "daemon.lock")
}

// DaemonLogPath returns the daemon's log file, or "" when logging to a
// file is disabled.
func (c *Config) DaemonLogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "soundboardd.log")
}

// LinkRetryDelay returns the pause between link attempts.
func (c *Config) LinkRetryDelay() time.Duration {
	return time.Duration(c.PipeWire.LinkRetryDelayMS) * time.Millisecond
}

// EnumerateQuietPeriod returns how long enumeration waits for new graph objects
// before it considers the snapshot complete.
func (c *Config) EnumerateQuietPeriod() time.Duration {
	return time.Duration(c.PipeWire.EnumerateQuietMS) * time.Millisecond
}

// OutputLatency returns the requested playback buffer latency.
func (c *Config) OutputLatency() time.Duration {
	return time.Duration(c.Audio.LatencyMS) * time.Millisecond
}

// HotplugDebounce returns the quiet period applied to udev bursts.
func (c *Config) HotplugDebounce() time.Duration {
	return time.Duration(c.Hotplug.DebounceMS) * time.Millisecond
}

// EnsureRuntimeDir creates the runtime directory with owner-only permissions.
// An existing directory is tightened to 0700.
func (c *Config) EnsureRuntimeDir() error {
	dir := c.Paths.RuntimeDir
	if strings.TrimSpace(dir) == "" {
		return errors.New("paths.runtime_dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create runtime directory %q: %w", dir, err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return fmt.Errorf("restrict runtime directory %q: %w", dir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// defaultRuntimeDir mirrors the XDG runtime convention: $XDG_RUNTIME_DIR when
// set, otherwise the systemd per-user location.
func defaultRuntimeDir() string {
	if base, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "soundboard")
	}
	return filepath.Join("/run/user", strconv.Itoa(os.Getuid()), "soundboard")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
