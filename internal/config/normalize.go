package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizePipeWire()
	c.normalizeBinaries()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.RuntimeDir) == "" {
		c.Paths.RuntimeDir = defaultRuntimeDir()
	}
	var err error
	if c.Paths.RuntimeDir, err = expandPath(c.Paths.RuntimeDir); err != nil {
		return fmt.Errorf("paths.runtime_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.DefaultInputName = strings.TrimSpace(c.Audio.DefaultInputName)
	c.Audio.DefaultOutputName = strings.TrimSpace(c.Audio.DefaultOutputName)
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.LatencyMS <= 0 {
		c.Audio.LatencyMS = defaultLatencyMS
	}
}

func (c *Config) normalizePipeWire() {
	p := &c.PipeWire
	p.VirtualMicName = strings.TrimSpace(p.VirtualMicName)
	if p.VirtualMicName == "" {
		p.VirtualMicName = defaultVirtualMicName
	}
	p.VirtualMicDescription = strings.TrimSpace(p.VirtualMicDescription)
	if p.VirtualMicDescription == "" {
		p.VirtualMicDescription = defaultVirtualMicDescription
	}
	p.PlayerNodeName = strings.TrimSpace(p.PlayerNodeName)
	if p.PlayerNodeName == "" {
		p.PlayerNodeName = defaultPlayerNodeName
	}
	if p.LinkRetryDelayMS < 0 {
		p.LinkRetryDelayMS = 0
	}
	if p.EnumerateQuietMS <= 0 {
		p.EnumerateQuietMS = defaultEnumerateQuietMS
	}
	if c.Hotplug.DebounceMS <= 0 {
		c.Hotplug.DebounceMS = defaultHotplugDebounceMS
	}
}

func (c *Config) normalizeBinaries() {
	defaults := Default().Binaries
	b := &c.Binaries
	b.PWDump = fallback(b.PWDump, defaults.PWDump)
	b.PWCli = fallback(b.PWCli, defaults.PWCli)
	b.Wpctl = fallback(b.Wpctl, defaults.Wpctl)
	b.FFmpeg = fallback(b.FFmpeg, defaults.FFmpeg)
	b.FFprobe = fallback(b.FFprobe, defaults.FFprobe)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func fallback(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}
