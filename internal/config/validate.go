package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validatePipeWire(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if !finite(a.DefaultVolume) || a.DefaultVolume < 0 {
		return errors.New("audio.default_volume must be a non-negative number")
	}
	if !finite(a.DefaultGain) || a.DefaultGain < 0 || a.DefaultGain > 5 {
		return errors.New("audio.default_gain must be between 0 and 5")
	}
	if !finite(a.DefaultMicGain) || a.DefaultMicGain < 0.5 || a.DefaultMicGain > 3 {
		return errors.New("audio.default_mic_gain must be between 0.5 and 3")
	}
	if a.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	return nil
}

func (c *Config) validatePipeWire() error {
	if c.PipeWire.LinkAttempts < 1 {
		return errors.New("pipewire.link_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
