package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"

	"soundboard/internal/config"
	"soundboard/internal/logging"
)

var (
	// ErrDeviceNotFound is returned when no enumerated device has the requested name.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrNotInputDevice is returned when a capture device was required.
	ErrNotInputDevice = errors.New("selected device is not an input device")
)

// Options configures a Manager.
type Options struct {
	Source         ObjectSource
	Sessions       SessionStarter
	VirtualMicName string
	Attempts       int
	RetryDelay     time.Duration
	QuietPeriod    time.Duration
	Logger         *slog.Logger
}

// Manager enumerates the audio graph and links devices to the virtual mic.
type Manager struct {
	source         ObjectSource
	sessions       SessionStarter
	virtualMicName string
	attempts       int
	retryDelay     time.Duration
	quietPeriod    time.Duration
	logger         *slog.Logger
}

// NewManager builds a Manager, filling unset timings with defaults.
func NewManager(opts Options) *Manager {
	m := &Manager{
		source:         opts.Source,
		sessions:       opts.Sessions,
		virtualMicName: opts.VirtualMicName,
		attempts:       opts.Attempts,
		retryDelay:     opts.RetryDelay,
		quietPeriod:    opts.QuietPeriod,
		logger:         logging.NewComponentLogger(opts.Logger, "graph"),
	}
	if m.attempts < 1 {
		m.attempts = 5
	}
	if m.quietPeriod <= 0 {
		m.quietPeriod = 100 * time.Millisecond
	}
	return m
}

// NewFromConfig builds a Manager backed by pw-dump and pw-cli.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Manager {
	return NewManager(Options{
		Source:         PWDump{Binary: cfg.Binaries.PWDump},
		Sessions:       PWCli{Binary: cfg.Binaries.PWCli, Logger: logger},
		VirtualMicName: cfg.PipeWire.VirtualMicName,
		Attempts:       cfg.PipeWire.LinkAttempts,
		RetryDelay:     cfg.LinkRetryDelay(),
		QuietPeriod:    cfg.EnumerateQuietPeriod(),
		Logger:         logger,
	})
}

// VirtualMicName returns the node name of the daemon's virtual microphone.
func (m *Manager) VirtualMicName() string {
	return m.virtualMicName
}

// FindDevice returns the first input or output device named name.
func (m *Manager) FindDevice(ctx context.Context, name string) (AudioDevice, error) {
	inputs, outputs, err := m.Enumerate(ctx)
	if err != nil {
		return AudioDevice{}, err
	}
	if dev, ok := findByName(append(inputs, outputs...), name); ok {
		return dev, nil
	}
	return AudioDevice{}, ErrDeviceNotFound
}

// LinkDevices routes the named capture device into the virtual mic. Any link
// held by slot is cancelled first. Resolution is retried because devices and
// their ports appear asynchronously; when every attempt fails the slot is left
// empty and nil is returned, since missing mic routing must not block playback.
// The retry loop always runs to completion, regardless of ctx.
func (m *Manager) LinkDevices(ctx context.Context, slot *LinkSlot, targetInputName string) error {
	slot.Cancel()
	if targetInputName == "" {
		m.logger.Info("no input device selected, skipping mic link")
		return nil
	}
	return m.linkWithRetry(ctx, slot, targetInputName, func(inputs, _ []AudioDevice) (*AudioDevice, string) {
		target, ok := findByName(inputs, targetInputName)
		if !ok {
			return nil, "input device not found"
		}
		return &target, ""
	})
}

// LinkPlayerToVirtualMic routes the daemon's own playback stream into the
// virtual mic so engine output reaches applications using it.
func (m *Manager) LinkPlayerToVirtualMic(ctx context.Context, slot *LinkSlot, playerNodeName string) error {
	slot.Cancel()
	return m.linkWithRetry(ctx, slot, playerNodeName, func(_, outputs []AudioDevice) (*AudioDevice, string) {
		player, ok := findByName(outputs, playerNodeName)
		if !ok {
			return nil, "player stream not found"
		}
		return &player, ""
	})
}

type sourcePicker func(inputs, outputs []AudioDevice) (*AudioDevice, string)

func (m *Manager) linkWithRetry(ctx context.Context, slot *LinkSlot, sourceName string, pick sourcePicker) error {
	ctx = context.WithoutCancel(ctx)
	logger := m.logger.With(logging.String(logging.FieldDevice, sourceName))

	var reason string
	for attempt := 1; attempt <= m.attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(m.retryDelay)
		}

		handle, why, err := m.tryLink(ctx, pick)
		if err != nil {
			reason = err.Error()
		} else if handle != nil {
			slot.Replace(handle)
			logger.Info("device linked to virtual mic", logging.Int("attempt", attempt))
			return nil
		} else {
			reason = why
		}
		logger.Debug("link attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", m.attempts),
			logging.String("reason", reason),
		)
	}

	logging.WarnWithContext(logger, "could not link device to virtual mic", "link_failed",
		logging.Int("attempts", m.attempts),
		logging.String("reason", reason),
		logging.String(logging.FieldImpact, "playback continues without microphone routing"),
		logging.String(logging.FieldErrorHint, "check the device name with `soundboard get inputs`"),
	)
	return nil
}

func (m *Manager) tryLink(ctx context.Context, pick sourcePicker) (*LinkHandle, string, error) {
	inputs, outputs, err := m.Enumerate(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("enumerate graph: %w", err)
	}
	mic, ok := findByName(inputs, m.virtualMicName)
	if !ok {
		return nil, "virtual mic not found", nil
	}
	source, why := pick(inputs, outputs)
	if source == nil {
		return nil, why, nil
	}
	if !source.CanFeed() || !mic.CanReceive() {
		return nil, "required ports missing", nil
	}
	handle, err := m.CreateLink(ctx, *source.OutputFL, *source.OutputFR, *mic.InputFL, *mic.InputFR)
	if err != nil {
		return nil, "", err
	}
	return handle, "", nil
}

func findByName(devices []AudioDevice, name string) (AudioDevice, bool) {
	want := norm.NFC.String(name)
	for _, dev := range devices {
		if norm.NFC.String(dev.Name) == want {
			return dev, true
		}
	}
	return AudioDevice{}, false
}
