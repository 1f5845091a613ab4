package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"soundboard/internal/config"
	"soundboard/internal/engine"
	"soundboard/internal/logging"
)

// HotplugMonitor listens for sound-card uevents and relinks the selected
// input once a burst of events settles. Device nodes are recreated when a
// USB microphone is replugged, which leaves the old link dangling.
type HotplugMonitor struct {
	logger   *slog.Logger
	debounce time.Duration
	relink   func(ctx context.Context) error

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	timer   *time.Timer
	running bool
}

// NewHotplugMonitor returns nil when hotplug handling is disabled.
func NewHotplugMonitor(cfg *config.Config, shared *engine.Shared, logger *slog.Logger) *HotplugMonitor {
	if cfg == nil || shared == nil || !cfg.Hotplug.Enabled {
		return nil
	}
	return newHotplugMonitor(cfg.HotplugDebounce(), logger, func(ctx context.Context) error {
		return shared.With(ctx, func(e *engine.Engine) error {
			if _, ok := e.CurrentInput(); !ok {
				return nil
			}
			return e.Relink(ctx)
		})
	})
}

func newHotplugMonitor(debounce time.Duration, logger *slog.Logger, relink func(context.Context) error) *HotplugMonitor {
	return &HotplugMonitor{
		logger:   logging.NewComponentLogger(logger, "hotplug"),
		debounce: debounce,
		relink:   relink,
	}
}

// Start connects to the kernel uevent socket. A connection failure is logged
// and leaves the monitor stopped; the daemon keeps working without it.
func (m *HotplugMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "failed to connect to netlink socket; hotplug relinking disabled", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "replugged input devices must be reselected manually"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, conn, quit)

	m.logger.Info("hotplug monitor started",
		logging.String(logging.FieldEventType, "hotplug_monitor_started"),
		logging.Duration("debounce", m.debounce),
	)
	return nil
}

// Stop shuts down the monitor and drops any pending relink.
func (m *HotplugMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if !m.running {
		return
	}
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("hotplug monitor stopped",
		logging.String(logging.FieldEventType, "hotplug_monitor_stopped"),
	)
}

// Running reports whether the monitor is connected.
func (m *HotplugMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *HotplugMonitor) monitorLoop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, buildSoundMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			logging.WarnWithContext(m.logger, "netlink monitor error", "netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "hotplug relinking may be delayed"),
			)
		}
	}
}

// buildSoundMatcher matches SUBSYSTEM=sound with ACTION=add|remove.
func buildSoundMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
		},
	})
	return rules
}

func (m *HotplugMonitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	m.logger.Debug("sound device event",
		logging.String("action", string(uevent.Action)),
		logging.String("kobj", uevent.KObj),
	)
	m.schedule(ctx)
}

// schedule (re)arms the debounce timer.
func (m *HotplugMonitor) schedule(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() { m.fire(ctx) })
}

func (m *HotplugMonitor) fire(ctx context.Context) {
	if ctx.Err() != nil || m.relink == nil {
		return
	}
	m.logger.Info("relinking input after device change",
		logging.String(logging.FieldEventType, "hotplug_relink"),
	)
	if err := m.relink(ctx); err != nil && ctx.Err() == nil {
		logging.WarnWithContext(m.logger, "hotplug relink failed", "hotplug_relink_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "virtual mic may be missing its input"),
		)
	}
}
