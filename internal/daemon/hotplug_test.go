package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"soundboard/internal/config"
	"soundboard/internal/engine"
)

func TestNewHotplugMonitor(t *testing.T) {
	e, _ := newTestEngine(t)
	shared := engine.NewShared(e)

	t.Run("nil config returns nil", func(t *testing.T) {
		if m := NewHotplugMonitor(nil, shared, nil); m != nil {
			t.Error("expected nil monitor for nil config")
		}
	})

	t.Run("disabled returns nil", func(t *testing.T) {
		cfg := config.Default()
		cfg.Hotplug.Enabled = false
		if m := NewHotplugMonitor(&cfg, shared, nil); m != nil {
			t.Error("expected nil monitor when hotplug is disabled")
		}
	})

	t.Run("enabled creates monitor", func(t *testing.T) {
		cfg := config.Default()
		cfg.Hotplug.Enabled = true
		cfg.Hotplug.DebounceMS = 250
		m := NewHotplugMonitor(&cfg, shared, nil)
		if m == nil {
			t.Fatal("expected non-nil monitor")
		}
		if m.debounce != 250*time.Millisecond {
			t.Errorf("debounce = %v, want 250ms", m.debounce)
		}
	})
}

func TestHotplugMonitorNilSafety(t *testing.T) {
	var m *HotplugMonitor
	if m.Running() {
		t.Error("expected Running() to return false for nil monitor")
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start on nil monitor should return nil, got: %v", err)
	}
	m.Stop()
}

func TestHotplugMonitorStopIdempotent(t *testing.T) {
	m := newHotplugMonitor(time.Millisecond, nil, nil)
	m.Stop()
	m.Stop()
	if m.Running() {
		t.Error("expected Running() to return false after Stop")
	}
}

func TestBuildSoundMatcher(t *testing.T) {
	matcher := buildSoundMatcher()

	cases := []struct {
		name  string
		event netlink.UEvent
		want  bool
	}{
		{"add", netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "sound"}}, true},
		{"remove", netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "sound"}}, true},
		{"change", netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "sound"}}, false},
		{"other subsystem", netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "block"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matcher.Evaluate(tc.event); got != tc.want {
				t.Errorf("Evaluate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHotplugDebounceCoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	fired := make(chan struct{}, 4)
	m := newHotplugMonitor(30*time.Millisecond, nil, func(context.Context) error {
		calls.Add(1)
		fired <- struct{}{}
		return nil
	})
	t.Cleanup(m.Stop)

	ctx := context.Background()
	event := netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "sound"}}
	for range 5 {
		m.handleEvent(ctx, event)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("relink was not triggered")
	}
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("relink calls = %d, want 1", got)
	}
}

func TestHotplugSkipsCancelledContext(t *testing.T) {
	var calls atomic.Int32
	m := newHotplugMonitor(time.Millisecond, nil, func(context.Context) error {
		calls.Add(1)
		return errors.New("unexpected")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.fire(ctx)
	if calls.Load() != 0 {
		t.Fatal("relink ran after cancellation")
	}
}

func TestHotplugRelinkSkipsWithoutInput(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := config.Default()
	cfg.Hotplug.Enabled = true
	m := NewHotplugMonitor(&cfg, engine.NewShared(e), nil)

	if err := m.relink(context.Background()); err != nil {
		t.Fatalf("relink: %v", err)
	}
	if e.Linked() {
		t.Fatal("expected no link without a selected input")
	}
}
