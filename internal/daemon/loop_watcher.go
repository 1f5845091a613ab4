package daemon

import (
	"context"
	"log/slog"
	"time"

	"soundboard/internal/engine"
	"soundboard/internal/logging"
)

// DefaultLoopInterval is how often the loop poller checks the main sink.
const DefaultLoopInterval = 100 * time.Millisecond

// LoopWatcher restarts the remembered file when looping is on and the main
// sink has finished.
type LoopWatcher struct {
	shared   *engine.Shared
	interval time.Duration
	logger   *slog.Logger

	// failing suppresses repeated warnings until a replay succeeds.
	failing bool
}

// NewLoopWatcher builds a watcher polling every interval. A non-positive
// interval selects DefaultLoopInterval.
func NewLoopWatcher(shared *engine.Shared, interval time.Duration, logger *slog.Logger) *LoopWatcher {
	if interval <= 0 {
		interval = DefaultLoopInterval
	}
	return &LoopWatcher{
		shared:   shared,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "loop-watcher"),
	}
}

// Run polls until ctx ends.
func (w *LoopWatcher) Run(ctx context.Context) {
	if w == nil || w.shared == nil {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *LoopWatcher) tick(ctx context.Context) bool {
	var replayed bool
	err := w.shared.With(ctx, func(e *engine.Engine) error {
		var err error
		replayed, err = e.ReplayIfLooped(ctx)
		return err
	})
	switch {
	case err != nil && ctx.Err() == nil:
		if w.failing {
			return false
		}
		w.failing = true
		logging.WarnWithContext(w.logger, "failed to replay looped file", "loop_replay_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the file still exists and decodes"),
			logging.String(logging.FieldImpact, "looped playback stopped"),
		)
	case replayed:
		w.failing = false
		w.logger.Debug("looped file restarted")
	}
	return replayed
}
