package engine

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Shared serializes access to one Engine. Waiters are served in arrival
// order and give up when their context ends.
type Shared struct {
	sem    *semaphore.Weighted
	engine *Engine
}

// NewShared wraps e.
func NewShared(e *Engine) *Shared {
	return &Shared{sem: semaphore.NewWeighted(1), engine: e}
}

// With runs fn with exclusive access to the engine.
func (s *Shared) With(ctx context.Context, fn func(*Engine) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	return fn(s.engine)
}
