package usecase

import (
	"context"
	"sync"
	"time"
)

// ExtractionTrigger fires the extract-and-submit callback at most once per
// page view. Two paths race to trigger it: a page-readiness signal and a
// fixed-delay fallback timer; whichever arrives first wins and the loser is
// a no-op.
type ExtractionTrigger struct {
	delay time.Duration
	run   func(ctx context.Context)

	mu    sync.Mutex
	fired bool
}

// NewExtractionTrigger creates a trigger with the given fallback delay.
func NewExtractionTrigger(delay time.Duration, run func(ctx context.Context)) *ExtractionTrigger {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &ExtractionTrigger{delay: delay, run: run}
}

// Start watches the readiness signal and arms the fallback timer. Returns
// immediately; the callback runs on a separate goroutine. Cancelling the
// context stops both paths.
func (t *ExtractionTrigger) Start(ctx context.Context, ready <-chan struct{}) {
	timer := time.NewTimer(t.delay)
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-ready:
			t.TryFire(ctx)
		case <-timer.C:
			t.TryFire(ctx)
		}
	}()
}

// TryFire runs the callback unless it already ran for this page view.
// Reports whether this call was the one that fired.
func (t *ExtractionTrigger) TryFire(ctx context.Context) bool {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	t.mu.Unlock()

	t.run(ctx)
	return true
}

// Fired reports whether the callback has run.
func (t *ExtractionTrigger) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
