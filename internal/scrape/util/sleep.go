package util

import (
	"context"
	"math/rand"
	"time"
)

// DelayRange is a randomized pause window. Zero ranges sleep not at all,
// which is what tests want.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

func (r DelayRange) pick() time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int63n(int64(r.Max-r.Min)))
}

// Sleep pauses for a random duration inside the range, returning early with
// false when the context is canceled.
func (r DelayRange) Sleep(ctx context.Context) bool {
	return Sleep(ctx, r.pick())
}

// Sleep is a context-aware time.Sleep. Returns false if ctx fired first.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
