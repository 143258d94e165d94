package ratelimit

import (
	"context"
	"sync"
	"time"

	"stocksim/internal/quote"
)

// MinInterval wraps a source and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last
// call, or return early if the context is canceled.
type MinInterval struct {
	S        quote.Source
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.S.Name() }

func (m *MinInterval) OpeningPrice(ctx context.Context, symbol, date string) (float64, error) {
	if m.Interval > 0 {
		// simple gate: ensure at least Interval since last
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-t.C:
			}
		}
	}
	price, err := m.S.OpeningPrice(ctx, symbol, date)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return price, err
}
