package engine

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/btree"

	"stocksim/internal/market"
	"stocksim/internal/store"
)

// dueEntry indexes one instrument by the instant (milliseconds since epoch)
// at which its refresh cadence next elapses.
type dueEntry struct {
	at     int64
	symbol string
}

// dueLess orders entries by due time ascending, then symbol for a stable
// total order. Min() is the next instrument to become due.
func dueLess(a, b dueEntry) bool {
	if a.at != b.at {
		return a.at < b.at
	}
	return a.symbol < b.symbol
}

// Engine holds the live instrument table and drives the refresh cycle. All
// reads and writes of the table happen under one RWMutex, so queries never
// observe a record between its price change and its lastUpdate change. The
// durable store is a flush target only; nothing reads it after seeding.
//
// Instruments are indexed in a B-tree keyed by next-due time, so a tick
// touches only the instruments whose cadence has elapsed rather than
// scanning the whole universe.
type Engine struct {
	store store.Store

	mu          sync.RWMutex
	instruments map[string]*market.Instrument
	order       []string // universe order, fixed at seed time
	due         *btree.BTreeG[dueEntry]
	rng         *rand.Rand
	seeded      bool
}

func New(st store.Store) *Engine {
	const degree = 32
	return &Engine{
		store:       st,
		instruments: make(map[string]*market.Instrument),
		due:         btree.NewG[dueEntry](degree, dueLess),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed installs the bootstrapped (or reloaded) instrument set. The universe
// is fixed from this point on: instruments are never added or removed at
// runtime.
func (e *Engine) Seed(instruments []market.Instrument) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range instruments {
		in := instruments[i]
		if _, ok := e.instruments[in.Symbol]; ok {
			continue
		}
		e.instruments[in.Symbol] = &in
		e.order = append(e.order, in.Symbol)
		e.due.ReplaceOrInsert(dueEntry{at: in.NextDue(), symbol: in.Symbol})
	}
	e.seeded = true
}

// Start launches a background goroutine that ticks at the given interval
// and refreshes due instruments. It stops when ctx is cancelled.
func (e *Engine) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				e.tick(ctx, t)
			}
		}
	}()
}

// tick resamples every instrument whose cadence has elapsed at now, then
// flushes the full table to the durable store. A flush failure is logged and
// abandoned; the next tick proceeds independently, there is no catch-up.
func (e *Engine) tick(ctx context.Context, now time.Time) {
	nowMillis := now.UnixMilli()

	e.mu.Lock()
	if !e.seeded {
		e.mu.Unlock()
		return
	}
	var dueNow []dueEntry
	e.due.AscendLessThan(dueEntry{at: nowMillis + 1}, func(d dueEntry) bool {
		dueNow = append(dueNow, d)
		return true
	})
	for _, d := range dueNow {
		e.due.Delete(d)
		in := e.instruments[d.symbol]
		in.CurrentPrice = market.SimulatePrice(in.OpenPrice, e.rng)
		in.LastUpdate = nowMillis
		e.due.ReplaceOrInsert(dueEntry{at: in.NextDue(), symbol: d.symbol})
	}
	snapshot := e.listLocked()
	e.mu.Unlock()

	if err := e.store.SaveAll(ctx, snapshot); err != nil {
		log.Printf("tick: save state: %v", err)
	}
}

// ListAll returns a copy of the full instrument set in universe order, or
// market.ErrNotReady before bootstrap has seeded the table.
func (e *Engine) ListAll() ([]market.Instrument, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.seeded {
		return nil, market.ErrNotReady
	}
	return e.listLocked(), nil
}

// Get returns one instrument by symbol. Unknown symbols yield
// market.ErrNotFound, distinct from every other failure.
func (e *Engine) Get(symbol string) (market.Instrument, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.seeded {
		return market.Instrument{}, market.ErrNotReady
	}
	in, ok := e.instruments[symbol]
	if !ok {
		return market.Instrument{}, market.ErrNotFound
	}
	return *in, nil
}

// listLocked snapshots the table in universe order. Callers hold e.mu.
func (e *Engine) listLocked() []market.Instrument {
	out := make([]market.Instrument, 0, len(e.order))
	for _, symbol := range e.order {
		out = append(out, *e.instruments[symbol])
	}
	return out
}
