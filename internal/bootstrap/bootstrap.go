package bootstrap

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"stocksim/internal/market"
	"stocksim/internal/quote"
	"stocksim/internal/store"
)

// Loader acquires opening prices for a fixed universe of symbols and seeds
// the durable store. It runs once at process start and is idempotent: if the
// store already holds state, that state is reused as-is.
//
// The universe is walked strictly sequentially. Pacing against the upstream
// rate ceiling belongs to the ratelimit decorator wrapped around the source,
// not to the loader; fetching concurrently here would defeat it.
type Loader struct {
	source quote.Source
	store  store.Store
	rng    *rand.Rand
}

func NewLoader(src quote.Source, st store.Store) *Loader {
	return &Loader{
		source: src,
		store:  st,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run returns the instrument set the process should serve: the existing
// durable state when present, otherwise a freshly bootstrapped one. Symbols
// whose opening price is unavailable are dropped from the universe entirely —
// no record, no retry. Only context cancellation aborts the run.
func (l *Loader) Run(ctx context.Context, date string, universe []string) ([]market.Instrument, error) {
	exists, err := l.store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing state: %w", err)
	}
	if exists {
		instruments, err := l.store.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load existing state: %w", err)
		}
		log.Printf("bootstrap: durable state present (%d instruments), skipping", len(instruments))
		return instruments, nil
	}

	log.Printf("bootstrap: fetching opening prices for %d symbols on %s", len(universe), date)
	instruments := make([]market.Instrument, 0, len(universe))
	for _, symbol := range universe {
		open, err := l.source.OpeningPrice(ctx, symbol, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Adapter already logged the raw cause; the symbol is simply
			// excluded from the universe.
			log.Printf("bootstrap: dropping %s: %v", symbol, err)
			continue
		}
		instruments = append(instruments, l.synthesize(symbol, open))
	}

	if err := l.store.SaveAll(ctx, instruments); err != nil {
		return nil, fmt.Errorf("save bootstrapped state: %w", err)
	}
	log.Printf("bootstrap: seeded %d of %d symbols", len(instruments), len(universe))
	return instruments, nil
}

// synthesize builds the initial record for a symbol. lastUpdate is backdated
// by a uniform offset within [0, refreshInterval) seconds so instruments do
// not all become due in lockstep on the first ticks.
func (l *Loader) synthesize(symbol string, open float64) market.Instrument {
	interval := market.RandomRefreshInterval(l.rng)
	now := time.Now().UnixMilli()
	return market.Instrument{
		Symbol:          symbol,
		OpenPrice:       open,
		RefreshInterval: interval,
		LastUpdate:      now - l.rng.Int63n(int64(interval)*1000),
		CurrentPrice:    market.SimulatePrice(open, l.rng),
	}
}
