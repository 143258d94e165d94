package store

import (
	"context"

	"stocksim/internal/market"
)

// Store is the durable record of instrument state. Mutation granularity is
// deliberately coarse: every write replaces the full record set, and each
// write becomes visible atomically — a concurrent reader sees the state from
// either before or after a SaveAll, never a partial one.
type Store interface {
	// LoadAll returns all instrument records in their stored order.
	LoadAll(ctx context.Context) ([]market.Instrument, error)
	// SaveAll atomically replaces the full record set.
	SaveAll(ctx context.Context, instruments []market.Instrument) error
	// Exists reports whether any durable state is present. Presence alone
	// decides whether bootstrap is skipped; content is not re-validated.
	Exists(ctx context.Context) (bool, error)
	Close() error
}
