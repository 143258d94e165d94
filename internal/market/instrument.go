package market

import (
	"errors"
	"math/rand"
)

// Band and cadence constants for the simulation. CurrentPrice is always
// resampled uniformly within OpenPrice ± PriceBand, with no memory of the
// previous sample.
const (
	PriceBand             = 5.0
	MinRefreshIntervalSec = 1
	MaxRefreshIntervalSec = 5
)

var (
	// ErrNotFound is returned for symbols outside the bootstrapped universe.
	ErrNotFound = errors.New("stock not found")
	// ErrNotReady is returned while bootstrap has not yet populated any state.
	ErrNotReady = errors.New("price data not initialized yet")
)

// Instrument is one simulated tradable entity. Field names in JSON match the
// durable state layout: a flat record set keyed by symbol.
type Instrument struct {
	Symbol          string  `json:"symbol"`
	OpenPrice       float64 `json:"openPrice"`
	RefreshInterval int     `json:"refreshInterval"` // seconds, fixed at creation
	LastUpdate      int64   `json:"lastUpdate"`      // milliseconds since epoch
	CurrentPrice    float64 `json:"currentPrice"`
}

// Due reports whether the instrument's refresh cadence has elapsed at the
// given wall clock (milliseconds since epoch).
func (i Instrument) Due(nowMillis int64) bool {
	return nowMillis-i.LastUpdate >= int64(i.RefreshInterval)*1000
}

// NextDue returns the earliest instant (milliseconds since epoch) at which
// the instrument becomes eligible for its next update.
func (i Instrument) NextDue() int64 {
	return i.LastUpdate + int64(i.RefreshInterval)*1000
}

// SimulatePrice samples a new price uniformly within open ± PriceBand.
func SimulatePrice(open float64, rng *rand.Rand) float64 {
	return open + (rng.Float64()*2*PriceBand - PriceBand)
}

// RandomRefreshInterval draws a cadence uniformly from
// {MinRefreshIntervalSec .. MaxRefreshIntervalSec}.
func RandomRefreshInterval(rng *rand.Rand) int {
	return MinRefreshIntervalSec + rng.Intn(MaxRefreshIntervalSec-MinRefreshIntervalSec+1)
}
