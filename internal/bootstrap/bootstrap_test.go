package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stocksim/internal/bootstrap"
	"stocksim/internal/market"
	"stocksim/internal/quote"
	"stocksim/internal/store"
)

// fakeSource serves opening prices from a fixed table and records call order.
type fakeSource struct {
	prices map[string]float64
	calls  []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) OpeningPrice(_ context.Context, symbol, _ string) (float64, error) {
	f.calls = append(f.calls, symbol)
	open, ok := f.prices[symbol]
	if !ok {
		return 0, quote.ErrUnavailable
	}
	return open, nil
}

var _ quote.Source = (*fakeSource)(nil)

// memStore is an in-memory store.Store for loader tests.
type memStore struct {
	instruments []market.Instrument
	seeded      bool
	saves       int
}

func (m *memStore) LoadAll(context.Context) ([]market.Instrument, error) {
	out := make([]market.Instrument, len(m.instruments))
	copy(out, m.instruments)
	return out, nil
}

func (m *memStore) SaveAll(_ context.Context, instruments []market.Instrument) error {
	m.instruments = make([]market.Instrument, len(instruments))
	copy(m.instruments, instruments)
	m.seeded = true
	m.saves++
	return nil
}

func (m *memStore) Exists(context.Context) (bool, error) { return m.seeded, nil }
func (m *memStore) Close() error                         { return nil }

var _ store.Store = (*memStore)(nil)

func TestRun_SynthesizesRecord(t *testing.T) {
	src := &fakeSource{prices: map[string]float64{"AAPL": 185.0}}
	st := &memStore{}

	before := time.Now().UnixMilli()
	instruments, err := bootstrap.NewLoader(src, st).Run(context.Background(), "2024-01-02", []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, instruments, 1)

	in := instruments[0]
	require.Equal(t, "AAPL", in.Symbol)
	require.InEpsilon(t, 185.0, in.OpenPrice, 0.0001)
	require.GreaterOrEqual(t, in.CurrentPrice, 180.0)
	require.LessOrEqual(t, in.CurrentPrice, 190.0)
	require.GreaterOrEqual(t, in.RefreshInterval, market.MinRefreshIntervalSec)
	require.LessOrEqual(t, in.RefreshInterval, market.MaxRefreshIntervalSec)

	// lastUpdate is backdated by less than one refresh interval.
	after := time.Now().UnixMilli()
	require.LessOrEqual(t, in.LastUpdate, after)
	require.Greater(t, in.LastUpdate, before-int64(in.RefreshInterval)*1000)

	// The batch was flushed to the store.
	require.Equal(t, 1, st.saves)
	saved, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, instruments, saved)
}

func TestRun_DropsUnavailableSymbols(t *testing.T) {
	src := &fakeSource{prices: map[string]float64{"AAPL": 185.0, "MSFT": 372.5}}
	st := &memStore{}

	instruments, err := bootstrap.NewLoader(src, st).Run(context.Background(), "2024-01-02", []string{"AAPL", "TSLA", "MSFT"})
	require.NoError(t, err)
	require.Len(t, instruments, 2)
	require.Equal(t, "AAPL", instruments[0].Symbol)
	require.Equal(t, "MSFT", instruments[1].Symbol)

	// The dropped symbol leaves no record behind.
	saved, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	for _, in := range saved {
		require.NotEqual(t, "TSLA", in.Symbol)
	}
}

func TestRun_SequentialCallOrder(t *testing.T) {
	universe := []string{"AAPL", "MSFT", "GOOGL", "AMZN"}
	src := &fakeSource{prices: map[string]float64{
		"AAPL": 185.0, "MSFT": 372.5, "GOOGL": 138.9, "AMZN": 151.5,
	}}

	_, err := bootstrap.NewLoader(src, &memStore{}).Run(context.Background(), "2024-01-02", universe)
	require.NoError(t, err)
	require.Equal(t, universe, src.calls)
}

func TestRun_SkipsWhenStateExists(t *testing.T) {
	existing := []market.Instrument{
		{Symbol: "AAPL", OpenPrice: 185.0, RefreshInterval: 3, LastUpdate: 1704207600000, CurrentPrice: 186.2},
	}
	src := &fakeSource{prices: map[string]float64{"AAPL": 999.0}}
	st := &memStore{instruments: existing, seeded: true}

	instruments, err := bootstrap.NewLoader(src, st).Run(context.Background(), "2024-01-02", []string{"AAPL"})
	require.NoError(t, err)
	require.Equal(t, existing, instruments)

	// No upstream calls, no rewrite.
	require.Empty(t, src.calls)
	require.Zero(t, st.saves)
}

func TestRun_ContextCancelAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	src := &cancelingSource{cancel: cancel, after: 2}
	st := &memStore{}

	_, err := bootstrap.NewLoader(src, st).Run(ctx, "2024-01-02", []string{"AAPL", "MSFT", "GOOGL", "AMZN"})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, st.saves)
}

// cancelingSource cancels its own context after a fixed number of calls and
// fails from then on, the way a real source does once its context dies.
type cancelingSource struct {
	cancel context.CancelFunc
	after  int
	calls  int
}

func (c *cancelingSource) Name() string { return "canceling" }

func (c *cancelingSource) OpeningPrice(ctx context.Context, _, _ string) (float64, error) {
	c.calls++
	if c.calls >= c.after {
		c.cancel()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 100.0, nil
}
