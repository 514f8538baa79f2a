package ticker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/terminal/internal/clients/platform"
	"github.com/quantdesk/terminal/internal/marketdata"
)

type mockQuotes struct {
	quote *platform.Quote
	err   error
}

func (m *mockQuotes) GetQuote(ctx context.Context, symbol string) (*platform.Quote, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.quote, nil
}

type mockFeed struct {
	ticks        map[string]marketdata.Tick
	subscribed   []string
	unsubscribed []string
}

func (m *mockFeed) LastTick(symbol string) (marketdata.Tick, bool) {
	tick, ok := m.ticks[symbol]
	return tick, ok
}

func (m *mockFeed) Subscribe(symbols ...string)   { m.subscribed = append(m.subscribed, symbols...) }
func (m *mockFeed) Unsubscribe(symbols ...string) { m.unsubscribed = append(m.unsubscribed, symbols...) }

func closesRising(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func TestSnapshotPrefersLiveTick(t *testing.T) {
	quotes := &mockQuotes{quote: &platform.Quote{Symbol: "AAPL", Price: 180, Closes: closesRising(30)}}
	feed := &mockFeed{ticks: map[string]marketdata.Tick{
		"AAPL": {Symbol: "AAPL", Price: 181.25, ReceivedAt: time.Now()},
	}}
	service := NewService(quotes, feed, zerolog.Nop())

	snapshot, err := service.Snapshot(context.Background(), "aapl")

	require.NoError(t, err)
	assert.Equal(t, 181.25, snapshot.Price)
	assert.True(t, snapshot.Live)
}

func TestSnapshotFallsBackToQuote(t *testing.T) {
	quotes := &mockQuotes{quote: &platform.Quote{Symbol: "MSFT", Price: 420.5}}
	service := NewService(quotes, &mockFeed{}, zerolog.Nop())

	snapshot, err := service.Snapshot(context.Background(), "MSFT")

	require.NoError(t, err)
	assert.Equal(t, 420.5, snapshot.Price)
	assert.False(t, snapshot.Live)
}

func TestSnapshotIndicators(t *testing.T) {
	quotes := &mockQuotes{quote: &platform.Quote{Symbol: "AAPL", Price: 129, Closes: closesRising(30)}}
	service := NewService(quotes, &mockFeed{}, zerolog.Nop())

	snapshot, err := service.Snapshot(context.Background(), "AAPL")

	require.NoError(t, err)
	require.NotNil(t, snapshot.RSI)
	assert.InDelta(t, 100, *snapshot.RSI, 1e-9) // monotonically rising closes
	require.NotNil(t, snapshot.SMA)
	assert.Greater(t, *snapshot.SMA, 0.0)
}

func TestSnapshotNoClosesNoIndicators(t *testing.T) {
	quotes := &mockQuotes{quote: &platform.Quote{Symbol: "AAPL", Price: 180}}
	service := NewService(quotes, &mockFeed{}, zerolog.Nop())

	snapshot, err := service.Snapshot(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Nil(t, snapshot.RSI)
	assert.Nil(t, snapshot.SMA)
}

func TestWatchNormalizesSymbol(t *testing.T) {
	feed := &mockFeed{}
	service := NewService(&mockQuotes{}, feed, zerolog.Nop())

	service.Watch(" aapl ")
	service.Unwatch(" aapl ")

	assert.Equal(t, []string{"AAPL"}, feed.subscribed)
	assert.Equal(t, []string{"AAPL"}, feed.unsubscribed)
}
