// Package ticker serves the header ticker strip: the latest price for a
// symbol, preferring the live feed over the backend quote, plus the
// sparkline closes and the indicators derived from them.
package ticker

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
	"github.com/quantdesk/terminal/internal/marketdata"
	"github.com/quantdesk/terminal/pkg/formulas"
)

const (
	rsiLength = 14
	smaPeriod = 20
)

// QuoteReader is the slice of the backend client this module needs.
type QuoteReader interface {
	GetQuote(ctx context.Context, symbol string) (*platform.Quote, error)
}

// TickSource is the live feed surface the ticker reads from.
type TickSource interface {
	LastTick(symbol string) (marketdata.Tick, bool)
	Subscribe(symbols ...string)
	Unsubscribe(symbols ...string)
}

// Snapshot is one ticker entry: quote data, the live price when the feed
// has one, and the derived indicators.
type Snapshot struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Live      bool      `json:"live"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Volume    int64     `json:"volume"`
	Closes    []float64 `json:"closes,omitempty"`
	RSI       *float64  `json:"rsi"`
	SMA       *float64  `json:"sma"`
}

// Service serves the ticker strip.
type Service struct {
	client QuoteReader
	feed   TickSource
	log    zerolog.Logger
}

// NewService creates a new ticker service
func NewService(client QuoteReader, feed TickSource, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		feed:   feed,
		log:    log.With().Str("service", "ticker").Logger(),
	}
}

// Snapshot returns the current ticker entry for a symbol. The live feed
// price wins over the backend quote when the feed has a cached tick.
func (s *Service) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	quote, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Symbol:    quote.Symbol,
		Price:     quote.Price,
		Change:    quote.Change,
		ChangePct: quote.ChangePct,
		Volume:    quote.Volume,
		Closes:    quote.Closes,
	}

	if tick, ok := s.feed.LastTick(symbol); ok {
		snapshot.Price = tick.Price
		snapshot.Live = true
	}

	if len(quote.Closes) > 0 {
		snapshot.RSI = formulas.RSI(quote.Closes, rsiLength)
		if sma := formulas.SMA(quote.Closes, smaPeriod); len(sma) > 0 {
			last := sma[len(sma)-1]
			snapshot.SMA = &last
		}
	}

	return snapshot, nil
}

// Watch adds a symbol to the live feed for this view.
func (s *Service) Watch(symbol string) {
	s.feed.Subscribe(strings.ToUpper(strings.TrimSpace(symbol)))
}

// Unwatch removes this view's interest in a symbol.
func (s *Service) Unwatch(symbol string) {
	s.feed.Unsubscribe(strings.ToUpper(strings.TrimSpace(symbol)))
}
