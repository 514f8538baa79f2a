// Package backtest exposes backtest results for the results view. Listing
// and detail data come from the backend; the headline statistics shown next
// to the equity curve are recomputed locally so they always agree with the
// curve being rendered.
package backtest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
	"github.com/quantdesk/terminal/pkg/formulas"
)

// defaultListLimit bounds the list view when no limit is given.
const defaultListLimit = 20

// Reader is the slice of the backend client this module needs.
type Reader interface {
	ListBacktests(ctx context.Context, limit int) ([]platform.BacktestSummary, error)
	GetBacktest(ctx context.Context, id string) (*platform.BacktestDetail, error)
}

// Stats are the locally computed headline metrics for one backtest.
type Stats struct {
	TotalReturn          float64  `json:"total_return"`
	AnnualizedReturn     float64  `json:"annualized_return"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	MaxDrawdown          float64  `json:"max_drawdown"`
}

// Report is a backtest detail together with its computed statistics.
type Report struct {
	platform.BacktestDetail
	Stats Stats `json:"stats"`
}

// Service serves the backtest results view.
type Service struct {
	client Reader
	log    zerolog.Logger
}

// NewService creates a new backtest service
func NewService(client Reader, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "backtest").Logger(),
	}
}

// List returns recent backtest summaries.
func (s *Service) List(ctx context.Context, limit int) ([]platform.BacktestSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	backtests, err := s.client.ListBacktests(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtests: %w", err)
	}
	if backtests == nil {
		backtests = []platform.BacktestSummary{}
	}
	return backtests, nil
}

// Detail returns one backtest with statistics derived from its equity curve.
func (s *Service) Detail(ctx context.Context, id string) (*Report, error) {
	detail, err := s.client.GetBacktest(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Report{
		BacktestDetail: *detail,
		Stats:          computeStats(detail.EquityCurve),
	}, nil
}

// computeStats derives the headline metrics from the equity curve. A curve
// too short to produce returns yields zero-valued stats and a nil ratio.
func computeStats(equity []float64) Stats {
	returns := formulas.Returns(equity)
	total := formulas.TotalReturn(equity)

	return Stats{
		TotalReturn:          total,
		AnnualizedReturn:     formulas.AnnualizedReturn(total, len(returns)),
		AnnualizedVolatility: formulas.AnnualizedVolatility(returns),
		SharpeRatio:          formulas.SharpeFromEquityCurve(equity, 0),
		MaxDrawdown:          formulas.MaxDrawdown(equity),
	}
}
