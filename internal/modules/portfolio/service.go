// Package portfolio serves the portfolio dashboard: current positions with
// allocation weights, and the value history with locally derived return
// statistics.
package portfolio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
	"github.com/quantdesk/terminal/pkg/formulas"
)

// defaultHistoryDays is the value-history window when none is given.
const defaultHistoryDays = 90

// Reader is the slice of the backend client this module needs.
type Reader interface {
	GetPortfolioSummary(ctx context.Context) (*platform.PortfolioSummary, error)
	GetPerformanceHistory(ctx context.Context, days int) ([]platform.PerformancePoint, error)
}

// WeightedPosition is a position annotated with its portfolio weight.
type WeightedPosition struct {
	platform.Position
	Weight float64 `json:"weight"`
}

// Overview is the portfolio summary shaped for display.
type Overview struct {
	TotalValue  float64            `json:"total_value"`
	CashBalance float64            `json:"cash_balance"`
	CashWeight  float64            `json:"cash_weight"`
	Positions   []WeightedPosition `json:"positions"`
}

// PerformanceStats are the return statistics derived from the value history.
type PerformanceStats struct {
	TotalReturn          float64  `json:"total_return"`
	AnnualizedReturn     float64  `json:"annualized_return"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	MaxDrawdown          float64  `json:"max_drawdown"`
}

// Performance is the value history with its statistics.
type Performance struct {
	History []platform.PerformancePoint `json:"history"`
	Stats   PerformanceStats            `json:"stats"`
}

// Service serves the portfolio dashboard.
type Service struct {
	client Reader
	log    zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(client Reader, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// Overview returns the current positions with allocation weights.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	summary, err := s.client.GetPortfolioSummary(ctx)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		TotalValue:  summary.TotalValue,
		CashBalance: summary.CashBalance,
		Positions:   make([]WeightedPosition, 0, len(summary.Positions)),
	}

	for _, position := range summary.Positions {
		weighted := WeightedPosition{Position: position}
		if summary.TotalValue > 0 {
			weighted.Weight = position.MarketValue / summary.TotalValue
		}
		overview.Positions = append(overview.Positions, weighted)
	}
	if summary.TotalValue > 0 {
		overview.CashWeight = summary.CashBalance / summary.TotalValue
	}

	return overview, nil
}

// Performance returns the value history for the last days together with the
// derived return statistics.
func (s *Service) Performance(ctx context.Context, days int) (*Performance, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}

	history, err := s.client.GetPerformanceHistory(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get performance history: %w", err)
	}
	if history == nil {
		history = []platform.PerformancePoint{}
	}

	values := make([]float64, len(history))
	for i, point := range history {
		values[i] = point.Value
	}

	returns := formulas.Returns(values)
	total := formulas.TotalReturn(values)

	return &Performance{
		History: history,
		Stats: PerformanceStats{
			TotalReturn:          total,
			AnnualizedReturn:     formulas.AnnualizedReturn(total, len(returns)),
			AnnualizedVolatility: formulas.AnnualizedVolatility(returns),
			SharpeRatio:          formulas.SharpeFromEquityCurve(values, 0),
			MaxDrawdown:          formulas.MaxDrawdown(values),
		},
	}, nil
}
