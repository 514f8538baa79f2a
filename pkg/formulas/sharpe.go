package formulas

import (
	"math"
)

// SharpeRatio calculates the annualized Sharpe ratio from periodic returns.
//
//	Sharpe = (mean return - periodic risk-free rate) / stddev of returns
//	Annualized: Sharpe x sqrt(periods per year)
//
// riskFreeRate is annual, as a decimal (0.02 for 2%). Returns nil when there
// are fewer than two returns or the series has zero variance.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) *float64 {
	if len(returns) < 2 {
		return nil
	}

	stdDev := StdDev(returns)
	if stdDev == 0 {
		return nil
	}

	periodicRiskFree := riskFreeRate / float64(periodsPerYear)
	sharpe := (Mean(returns) - periodicRiskFree) / stdDev

	annualized := sharpe * math.Sqrt(float64(periodsPerYear))
	return &annualized
}

// SharpeFromEquityCurve derives daily returns from an equity curve and
// calculates the annualized Sharpe ratio.
func SharpeFromEquityCurve(equity []float64, riskFreeRate float64) *float64 {
	return SharpeRatio(Returns(equity), riskFreeRate, TradingDaysPerYear)
}
