// Package formulas provides the numeric building blocks shared by the
// dashboard views: return statistics, risk-adjusted ratios and the
// technical indicators rendered in ticker sparklines.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is used when annualizing daily statistics.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// AnnualizedVolatility calculates annualized volatility from daily returns
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// Returns converts a price or equity series to percentage returns.
// Returns[i] = (Series[i] - Series[i-1]) / Series[i-1]
func Returns(series []float64) []float64 {
	if len(series) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		if series[i-1] != 0 {
			returns[i-1] = (series[i] - series[i-1]) / series[i-1]
		}
	}
	return returns
}

// TotalReturn is the cumulative return over a series, as a decimal.
func TotalReturn(series []float64) float64 {
	if len(series) < 2 || series[0] == 0 {
		return 0
	}
	return (series[len(series)-1] - series[0]) / series[0]
}

// AnnualizedReturn converts a cumulative return over n daily periods to an
// annual rate. Returns 0 when the series is too short to annualize.
func AnnualizedReturn(totalReturn float64, periods int) float64 {
	if periods <= 0 || totalReturn <= -1 {
		return 0
	}
	years := float64(periods) / TradingDaysPerYear
	if years == 0 {
		return 0
	}
	return math.Pow(1+totalReturn, 1/years) - 1
}
