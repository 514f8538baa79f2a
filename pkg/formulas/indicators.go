package formulas

import (
	"github.com/markcheno/go-talib"
)

// RSI calculates the current Relative Strength Index from closing prices.
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = average gain / average loss over length periods
//
// Returns nil when there are not enough closes for the requested length.
func RSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) == 0 || isNaN(rsi[len(rsi)-1]) {
		return nil
	}

	result := rsi[len(rsi)-1]
	return &result
}

// SMA calculates the simple moving average series for the given period.
// Leading values that cannot be computed yet are returned as NaN by talib;
// callers rendering sparklines skip them. Returns nil when there are fewer
// closes than the period.
func SMA(closes []float64, period int) []float64 {
	if len(closes) < period {
		return nil
	}
	return talib.Sma(closes, period)
}

func isNaN(f float64) bool {
	return f != f
}
