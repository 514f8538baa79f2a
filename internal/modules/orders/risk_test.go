package orders

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeRiskReferenceCase(t *testing.T) {
	// quantity=10, price=50, risk=2%: the arithmetic is fixed and
	// reproducible.
	analysis := AnalyzeRisk(RiskParams{Quantity: 10, Price: 50, RiskPercent: 2})

	assert.Equal(t, 500.0, analysis.PositionSize)
	assert.Equal(t, 10.0, analysis.RiskAmount)
	assert.InDelta(t, 49.0, analysis.StopLoss, 1e-9)
	assert.InDelta(t, 52.0, analysis.TakeProfit, 1e-9)
	assert.InDelta(t, 10.0, analysis.MaxLoss, 1e-9)
	assert.InDelta(t, 20.0, analysis.MaxGain, 1e-9)
	assert.Equal(t, 0.6, analysis.ProbabilityOfProfit)

	// EV = 20*0.6 - 10*0.4 = 8; sharpe = 8 / sqrt(10)
	assert.InDelta(t, 8.0, analysis.ExpectedValue, 1e-9)
	assert.InDelta(t, 8.0/math.Sqrt(10.0), analysis.SharpeRatio, 1e-9)
}

func TestAnalyzeRiskDefaultsApplied(t *testing.T) {
	analysis := AnalyzeRisk(RiskParams{Quantity: 10, Price: 50})

	assert.Equal(t, DefaultRiskPercent, analysis.RiskPercent)
	assert.Equal(t, DefaultProbabilityOfProfit, analysis.ProbabilityOfProfit)
	assert.InDelta(t, 49.0, analysis.StopLoss, 1e-9)
}

func TestAnalyzeRiskExplicitLevels(t *testing.T) {
	stop := 45.0
	profit := 60.0

	analysis := AnalyzeRisk(RiskParams{
		Quantity:   10,
		Price:      50,
		StopLoss:   &stop,
		TakeProfit: &profit,
	})

	assert.Equal(t, 45.0, analysis.StopLoss)
	assert.Equal(t, 60.0, analysis.TakeProfit)
	assert.InDelta(t, 50.0, analysis.MaxLoss, 1e-9)
	assert.InDelta(t, 100.0, analysis.MaxGain, 1e-9)
}

func TestAnalyzeRiskSharpeUndefinedWhenNoLoss(t *testing.T) {
	// Stop at the entry price: max loss is zero, the ratio is undefined.
	stop := 50.0

	analysis := AnalyzeRisk(RiskParams{Quantity: 10, Price: 50, StopLoss: &stop})

	assert.Equal(t, 0.0, analysis.MaxLoss)
	assert.True(t, math.IsNaN(analysis.SharpeRatio))
}

func TestAnalyzeRiskCustomProbability(t *testing.T) {
	analysis := AnalyzeRisk(RiskParams{
		Quantity:            10,
		Price:               50,
		RiskPercent:         2,
		ProbabilityOfProfit: 0.5,
	})

	// EV = 20*0.5 - 10*0.5 = 5
	assert.InDelta(t, 5.0, analysis.ExpectedValue, 1e-9)
}
