package orders

import (
	"math"
)

// Default risk parameters, applied when the caller does not supply them.
// The 0.6 win probability is a stand-in until the backend's model estimate
// is wired through; see RiskParams.ProbabilityOfProfit.
const (
	DefaultRiskPercent         = 2.0
	DefaultProbabilityOfProfit = 0.6
)

// RiskParams are the inputs of the risk calculator.
type RiskParams struct {
	Quantity float64
	Price    float64 // entry price

	// Optional explicit levels; when nil they are derived from RiskPercent.
	StopLoss   *float64
	TakeProfit *float64

	// RiskPercent defaults to DefaultRiskPercent when zero.
	RiskPercent float64

	// ProbabilityOfProfit defaults to DefaultProbabilityOfProfit when zero.
	// Callers with a backend-sourced estimate should set it.
	ProbabilityOfProfit float64
}

// RiskAnalysis holds the derived risk metrics shown next to the order form.
// Purely derived: recomputed on every relevant input change, never stored.
type RiskAnalysis struct {
	PositionSize        float64 `json:"position_size"`
	RiskAmount          float64 `json:"risk_amount"`
	RiskPercent         float64 `json:"risk_percent"`
	StopLoss            float64 `json:"stop_loss"`
	TakeProfit          float64 `json:"take_profit"`
	MaxLoss             float64 `json:"max_loss"`
	MaxGain             float64 `json:"max_gain"`
	ProbabilityOfProfit float64 `json:"probability_of_profit"`
	ExpectedValue       float64 `json:"expected_value"`

	// SharpeRatio is NaN when MaxLoss is zero; display layers must render
	// it as not-a-number rather than a numeric value.
	SharpeRatio float64 `json:"-"`
}

// AnalyzeRisk derives position sizing and risk/reward metrics from the
// current form inputs. Pure function.
func AnalyzeRisk(params RiskParams) RiskAnalysis {
	riskPercent := params.RiskPercent
	if riskPercent == 0 {
		riskPercent = DefaultRiskPercent
	}
	probability := params.ProbabilityOfProfit
	if probability == 0 {
		probability = DefaultProbabilityOfProfit
	}

	positionSize := params.Quantity * params.Price
	riskAmount := positionSize * (riskPercent / 100)

	stopLoss := params.Price * (1 - riskPercent/100)
	if params.StopLoss != nil {
		stopLoss = *params.StopLoss
	}

	takeProfit := params.Price * (1 + 2*riskPercent/100)
	if params.TakeProfit != nil {
		takeProfit = *params.TakeProfit
	}

	maxLoss := math.Abs(params.Price-stopLoss) * params.Quantity
	maxGain := math.Abs(takeProfit-params.Price) * params.Quantity

	expectedValue := maxGain*probability - maxLoss*(1-probability)

	sharpe := math.NaN()
	if maxLoss > 0 {
		sharpe = expectedValue / math.Sqrt(maxLoss)
	}

	return RiskAnalysis{
		PositionSize:        positionSize,
		RiskAmount:          riskAmount,
		RiskPercent:         riskPercent,
		StopLoss:            stopLoss,
		TakeProfit:          takeProfit,
		MaxLoss:             maxLoss,
		MaxGain:             maxGain,
		ProbabilityOfProfit: probability,
		ExpectedValue:       expectedValue,
		SharpeRatio:         sharpe,
	}
}
