package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftWith(quantity string, params Params) Draft {
	return Draft{
		Symbol:   "AAPL",
		Quantity: quantity,
		Side:     SideBuy,
		Params:   params,
	}
}

func TestValidateRequiresOrderType(t *testing.T) {
	result := Validate("", draftWith("10", nil), 100)

	assert.False(t, result.Valid)
	assert.Equal(t, "select an order type", result.Message)
}

func TestValidateRejectsUnknownType(t *testing.T) {
	result := Validate("fill_or_kill", draftWith("10", nil), 100)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Message, "unknown order type")
}

func TestValidateQuantityNonPositiveAlwaysInvalid(t *testing.T) {
	// Quantity <= 0 must fail for every order type, before any
	// type-specific rule runs.
	params := map[string]Params{
		TypeStopLoss:     StopLossParams{StopPrice: "95"},
		TypeTakeProfit:   TakeProfitParams{LimitPrice: "110"},
		TypeTrailingStop: TrailingStopParams{TrailAmount: "2"},
		TypeBracket:      BracketParams{EntryPrice: "100", StopLossPrice: "95", TakeProfitPrice: "110"},
		TypeOCO:          OCOParams{StopPrice: "95", LimitPrice: "110"},
		TypeIceberg:      IcebergParams{TotalQuantity: "100", VisibleQuantity: "10"},
		TypeTWAP:         TWAPParams{DurationMinutes: "30"},
		TypeVWAP:         VWAPParams{DurationMinutes: "30"},
	}

	for _, quantity := range []string{"0", "-5", "", "abc"} {
		for orderType, p := range params {
			result := Validate(orderType, draftWith(quantity, p), 100)
			assert.False(t, result.Valid, "type=%s quantity=%q", orderType, quantity)
			assert.Equal(t, "quantity must be a number greater than 0", result.Message)
		}
	}
}

func TestValidateStopLoss(t *testing.T) {
	tests := []struct {
		name      string
		stopPrice string
		price     float64
		valid     bool
	}{
		{"below market accepted", "95", 100, true},
		{"equal to market rejected", "100", 100, false},
		{"above market rejected", "105", 100, false},
		{"zero rejected", "0", 100, false},
		{"negative rejected", "-1", 100, false},
		{"missing rejected", "", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(TypeStopLoss, draftWith("10", StopLossParams{StopPrice: tt.stopPrice}), tt.price)
			assert.Equal(t, tt.valid, result.Valid, result.Message)
		})
	}
}

func TestValidateStopLossPayloadNormalized(t *testing.T) {
	result := Validate(TypeStopLoss, draftWith("10", StopLossParams{StopPrice: "95.5"}), 100)

	require.True(t, result.Valid)
	require.NotNil(t, result.Payload)
	assert.Equal(t, 10.0, result.Payload.Quantity)
	assert.Equal(t, 95.5, result.Payload.Fields["stop_price"])
	assert.Equal(t, "AAPL", result.Payload.Symbol)
}

func TestValidateTakeProfit(t *testing.T) {
	valid := Validate(TypeTakeProfit, draftWith("10", TakeProfitParams{LimitPrice: "110"}), 100)
	assert.True(t, valid.Valid)

	equal := Validate(TypeTakeProfit, draftWith("10", TakeProfitParams{LimitPrice: "100"}), 100)
	assert.False(t, equal.Valid)
	assert.Equal(t, "limit price must be above the current market price", equal.Message)

	below := Validate(TypeTakeProfit, draftWith("10", TakeProfitParams{LimitPrice: "90"}), 100)
	assert.False(t, below.Valid)
}

func TestValidateTrailingStop(t *testing.T) {
	assert.True(t, Validate(TypeTrailingStop, draftWith("10", TrailingStopParams{TrailAmount: "2.5"}), 100).Valid)
	assert.False(t, Validate(TypeTrailingStop, draftWith("10", TrailingStopParams{TrailAmount: "0"}), 100).Valid)
	assert.False(t, Validate(TypeTrailingStop, draftWith("10", TrailingStopParams{}), 100).Valid)
}

func TestValidateBracketOrdering(t *testing.T) {
	// Stop equal to entry must be rejected: ordering is strict.
	result := Validate(TypeBracket, draftWith("10", BracketParams{
		EntryPrice:      "100",
		StopLossPrice:   "100",
		TakeProfitPrice: "110",
	}), 100)
	assert.False(t, result.Valid)
	assert.Equal(t, "stop loss price must be below the entry price", result.Message)

	// Profit equal to entry is rejected too.
	result = Validate(TypeBracket, draftWith("10", BracketParams{
		EntryPrice:      "100",
		StopLossPrice:   "95",
		TakeProfitPrice: "100",
	}), 100)
	assert.False(t, result.Valid)
	assert.Equal(t, "take profit price must be above the entry price", result.Message)

	// Proper ordering passes.
	result = Validate(TypeBracket, draftWith("10", BracketParams{
		EntryPrice:      "100",
		StopLossPrice:   "95",
		TakeProfitPrice: "110",
	}), 100)
	require.True(t, result.Valid, result.Message)
	assert.Equal(t, 95.0, result.Payload.Fields["stop_loss_price"])
}

func TestValidateBracketMissingFields(t *testing.T) {
	result := Validate(TypeBracket, draftWith("10", BracketParams{EntryPrice: "100"}), 100)

	assert.False(t, result.Valid)
	assert.Equal(t, "entry, stop loss and take profit prices are all required", result.Message)
}

func TestValidateOCO(t *testing.T) {
	// Stop below market, limit above: valid.
	result := Validate(TypeOCO, draftWith("10", OCOParams{StopPrice: "95", LimitPrice: "110"}), 100)
	assert.True(t, result.Valid, result.Message)

	// Stop above market: invalid.
	result = Validate(TypeOCO, draftWith("10", OCOParams{StopPrice: "105", LimitPrice: "110"}), 100)
	assert.False(t, result.Valid)

	// Limit below market: invalid.
	result = Validate(TypeOCO, draftWith("10", OCOParams{StopPrice: "95", LimitPrice: "99"}), 100)
	assert.False(t, result.Valid)

	// Missing leg: invalid.
	result = Validate(TypeOCO, draftWith("10", OCOParams{StopPrice: "95"}), 100)
	assert.False(t, result.Valid)
	assert.Equal(t, "both stop and limit prices are required", result.Message)
}

func TestValidateIceberg(t *testing.T) {
	// visible == total rejected, visible < total accepted.
	equal := Validate(TypeIceberg, draftWith("10", IcebergParams{TotalQuantity: "100", VisibleQuantity: "100"}), 100)
	assert.False(t, equal.Valid)
	assert.Equal(t, "visible quantity must be less than the total quantity", equal.Message)

	smaller := Validate(TypeIceberg, draftWith("10", IcebergParams{TotalQuantity: "100", VisibleQuantity: "99"}), 100)
	assert.True(t, smaller.Valid, smaller.Message)
}

func TestValidateTWAPAndVWAP(t *testing.T) {
	for _, orderType := range []string{TypeTWAP, TypeVWAP} {
		params, err := ParamsFromFields(orderType, map[string]string{"duration_minutes": "30"})
		require.NoError(t, err)
		assert.True(t, Validate(orderType, draftWith("10", params), 100).Valid)

		params, err = ParamsFromFields(orderType, map[string]string{"duration_minutes": "0"})
		require.NoError(t, err)
		assert.False(t, Validate(orderType, draftWith("10", params), 100).Valid)

		// Limit price type without a limit price.
		params, err = ParamsFromFields(orderType, map[string]string{
			"duration_minutes": "30",
			"price_type":       "limit",
		})
		require.NoError(t, err)
		result := Validate(orderType, draftWith("10", params), 100)
		assert.False(t, result.Valid)
		assert.Equal(t, "a limit price greater than 0 is required for limit price type", result.Message)

		// With the limit price present it passes.
		params, err = ParamsFromFields(orderType, map[string]string{
			"duration_minutes": "30",
			"price_type":       "limit",
			"limit_price":      "101",
		})
		require.NoError(t, err)
		result = Validate(orderType, draftWith("10", params), 100)
		require.True(t, result.Valid, result.Message)
		assert.Equal(t, 101.0, result.Payload.Fields["limit_price"])
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	draft := draftWith("10", OCOParams{StopPrice: "95", LimitPrice: "110"})

	first := Validate(TypeOCO, draft, 100)
	second := Validate(TypeOCO, draft, 100)

	assert.Equal(t, first.Valid, second.Valid)
	assert.Equal(t, first.Message, second.Message)
	require.NotNil(t, first.Payload)
	require.NotNil(t, second.Payload)
	assert.Equal(t, first.Payload.Fields, second.Payload.Fields)
}

func TestValidateMismatchedParams(t *testing.T) {
	// Params built for another type cannot satisfy the selected one.
	result := Validate(TypeStopLoss, draftWith("10", TakeProfitParams{LimitPrice: "110"}), 100)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Message, "missing parameters")
}

func TestParamsFromFieldsUnknownType(t *testing.T) {
	_, err := ParamsFromFields("market_on_close", map[string]string{})
	assert.Error(t, err)
}

func TestSideFromString(t *testing.T) {
	side, err := SideFromString("buy")
	require.NoError(t, err)
	assert.Equal(t, SideBuy, side)

	side, err = SideFromString(" SELL ")
	require.NoError(t, err)
	assert.Equal(t, SideSell, side)

	_, err = SideFromString("hold")
	assert.Error(t, err)

	_, err = SideFromString("")
	assert.Error(t, err)
}
