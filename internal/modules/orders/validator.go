package orders

import (
	"strconv"
)

// ValidationResult is the outcome of validating a draft: either a normalized
// submission payload or the first failing rule's message. It is recomputed
// on every form edit and never persisted.
type ValidationResult struct {
	Valid   bool
	Message string
	Payload *Payload
}

// Payload is the normalized order ready for submission. Fields holds the
// type-specific values under their wire names, numbers already parsed.
type Payload struct {
	OrderType string
	Symbol    string
	Side      Side
	Quantity  float64
	Message   string
	Fields    map[string]interface{}
}

// Valid wraps a payload in a passing result.
func Valid(payload Payload) ValidationResult {
	return ValidationResult{Valid: true, Payload: &payload}
}

// Invalid wraps a failure message in a failing result.
func Invalid(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message}
}

// Validate checks a draft against the rules of the selected order type and
// the current market price. Pure: identical inputs always produce identical
// results. Rules are evaluated in order; the first failure wins.
func Validate(orderType string, draft Draft, currentPrice float64) ValidationResult {
	if orderType == "" {
		return Invalid("select an order type")
	}
	if _, ok := Route(orderType); !ok {
		return Invalid("unknown order type: " + orderType)
	}

	quantity, ok := parsePositive(draft.Quantity)
	if !ok {
		return Invalid("quantity must be a number greater than 0")
	}

	if draft.Params == nil || draft.Params.OrderType() != orderType {
		return Invalid("missing parameters for order type: " + orderType)
	}

	fields, message := validateParams(draft.Params, currentPrice)
	if message != "" {
		return Invalid(message)
	}

	return Valid(Payload{
		OrderType: orderType,
		Symbol:    draft.Symbol,
		Side:      draft.Side,
		Quantity:  quantity,
		Message:   draft.Message,
		Fields:    fields,
	})
}

// validateParams applies the per-type rules. It returns the normalized wire
// fields on success, or the first failing rule's message.
func validateParams(params Params, currentPrice float64) (map[string]interface{}, string) {
	switch p := params.(type) {
	case StopLossParams:
		stop, ok := parsePositive(p.StopPrice)
		if !ok {
			return nil, "stop price must be greater than 0"
		}
		if currentPrice <= 0 {
			return nil, "current market price unavailable"
		}
		if stop >= currentPrice {
			return nil, "stop price must be below the current market price"
		}
		return map[string]interface{}{"stop_price": stop}, ""

	case TakeProfitParams:
		limit, ok := parsePositive(p.LimitPrice)
		if !ok {
			return nil, "limit price must be greater than 0"
		}
		if currentPrice <= 0 {
			return nil, "current market price unavailable"
		}
		if limit <= currentPrice {
			return nil, "limit price must be above the current market price"
		}
		return map[string]interface{}{"limit_price": limit}, ""

	case TrailingStopParams:
		trail, ok := parsePositive(p.TrailAmount)
		if !ok {
			return nil, "trail amount must be greater than 0"
		}
		return map[string]interface{}{"trail_amount": trail}, ""

	case BracketParams:
		if p.EntryPrice == "" || p.StopLossPrice == "" || p.TakeProfitPrice == "" {
			return nil, "entry, stop loss and take profit prices are all required"
		}
		entry, ok := parsePositive(p.EntryPrice)
		if !ok {
			return nil, "entry price must be greater than 0"
		}
		stop, ok := parsePositive(p.StopLossPrice)
		if !ok {
			return nil, "stop loss price must be greater than 0"
		}
		profit, ok := parsePositive(p.TakeProfitPrice)
		if !ok {
			return nil, "take profit price must be greater than 0"
		}
		if stop >= entry {
			return nil, "stop loss price must be below the entry price"
		}
		if profit <= entry {
			return nil, "take profit price must be above the entry price"
		}
		return map[string]interface{}{
			"entry_price":       entry,
			"stop_loss_price":   stop,
			"take_profit_price": profit,
		}, ""

	case OCOParams:
		if p.StopPrice == "" || p.LimitPrice == "" {
			return nil, "both stop and limit prices are required"
		}
		stop, ok := parsePositive(p.StopPrice)
		if !ok {
			return nil, "stop price must be greater than 0"
		}
		limit, ok := parsePositive(p.LimitPrice)
		if !ok {
			return nil, "limit price must be greater than 0"
		}
		if currentPrice <= 0 {
			return nil, "current market price unavailable"
		}
		if stop >= currentPrice {
			return nil, "stop price must be below the current market price"
		}
		if limit <= currentPrice {
			return nil, "limit price must be above the current market price"
		}
		return map[string]interface{}{
			"stop_price":  stop,
			"limit_price": limit,
		}, ""

	case IcebergParams:
		if p.TotalQuantity == "" || p.VisibleQuantity == "" {
			return nil, "total and visible quantities are required"
		}
		total, ok := parsePositive(p.TotalQuantity)
		if !ok {
			return nil, "total quantity must be greater than 0"
		}
		visible, ok := parsePositive(p.VisibleQuantity)
		if !ok {
			return nil, "visible quantity must be greater than 0"
		}
		if visible >= total {
			return nil, "visible quantity must be less than the total quantity"
		}
		return map[string]interface{}{
			"total_quantity":   total,
			"visible_quantity": visible,
		}, ""

	case TWAPParams:
		return validateScheduled(p.DurationMinutes, p.PriceType, p.LimitPrice)

	case VWAPParams:
		return validateScheduled(p.DurationMinutes, p.PriceType, p.LimitPrice)

	default:
		return nil, "unknown order type: " + params.OrderType()
	}
}

// validateScheduled covers the shared TWAP/VWAP rules.
func validateScheduled(durationMinutes, priceType, limitPrice string) (map[string]interface{}, string) {
	duration, ok := parsePositive(durationMinutes)
	if !ok {
		return nil, "duration must be a number of minutes greater than 0"
	}

	fields := map[string]interface{}{"duration_minutes": duration}
	if priceType != "" {
		fields["price_type"] = priceType
	}

	if priceType == "limit" {
		limit, ok := parsePositive(limitPrice)
		if !ok {
			return nil, "a limit price greater than 0 is required for limit price type"
		}
		fields["limit_price"] = limit
	}

	return fields, ""
}

// parsePositive parses a form value as a strictly positive number.
func parsePositive(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
