// Package orders implements the order-entry core of the terminal: the
// order-type registry, draft validation, risk metrics and submission of
// advanced orders to the platform backend.
package orders

import (
	"fmt"
	"strings"
)

// Side represents the order direction (BUY or SELL)
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// IsValid checks if the side is valid
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// SideFromString creates a Side from a string (case-insensitive)
func SideFromString(value string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	case "":
		return "", fmt.Errorf("invalid order side: empty string")
	default:
		return "", fmt.Errorf("invalid order side: %s", value)
	}
}

// Advanced order type tags, matching the backend registry.
const (
	TypeStopLoss     = "stop_loss"
	TypeTakeProfit   = "take_profit"
	TypeTrailingStop = "trailing_stop"
	TypeBracket      = "bracket"
	TypeOCO          = "oco"
	TypeIceberg      = "iceberg"
	TypeTWAP         = "twap"
	TypeVWAP         = "vwap"
)

// routes maps an order type tag to its backend submission route segment.
var routes = map[string]string{
	TypeStopLoss:     "stop-loss",
	TypeTakeProfit:   "take-profit",
	TypeTrailingStop: "trailing-stop",
	TypeBracket:      "bracket",
	TypeOCO:          "oco",
	TypeIceberg:      "iceberg",
	TypeTWAP:         "twap",
	TypeVWAP:         "vwap",
}

// Route returns the backend route segment for an order type tag.
func Route(orderType string) (string, bool) {
	route, ok := routes[orderType]
	return route, ok
}

// KnownTypes returns all order type tags this core can validate and submit.
func KnownTypes() []string {
	return []string{
		TypeStopLoss, TypeTakeProfit, TypeTrailingStop, TypeBracket,
		TypeOCO, TypeIceberg, TypeTWAP, TypeVWAP,
	}
}

// Params is the type-specific portion of a draft. Each order type has its
// own variant; the validator selects behavior with a type switch instead of
// looking fields up in a dynamic map. Field values are strings because they
// arrive exactly as typed into the form.
type Params interface {
	// OrderType returns the tag of the variant.
	OrderType() string
}

// StopLossParams are the fields of a stop-loss order.
type StopLossParams struct {
	StopPrice string `json:"stop_price"`
}

func (StopLossParams) OrderType() string { return TypeStopLoss }

// TakeProfitParams are the fields of a take-profit order.
type TakeProfitParams struct {
	LimitPrice string `json:"limit_price"`
}

func (TakeProfitParams) OrderType() string { return TypeTakeProfit }

// TrailingStopParams are the fields of a trailing-stop order.
type TrailingStopParams struct {
	TrailAmount string `json:"trail_amount"`
}

func (TrailingStopParams) OrderType() string { return TypeTrailingStop }

// BracketParams are the fields of a bracket order.
type BracketParams struct {
	EntryPrice      string `json:"entry_price"`
	StopLossPrice   string `json:"stop_loss_price"`
	TakeProfitPrice string `json:"take_profit_price"`
}

func (BracketParams) OrderType() string { return TypeBracket }

// OCOParams are the fields of a one-cancels-other order.
type OCOParams struct {
	StopPrice  string `json:"stop_price"`
	LimitPrice string `json:"limit_price"`
}

func (OCOParams) OrderType() string { return TypeOCO }

// IcebergParams are the fields of an iceberg order.
type IcebergParams struct {
	TotalQuantity   string `json:"total_quantity"`
	VisibleQuantity string `json:"visible_quantity"`
}

func (IcebergParams) OrderType() string { return TypeIceberg }

// TWAPParams are the fields of a time-weighted average price order.
type TWAPParams struct {
	DurationMinutes string `json:"duration_minutes"`
	PriceType       string `json:"price_type"` // "market" or "limit"
	LimitPrice      string `json:"limit_price"`
}

func (TWAPParams) OrderType() string { return TypeTWAP }

// VWAPParams are the fields of a volume-weighted average price order.
type VWAPParams struct {
	DurationMinutes string `json:"duration_minutes"`
	PriceType       string `json:"price_type"`
	LimitPrice      string `json:"limit_price"`
}

func (VWAPParams) OrderType() string { return TypeVWAP }

// Draft is the mutable order form state: created when the form opens,
// mutated on every edit, reset on successful submission.
type Draft struct {
	Symbol   string
	Quantity string // as typed, parsed during validation
	Side     Side
	Message  string
	Params   Params
}

// Reset clears the mutable fields of a draft after a successful submission,
// keeping the symbol so the trader can place a follow-up order.
func (d Draft) Reset() Draft {
	return Draft{Symbol: d.Symbol}
}

// ParamsFromFields converts the wire form of type-specific fields into the
// typed variant for the given order type. This is the only place the
// dynamic field map is touched; everything downstream pattern-matches on
// the variant.
func ParamsFromFields(orderType string, fields map[string]string) (Params, error) {
	get := func(key string) string { return strings.TrimSpace(fields[key]) }

	switch orderType {
	case TypeStopLoss:
		return StopLossParams{StopPrice: get("stop_price")}, nil
	case TypeTakeProfit:
		return TakeProfitParams{LimitPrice: get("limit_price")}, nil
	case TypeTrailingStop:
		return TrailingStopParams{TrailAmount: get("trail_amount")}, nil
	case TypeBracket:
		return BracketParams{
			EntryPrice:      get("entry_price"),
			StopLossPrice:   get("stop_loss_price"),
			TakeProfitPrice: get("take_profit_price"),
		}, nil
	case TypeOCO:
		return OCOParams{
			StopPrice:  get("stop_price"),
			LimitPrice: get("limit_price"),
		}, nil
	case TypeIceberg:
		return IcebergParams{
			TotalQuantity:   get("total_quantity"),
			VisibleQuantity: get("visible_quantity"),
		}, nil
	case TypeTWAP:
		return TWAPParams{
			DurationMinutes: get("duration_minutes"),
			PriceType:       get("price_type"),
			LimitPrice:      get("limit_price"),
		}, nil
	case TypeVWAP:
		return VWAPParams{
			DurationMinutes: get("duration_minutes"),
			PriceType:       get("price_type"),
			LimitPrice:      get("limit_price"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown order type: %s", orderType)
	}
}

// Descriptor describes one order type for the form's selector.
type Descriptor struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	UseCase     string   `json:"use_case"`
}
