package platform

// OrderType describes one advanced order type as reported by the backend.
type OrderType struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	UseCase     string   `json:"use_case"`
}

// OrderTypesResponse is the response for LoadOrderTypes
type OrderTypesResponse struct {
	OrderTypes []OrderType `json:"order_types"`
}

// BacktestSummary is one row of the backtest list view.
type BacktestSummary struct {
	ID         string  `json:"id"`
	Strategy   string  `json:"strategy"`
	Symbol     string  `json:"symbol"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	FinalValue float64 `json:"final_value"`
	CreatedAt  string  `json:"created_at"`
}

// BacktestDetail is the full backtest result returned by the backend.
type BacktestDetail struct {
	BacktestSummary
	InitialCapital float64   `json:"initial_capital"`
	EquityCurve    []float64 `json:"equity_curve"`
	TradeCount     int       `json:"trade_count"`
	WinRate        float64   `json:"win_rate"`
}

// BacktestsResponse is the response for ListBacktests
type BacktestsResponse struct {
	Backtests []BacktestSummary `json:"backtests"`
}

// OptionContract is one row of an options chain.
type OptionContract struct {
	Symbol     string  `json:"symbol"`
	Strike     float64 `json:"strike"`
	Expiry     string  `json:"expiry"`
	Right      string  `json:"right"` // "call" or "put"
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	LastPrice  float64 `json:"last_price"`
	Volume     int64   `json:"volume"`
	OpenInt    int64   `json:"open_interest"`
	ImpliedVol float64 `json:"implied_vol"`
}

// OptionsChainResponse is the response for GetOptionsChain
type OptionsChainResponse struct {
	Underlying string           `json:"underlying"`
	Expiries   []string         `json:"expiries"`
	Contracts  []OptionContract `json:"contracts"`
}

// Greeks are the option sensitivities computed by the backend.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// Position represents a portfolio position
type Position struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgPrice      float64 `json:"avg_price"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	Currency      string  `json:"currency"`
}

// PortfolioSummary is the response for GetPortfolioSummary
type PortfolioSummary struct {
	TotalValue  float64    `json:"total_value"`
	CashBalance float64    `json:"cash_balance"`
	Positions   []Position `json:"positions"`
}

// PerformancePoint is one sample of the portfolio value history.
type PerformancePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// PerformanceHistoryResponse is the response for GetPerformanceHistory
type PerformanceHistoryResponse struct {
	History []PerformancePoint `json:"history"`
}

// SocialPost is one entry of the social trading feed.
type SocialPost struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	Body      string   `json:"body"`
	Symbols   []string `json:"symbols"`
	Likes     int      `json:"likes"`
	CreatedAt string   `json:"created_at"`
}

// SocialFeedResponse is the response for GetSocialFeed
type SocialFeedResponse struct {
	Posts   []SocialPost `json:"posts"`
	HasMore bool         `json:"has_more"`
}

// Quote represents a security quote
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Volume    int64     `json:"volume"`
	Closes    []float64 `json:"closes,omitempty"` // recent daily closes for sparklines
	Timestamp string    `json:"timestamp"`
}

// SubmittedOrder is the backend's representation of an accepted advanced order.
type SubmittedOrder struct {
	OrderID   string  `json:"order_id"`
	Status    string  `json:"status"`
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	CreatedAt string  `json:"created_at"`
}
