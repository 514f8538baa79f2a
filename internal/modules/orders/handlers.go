package orders

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// HistoryReader lists recent submissions for the history panel.
type HistoryReader interface {
	History(limit int) ([]SubmittedOrder, error)
}

// RiskDefaults are the configured risk inputs applied when a request does
// not carry its own. Zero fields fall through to the package constants.
type RiskDefaults struct {
	RiskPercent         float64
	ProbabilityOfProfit float64
}

// Handlers contains the HTTP handlers for the order-entry API
type Handlers struct {
	service  *Service
	history  HistoryReader
	defaults RiskDefaults
	log      zerolog.Logger
}

// NewHandlers creates a new order handlers instance
func NewHandlers(service *Service, history HistoryReader, defaults RiskDefaults, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:  service,
		history:  history,
		defaults: defaults,
		log:      log.With().Str("handler", "orders").Logger(),
	}
}

// Routes registers the order-entry routes.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/types", h.HandleGetTypes)
	r.Post("/validate", h.HandleValidate)
	r.Post("/risk", h.HandleRisk)
	r.Post("/submit", h.HandleSubmit)
	r.Get("/history", h.HandleHistory)
}

// draftRequest is the wire form of the order form state.
type draftRequest struct {
	OrderType    string            `json:"order_type"`
	Symbol       string            `json:"symbol"`
	Side         string            `json:"side"`
	Quantity     string            `json:"quantity"`
	Message      string            `json:"message"`
	Fields       map[string]string `json:"fields"`
	CurrentPrice float64           `json:"current_price"`
}

// toDraft converts the wire form into the typed draft. An unknown order
// type leaves Params nil; the validator reports it.
func (req *draftRequest) toDraft() Draft {
	draft := Draft{
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Message:  req.Message,
	}
	if side, err := SideFromString(req.Side); err == nil {
		draft.Side = side
	}
	if params, err := ParamsFromFields(req.OrderType, req.Fields); err == nil {
		draft.Params = params
	}
	return draft
}

// HandleGetTypes returns the order-type registry.
// GET /api/orders/types
func (h *Handlers) HandleGetTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"order_types": h.service.Registry().List(),
	})
}

// HandleValidate re-runs validation for the current form state and returns
// the inline error text, if any.
// POST /api/orders/validate
func (h *Handlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.service.Validate(req.OrderType, req.toDraft(), req.CurrentPrice)

	response := map[string]interface{}{"valid": result.Valid}
	if !result.Valid {
		response["message"] = result.Message
	}
	h.writeJSON(w, http.StatusOK, response)
}

// riskRequest is the wire form of the risk calculator inputs.
type riskRequest struct {
	Quantity    float64  `json:"quantity"`
	Price       float64  `json:"price"`
	StopLoss    *float64 `json:"stop_loss"`
	TakeProfit  *float64 `json:"take_profit"`
	RiskPercent float64  `json:"risk_percent"`
}

// riskResponse mirrors RiskAnalysis for display; the Sharpe-like ratio is
// null when undefined (max loss of zero) so the UI renders "n/a".
type riskResponse struct {
	RiskAnalysis
	SharpeRatio *float64 `json:"sharpe_ratio"`
}

// HandleRisk computes the derived risk metrics for the current inputs.
// POST /api/orders/risk
func (h *Handlers) HandleRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity <= 0 || req.Price <= 0 {
		h.writeError(w, http.StatusBadRequest, "quantity and price must be greater than 0")
		return
	}

	riskPercent := req.RiskPercent
	if riskPercent == 0 {
		riskPercent = h.defaults.RiskPercent
	}

	analysis := AnalyzeRisk(RiskParams{
		Quantity:            req.Quantity,
		Price:               req.Price,
		StopLoss:            req.StopLoss,
		TakeProfit:          req.TakeProfit,
		RiskPercent:         riskPercent,
		ProbabilityOfProfit: h.defaults.ProbabilityOfProfit,
	})

	response := riskResponse{RiskAnalysis: analysis}
	if !math.IsNaN(analysis.SharpeRatio) {
		response.SharpeRatio = &analysis.SharpeRatio
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleSubmit validates and submits the draft. A validation failure is a
// 200 with the inline message; a backend rejection surfaces the backend's
// detail string; a concurrent submit is a 409.
// POST /api/orders/submit
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Submit(r.Context(), req.OrderType, req.toDraft(), req.CurrentPrice)
	if err != nil {
		if errors.Is(err, ErrSubmissionInFlight) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		var backendErr *platform.BackendError
		if errors.As(err, &backendErr) {
			// Surface the backend's message verbatim.
			h.writeError(w, http.StatusBadGateway, backendErr.Detail)
			return
		}
		h.log.Error().Err(err).Msg("Order submission failed")
		h.writeError(w, http.StatusInternalServerError, "Failed to submit order")
		return
	}

	if !result.Validation.Valid {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid":   false,
			"message": result.Validation.Message,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":      true,
		"status":     "submitted",
		"order_id":   result.OrderID,
		"client_ref": result.ClientRef,
		"draft": map[string]interface{}{
			"symbol":   result.Draft.Symbol,
			"quantity": result.Draft.Quantity,
			"message":  result.Draft.Message,
		},
	})
}

// HandleHistory returns the local submission audit log.
// GET /api/orders/history
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	orders, err := h.history.History(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get order history")
		h.writeError(w, http.StatusInternalServerError, "Failed to get order history")
		return
	}
	if orders == nil {
		orders = []SubmittedOrder{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
