package options

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// Handlers contains the HTTP handlers for the options chain view
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new options handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "options").Logger(),
	}
}

// Routes registers the options routes.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/chain/{symbol}", h.HandleChain)
	r.Get("/greeks/{contract}", h.HandleGreeks)
}

// HandleChain returns the options chain for an underlying.
// GET /api/options/chain/{symbol}?expiry=2026-09-18
func (h *Handlers) HandleChain(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	chain, err := h.service.Chain(r.Context(), symbol, r.URL.Query().Get("expiry"))
	if err != nil {
		h.writeBackendError(w, err, "Failed to get options chain")
		return
	}

	h.writeJSON(w, http.StatusOK, chain)
}

// HandleGreeks returns the greeks for one contract.
// GET /api/options/greeks/{contract}
func (h *Handlers) HandleGreeks(w http.ResponseWriter, r *http.Request) {
	contract := chi.URLParam(r, "contract")

	greeks, err := h.service.Greeks(r.Context(), contract)
	if err != nil {
		h.writeBackendError(w, err, "Failed to get greeks")
		return
	}

	h.writeJSON(w, http.StatusOK, greeks)
}

// writeBackendError surfaces a backend detail message verbatim.
func (h *Handlers) writeBackendError(w http.ResponseWriter, err error, fallback string) {
	var backendErr *platform.BackendError
	if errors.As(err, &backendErr) {
		h.writeError(w, http.StatusBadGateway, backendErr.Detail)
		return
	}
	h.log.Error().Err(err).Msg(fallback)
	h.writeError(w, http.StatusInternalServerError, fallback)
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
