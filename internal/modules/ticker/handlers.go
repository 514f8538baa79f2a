package ticker

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// Handlers contains the HTTP handlers for the ticker strip
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new ticker handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "ticker").Logger(),
	}
}

// Routes registers the ticker routes.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/{symbol}", h.HandleSnapshot)
	r.Post("/{symbol}/watch", h.HandleWatch)
	r.Delete("/{symbol}/watch", h.HandleUnwatch)
}

// HandleSnapshot returns the current ticker entry for a symbol.
// GET /api/ticker/{symbol}
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), symbol)
	if err != nil {
		var backendErr *platform.BackendError
		if errors.As(err, &backendErr) {
			h.writeError(w, http.StatusBadGateway, backendErr.Detail)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get ticker snapshot")
		h.writeError(w, http.StatusInternalServerError, "Failed to get ticker snapshot")
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleWatch subscribes the symbol on the live feed.
// POST /api/ticker/{symbol}/watch
func (h *Handlers) HandleWatch(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	h.service.Watch(symbol)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "watching"})
}

// HandleUnwatch drops the symbol from the live feed.
// DELETE /api/ticker/{symbol}/watch
func (h *Handlers) HandleUnwatch(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	h.service.Unwatch(symbol)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "unwatched"})
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
