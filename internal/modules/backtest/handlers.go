package backtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// Handlers contains the HTTP handlers for the backtest results view
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new backtest handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "backtest").Logger(),
	}
}

// Routes registers the backtest routes.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleDetail)
}

// HandleList returns recent backtest summaries.
// GET /api/backtests
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	backtests, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.writeBackendError(w, err, "Failed to list backtests")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"backtests": backtests})
}

// HandleDetail returns one backtest with its computed statistics.
// GET /api/backtests/{id}
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "Backtest id is required")
		return
	}

	report, err := h.service.Detail(r.Context(), id)
	if err != nil {
		h.writeBackendError(w, err, "Failed to get backtest")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// writeBackendError surfaces a backend detail message verbatim, falling
// back to fallback for transport failures.
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
