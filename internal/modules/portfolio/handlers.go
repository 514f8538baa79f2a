package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// Handlers contains the HTTP handlers for the portfolio dashboard
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new portfolio handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// Routes registers the portfolio routes.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/summary", h.HandleSummary)
	r.Get("/performance", h.HandlePerformance)
}

// HandleSummary returns positions with allocation weights.
// GET /api/portfolio/summary
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.writeBackendError(w, err, "Failed to get portfolio summary")
		return
	}

	h.writeJSON(w, http.StatusOK, overview)
}

// HandlePerformance returns the value history with return statistics.
// GET /api/portfolio/performance?days=90
func (h *Handlers) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	days := 0
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		if parsed, err := strconv.Atoi(daysParam); err == nil {
			days = parsed
		}
	}

	performance, err := h.service.Performance(r.Context(), days)
	if err != nil {
		h.writeBackendError(w, err, "Failed to get performance history")
		return
	}

	h.writeJSON(w, http.StatusOK, performance)
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
