package social

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// Handlers contains the HTTP handlers for the social feed view
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new social feed handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "social").Logger(),
	}
}

// Routes registers the social feed routes.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/feed", h.HandleFeed)
}

// HandleFeed returns one page of the social feed.
// GET /api/social/feed?limit=20&offset=0
func (h *Handlers) HandleFeed(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	page, err := h.service.Feed(r.Context(), limit, offset)
	if err != nil {
		var backendErr *platform.BackendError
		if errors.As(err, &backendErr) {
			h.writeError(w, http.StatusBadGateway, backendErr.Detail)
			return
		}
		h.log.Error().Err(err).Msg("Failed to get social feed")
		h.writeError(w, http.StatusInternalServerError, "Failed to get social feed")
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
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
