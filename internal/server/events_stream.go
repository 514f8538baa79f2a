package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/events"
)

// keepAliveInterval spaces SSE comments so proxies keep the stream open.
const keepAliveInterval = 30 * time.Second

// StreamHandler pushes bus events to the browser over SSE.
type StreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewStreamHandler creates a new SSE stream handler
func NewStreamHandler(bus *events.Bus, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		bus: bus,
		log: log.With().Str("handler", "events_stream").Logger(),
	}
}

// HandleStream streams bus events until the client disconnects. An optional
// types parameter filters to a comma-separated set of event types.
// GET /api/events/stream?types=PRICE_UPDATED,ORDER_SUBMITTED
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	wanted := parseTypeFilter(r.URL.Query().Get("types"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := h.bus.Subscribe()
	defer h.bus.Unsubscribe(id)

	h.log.Debug().Int("subscriber", id).Msg("Event stream opened")

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Debug().Int("subscriber", id).Msg("Event stream closed")
			return

		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case event, open := <-ch:
			if !open {
				return
			}
			if wanted != nil && !wanted[event.Type] {
				continue
			}

			data, err := json.Marshal(event)
			if err != nil {
				h.log.Error().Err(err).Msg("Failed to marshal event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

// parseTypeFilter returns nil when no filter is given, meaning all types.
func parseTypeFilter(raw string) map[events.EventType]bool {
	if raw == "" {
		return nil
	}

	wanted := make(map[events.EventType]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			wanted[events.EventType(name)] = true
		}
	}
	return wanted
}
