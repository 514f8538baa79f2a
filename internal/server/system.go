package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthChecker reports whether the trading backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) bool
}

// FeedStatus reports the live feed connection state.
type FeedStatus interface {
	Connected() bool
}

// SystemHandler serves the status strip in the terminal footer.
type SystemHandler struct {
	backend   HealthChecker
	feed      FeedStatus
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new system status handler
func NewSystemHandler(backend HealthChecker, feed FeedStatus, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		backend:   backend,
		feed:      feed,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// systemStatus is the status strip payload.
type systemStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	BackendUp     bool    `json:"backend_up"`
	FeedConnected bool    `json:"feed_connected"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// HandleStatus returns uptime, backend reachability, feed state and host load.
// GET /api/system/status
func (h *SystemHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := systemStatus{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		BackendUp:     h.backend.Health(r.Context()),
		FeedConnected: h.feed.Connected(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryPercent = vm.UsedPercent
	}

	if !status.BackendUp {
		status.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode status response")
	}
}
