package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/events"
	"github.com/quantdesk/terminal/internal/modules/orders"
)

// registryRefreshTimeout bounds one refresh attempt.
const registryRefreshTimeout = time.Minute

// RegistryRefreshSpec is the cron schedule for the registry refresh.
const RegistryRefreshSpec = "@hourly"

// RegistryRefreshJob re-fetches the order-type registry so a backend that
// was down at boot heals without a restart.
type RegistryRefreshJob struct {
	registry *orders.Registry
	bus      *events.Bus
	log      zerolog.Logger
}

// NewRegistryRefreshJob creates the registry refresh job
func NewRegistryRefreshJob(registry *orders.Registry, bus *events.Bus, log zerolog.Logger) *RegistryRefreshJob {
	return &RegistryRefreshJob{
		registry: registry,
		bus:      bus,
		log:      log.With().Str("job", "registry_refresh").Logger(),
	}
}

// Name implements Job.
func (j *RegistryRefreshJob) Name() string { return "registry_refresh" }

// Run implements Job.
func (j *RegistryRefreshJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), registryRefreshTimeout)
	defer cancel()

	if err := j.registry.Load(ctx); err != nil {
		j.log.Warn().Err(err).Msg("Registry refresh failed")
		return
	}

	count := j.registry.Len()
	j.log.Info().Int("order_types", count).Msg("Registry refreshed")

	if j.bus != nil {
		j.bus.Emit(events.RegistryRefreshed, "scheduler", map[string]interface{}{
			"order_types": count,
		})
	}
}
