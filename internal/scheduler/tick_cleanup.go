package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/marketdata"
)

// TickCleanupSpec is the cron schedule for the tick-cache cleanup.
const TickCleanupSpec = "@every 10m"

// TickCache is the pruning surface of the market-data feed.
type TickCache interface {
	Prune(maxAge time.Duration) int
}

// TickCleanupJob drops stale entries from the feed's tick cache so a
// symbol that stopped streaming does not keep serving an old price.
type TickCleanupJob struct {
	cache TickCache
	log   zerolog.Logger
}

// NewTickCleanupJob creates the tick cleanup job
func NewTickCleanupJob(cache TickCache, log zerolog.Logger) *TickCleanupJob {
	return &TickCleanupJob{
		cache: cache,
		log:   log.With().Str("job", "tick_cleanup").Logger(),
	}
}

// Name implements Job.
func (j *TickCleanupJob) Name() string { return "tick_cleanup" }

// Run implements Job.
func (j *TickCleanupJob) Run() {
	pruned := j.cache.Prune(marketdata.TickStaleThreshold)
	if pruned > 0 {
		j.log.Info().Int("pruned", pruned).Msg("Pruned stale ticks")
	}
}
