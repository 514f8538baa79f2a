package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/terminal/internal/events"
	"github.com/quantdesk/terminal/internal/modules/orders"
)

type countingJob struct {
	mu    sync.Mutex
	count int
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() {
	j.mu.Lock()
	j.count++
	j.mu.Unlock()
}

func (j *countingJob) calls() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

func TestSchedulerRunsRegisteredJob(t *testing.T) {
	scheduler := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, scheduler.Register("@every 100ms", job))
	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for job.calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	assert.Greater(t, job.calls(), 0)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	scheduler := New(zerolog.Nop())
	assert.Error(t, scheduler.Register("not a spec", &countingJob{}))
}

type staticLoader struct {
	descriptors []orders.Descriptor
}

func (l *staticLoader) LoadOrderTypes(ctx context.Context) ([]orders.Descriptor, error) {
	return l.descriptors, nil
}

func TestRegistryRefreshJobEmitsEvent(t *testing.T) {
	loader := &staticLoader{descriptors: []orders.Descriptor{{Type: orders.TypeStopLoss, Name: "Stop Loss"}}}
	registry := orders.NewRegistry(loader, nil, zerolog.Nop())

	bus := events.NewBus(zerolog.Nop())
	_, ch := bus.Subscribe()

	job := NewRegistryRefreshJob(registry, bus, zerolog.Nop())
	job.Run()

	assert.Equal(t, 1, registry.Len())

	select {
	case event := <-ch:
		assert.Equal(t, events.RegistryRefreshed, event.Type)
	case <-time.After(time.Second):
		t.Fatal("no registry event received")
	}
}

type staticCache struct {
	pruned int
	maxAge time.Duration
}

func (c *staticCache) Prune(maxAge time.Duration) int {
	c.maxAge = maxAge
	return c.pruned
}

func TestTickCleanupJobUsesStaleThreshold(t *testing.T) {
	cache := &staticCache{pruned: 3}
	job := NewTickCleanupJob(cache, zerolog.Nop())

	job.Run()

	assert.Equal(t, 5*time.Minute, cache.maxAge)
}
