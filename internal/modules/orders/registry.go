package orders

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/pkg/logger"
)

// TypeLoader fetches order-type descriptors from the platform backend.
type TypeLoader interface {
	LoadOrderTypes(ctx context.Context) ([]Descriptor, error)
}

// DescriptorCache persists descriptors between runs so a backend outage at
// startup still yields the last known registry.
type DescriptorCache interface {
	Save(descriptors []Descriptor) error
	Load() ([]Descriptor, error)
}

// Registry holds the order-type descriptors driving the form's selector.
// Loaded once at startup and refreshed by a background job; a load failure
// is logged and leaves the registry empty, degrading the form to "no order
// type selectable" rather than blocking it.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Descriptor
	order  []string

	loader TypeLoader
	cache  DescriptorCache
	log    zerolog.Logger
}

// NewRegistry creates a new order-type registry. cache may be nil.
func NewRegistry(loader TypeLoader, cache DescriptorCache, log zerolog.Logger) *Registry {
	return &Registry{
		byType: make(map[string]Descriptor),
		loader: loader,
		cache:  cache,
		log:    logger.ForComponent(log, "order_type_registry"),
	}
}

// Load fetches descriptors from the backend. On failure it falls back to
// the persisted cache; when that is empty too the registry stays empty.
func (r *Registry) Load(ctx context.Context) error {
	descriptors, err := r.loader.LoadOrderTypes(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("Failed to load order types from backend, trying cache")
		return r.loadFromCache()
	}

	r.set(descriptors)

	if r.cache != nil {
		if err := r.cache.Save(descriptors); err != nil {
			r.log.Warn().Err(err).Msg("Failed to persist order type cache")
		}
	}

	r.log.Info().Int("count", len(descriptors)).Msg("Order type registry loaded")
	return nil
}

func (r *Registry) loadFromCache() error {
	if r.cache == nil {
		return nil
	}

	descriptors, err := r.cache.Load()
	if err != nil {
		r.log.Warn().Err(err).Msg("Failed to load order type cache")
		return nil
	}
	if len(descriptors) == 0 {
		return nil
	}

	r.set(descriptors)
	r.log.Info().Int("count", len(descriptors)).Msg("Order type registry restored from cache")
	return nil
}

func (r *Registry) set(descriptors []Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byType = make(map[string]Descriptor, len(descriptors))
	r.order = r.order[:0]
	for _, d := range descriptors {
		if _, seen := r.byType[d.Type]; seen {
			continue
		}
		r.byType[d.Type] = d
		r.order = append(r.order, d.Type)
	}
}

// Get returns the descriptor for an order type tag.
func (r *Registry) Get(orderType string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byType[orderType]
	return d, ok
}

// List returns all descriptors in the order the backend reported them.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Descriptor, 0, len(r.order))
	for _, t := range r.order {
		result = append(result, r.byType[t])
	}
	return result
}

// Len returns the number of registered order types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType)
}
