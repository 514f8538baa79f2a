package orders

import (
	"context"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// PlatformTypeLoader adapts the platform client to the TypeLoader interface.
type PlatformTypeLoader struct {
	client *platform.Client
}

// NewPlatformTypeLoader creates a loader backed by the platform client.
func NewPlatformTypeLoader(client *platform.Client) *PlatformTypeLoader {
	return &PlatformTypeLoader{client: client}
}

// LoadOrderTypes fetches descriptors from the backend registry endpoint.
func (l *PlatformTypeLoader) LoadOrderTypes(ctx context.Context) ([]Descriptor, error) {
	types, err := l.client.LoadOrderTypes(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, len(types))
	for i, t := range types {
		descriptors[i] = Descriptor{
			Type:        t.Type,
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
			UseCase:     t.UseCase,
		}
	}
	return descriptors, nil
}
