package docstore

import (
	"context"
	"fmt"

	"cosmos-isolation/core/envelope"
)

// Catalog answers which containers exist and how they are partitioned.
// Store errors are returned to the caller untouched apart from wrapping.
type Catalog struct {
	client Client
}

// NewCatalog creates a catalog over client.
func NewCatalog(client Client) *Catalog {
	return &Catalog{client: client}
}

// ListContainers enumerates container names; an empty database yields an empty slice.
func (c *Catalog) ListContainers(ctx context.Context) ([]string, error) {
	names, err := c.client.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers in %s: %w", c.client.Database(), err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// PartitionKey returns the container's declared partition key, or nil if none.
func (c *Catalog) PartitionKey(ctx context.Context, container string) (*envelope.PartitionKeySchema, error) {
	props, err := c.client.GetContainer(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("failed to read container %s: %w", container, err)
	}
	if props == nil || !props.PartitionKey.HasPaths() {
		return nil, nil
	}
	return props.PartitionKey, nil
}

// NameSet turns a name list into a lookup set.
func NameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
