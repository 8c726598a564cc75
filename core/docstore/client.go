package docstore

import (
	"context"
	"time"

	"cosmos-isolation/core/envelope"
)

// ContainerProperties describes a live container.
type ContainerProperties struct {
	Name string
	// PartitionKey is nil when the store reports no key paths.
	PartitionKey *envelope.PartitionKeySchema
	LastModified time.Time
	ETag         string
}

// DatabaseInfo describes a live database.
type DatabaseInfo struct {
	Name         string
	Containers   []string
	LastModified time.Time
	ETag         string
}

// Client is a document store scoped to a single database.
type Client interface {
	// Database returns the name of the database this client is bound to.
	Database() string

	// ListContainers returns container names. A missing database yields ErrNotFound.
	ListContainers(ctx context.Context) ([]string, error)

	// GetContainer reads a container's properties.
	GetContainer(ctx context.Context, name string) (*ContainerProperties, error)

	// CreateContainer creates a container with the given partition key definition.
	CreateContainer(ctx context.Context, name string, pk envelope.PartitionKeySchema) error

	// CountItems returns the number of documents in a container.
	CountItems(ctx context.Context, container string) (int, error)

	// QueryItems streams every document of a container to fn, stopping at the
	// first error fn returns. Documents include store bookkeeping fields.
	QueryItems(ctx context.Context, container string, fn func(envelope.Document) error) error

	// CreateItem inserts a document and returns the stored version.
	CreateItem(ctx context.Context, container string, doc envelope.Document) (envelope.Document, error)

	// UpsertItem inserts or replaces a document and returns the stored version.
	UpsertItem(ctx context.Context, container string, doc envelope.Document) (envelope.Document, error)
}

// Admin covers account-level database management.
type Admin interface {
	ListDatabases(ctx context.Context) ([]string, error)
	GetDatabase(ctx context.Context, name string) (*DatabaseInfo, error)
	// CreateDatabase succeeds when the database already exists.
	CreateDatabase(ctx context.Context, name string) error
	DeleteDatabase(ctx context.Context, name string) error
}
