package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/logger"

	"go.uber.org/zap"
)

// ErrDatabaseRequired is returned when a destructive call gets no database name.
var ErrDatabaseRequired = errors.New("database name is required (--database/-d or COSMOS_DATABASE)")

// Verifier is implemented by stores that can check their own schema.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Service runs administrative operations against one store.
type Service struct {
	client docstore.Client
	admin  docstore.Admin
	oracle confirm.Oracle
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an admin service. admin may be nil when the store only
// supports database-scoped operations.
func NewService(client docstore.Client, admin docstore.Admin, oracle confirm.Oracle, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		admin:  admin,
		oracle: oracle,
		logger: logger,
		now:    time.Now,
	}
}

// Connection is the outcome of TestConnection.
type Connection struct {
	Database        string
	Containers      []string
	CreatedDatabase bool
}

// TestConnection lists the database's containers. When the database is
// missing and createDatabase is set it is created (after confirmation unless
// force) and listed again.
func (s *Service) TestConnection(ctx context.Context, createDatabase, force bool) (*Connection, error) {
	db := s.client.Database()
	s.logger.Info("Testing connection", zap.String("database", db))

	if v, ok := s.client.(Verifier); ok {
		if err := v.Verify(ctx); err != nil {
			return nil, fmt.Errorf("store verification failed: %w", err)
		}
	}

	conn := &Connection{Database: db}
	catalog := docstore.NewCatalog(s.client)

	names, err := catalog.ListContainers(ctx)
	if err != nil {
		if !docstore.IsNotFound(err) {
			return nil, err
		}
		s.logger.Warn("Database does not exist or is not accessible", zap.String("database", db))
		if !createDatabase {
			return nil, fmt.Errorf("database %s not found; use --create-database to create it: %w", db, err)
		}
		if s.admin == nil {
			return nil, fmt.Errorf("database %s not found and this store cannot create databases: %w", db, err)
		}

		oracle := confirm.Forced(force, s.oracle)
		if err := confirm.Require(oracle, fmt.Sprintf("Do you want to create database '%s'?", db)); err != nil {
			s.logger.Warn("Database creation cancelled")
			return nil, err
		}
		if err := s.admin.CreateDatabase(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", db, err)
		}
		logger.Success(s.logger, "Database created", zap.String("database", db))
		conn.CreatedDatabase = true

		if names, err = catalog.ListContainers(ctx); err != nil {
			return nil, err
		}
	}

	conn.Containers = names
	logger.Success(s.logger, "Connection successful",
		zap.String("database", db),
		zap.Int("containers", len(names)),
	)
	return conn, nil
}

// ContainerStatus is one row of a status report.
type ContainerStatus struct {
	Name string `json:"name"`
	// Items is meaningful only when CountErr is empty.
	Items        int                          `json:"items"`
	CountErr     string                       `json:"count_error,omitempty"`
	PartitionKey *envelope.PartitionKeySchema `json:"partition_key,omitempty"`
	LastModified time.Time                    `json:"last_modified"`
	ETag         string                       `json:"etag,omitempty"`
}

// Counted reports whether the item count is known.
func (c ContainerStatus) Counted() bool {
	return c.CountErr == ""
}

// StatusReport summarises a database.
type StatusReport struct {
	Database   string            `json:"database"`
	Containers []ContainerStatus `json:"containers"`
	TotalItems int               `json:"total_items"`
	// Empty and NoPartitionKey back the recommendations.
	Empty          []string  `json:"empty,omitempty"`
	NoPartitionKey []string  `json:"no_partition_key,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Recommendations returns operator hints derived from the report.
func (r *StatusReport) Recommendations() []string {
	var out []string
	if len(r.Empty) > 0 {
		out = append(out, fmt.Sprintf("%d empty containers found, consider removing them if unused", len(r.Empty)))
	}
	if len(r.NoPartitionKey) > 0 {
		out = append(out, fmt.Sprintf("%d containers have no partition key, consider adding one for better performance", len(r.NoPartitionKey)))
	}
	return out
}

// Status collects per-container statistics. A container whose properties or
// count cannot be read is reported with CountErr set and does not abort the
// report; only a failure to list containers does.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	names, err := docstore.NewCatalog(s.client).ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	report := &StatusReport{
		Database:    s.client.Database(),
		Containers:  make([]ContainerStatus, 0, len(names)),
		GeneratedAt: s.now().UTC(),
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cs := s.containerStatus(ctx, name)
		report.Containers = append(report.Containers, cs)

		if !cs.Counted() {
			continue
		}
		report.TotalItems += cs.Items
		if cs.Items == 0 {
			report.Empty = append(report.Empty, name)
		}
		if !cs.PartitionKey.HasPaths() {
			report.NoPartitionKey = append(report.NoPartitionKey, name)
		}
	}
	return report, nil
}

func (s *Service) containerStatus(ctx context.Context, name string) ContainerStatus {
	cs := ContainerStatus{Name: name}

	props, err := s.client.GetContainer(ctx, name)
	if err != nil {
		s.logger.Warn("Failed to read container properties", zap.String("container", name), zap.Error(err))
		cs.CountErr = err.Error()
		return cs
	}
	if props != nil {
		cs.PartitionKey = props.PartitionKey
		cs.LastModified = props.LastModified
		cs.ETag = props.ETag
	}

	n, err := s.client.CountItems(ctx, name)
	if err != nil {
		s.logger.Warn("Failed to count items", zap.String("container", name), zap.Error(err))
		cs.CountErr = err.Error()
		return cs
	}
	cs.Items = n
	return cs
}

// ListDatabases returns every database visible to the account.
func (s *Service) ListDatabases(ctx context.Context) ([]string, error) {
	if s.admin == nil {
		return nil, errors.New("this store cannot list databases")
	}
	names, err := s.admin.ListDatabases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteDatabase removes a database and everything in it. The operator is
// asked once, and a second time when the database still has containers,
// unless force is set. A missing database is an error.
func (s *Service) DeleteDatabase(ctx context.Context, name string, force bool) (*docstore.DatabaseInfo, error) {
	if name == "" {
		return nil, ErrDatabaseRequired
	}
	if s.admin == nil {
		return nil, errors.New("this store cannot delete databases")
	}

	info, err := s.admin.GetDatabase(ctx, name)
	if err != nil {
		if docstore.IsNotFound(err) {
			return nil, fmt.Errorf("database %s not found: %w", name, err)
		}
		return nil, err
	}

	s.logger.Warn("Database scheduled for deletion",
		zap.String("database", info.Name),
		zap.Int("containers", len(info.Containers)),
		zap.Strings("container_names", info.Containers),
	)

	oracle := confirm.Forced(force, s.oracle)
	if err := confirm.Require(oracle, fmt.Sprintf("Are you sure you want to delete database '%s'?", name)); err != nil {
		s.logger.Info("Database deletion cancelled")
		return info, err
	}
	if len(info.Containers) > 0 {
		if err := confirm.Require(oracle, "Are you absolutely sure? This will delete ALL data permanently!"); err != nil {
			s.logger.Info("Database deletion cancelled")
			return info, err
		}
	}

	if err := s.admin.DeleteDatabase(ctx, name); err != nil {
		return info, fmt.Errorf("failed to delete database %s: %w", name, err)
	}
	logger.Success(s.logger, "Database deleted", zap.String("database", name))
	return info, nil
}
