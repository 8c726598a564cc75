package dump

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/logger"
	"cosmos-isolation/core/metrics"
	"cosmos-isolation/core/storage"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// DefaultBatchSize is the progress cadence when none is configured.
const DefaultBatchSize = 100

// ErrNothingExported is returned when no container could be exported.
var ErrNothingExported = errors.New("no containers were successfully processed")

// Options controls an export.
type Options struct {
	Selection Selection
	// BatchSize only sets how often read progress is logged.
	BatchSize int
}

// Result is a finished export.
type Result struct {
	Envelope *envelope.Envelope
	// Failed lists containers that were skipped, in selection order.
	Failed []string
	// Errors combines the cause of each skipped container.
	Errors error
}

// Service exports containers from one database.
type Service struct {
	client  docstore.Client
	catalog *docstore.Catalog
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a dump service; m may be nil.
func NewService(client docstore.Client, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		client:  client,
		catalog: docstore.NewCatalog(client),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Export reads the selected containers into an envelope held in memory.
func (s *Service) Export(ctx context.Context, opts Options) (*Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	available, err := s.catalog.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	names, err := opts.Selection.resolve(available)
	if err != nil {
		var missing *MissingContainersError
		if errors.As(err, &missing) {
			s.logger.Error("Containers not found",
				zap.Strings("missing", missing.Missing),
				zap.Strings("available", missing.Available),
			)
		}
		return nil, err
	}
	s.logger.Info("Exporting containers",
		zap.String("database", s.client.Database()),
		zap.Int("containers", len(names)),
		zap.String("selection", opts.Selection.String()),
	)

	env := envelope.New(s.client.Database(), s.now().UTC().Format(time.RFC3339))
	res := &Result{Envelope: env}
	var errs *multierror.Error

	for _, name := range names {
		start := time.Now()
		rec, err := s.exportContainer(ctx, name, batchSize)
		s.metrics.ObserveContainer("dump", start)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Error("Failed to export container; skipping",
				zap.String("container", name),
				zap.Error(err),
			)
			s.metrics.ContainerFailed()
			res.Failed = append(res.Failed, name)
			errs = multierror.Append(errs, fmt.Errorf("container %s: %w", name, err))
			continue
		}
		env.Add(rec)
		s.metrics.DocumentsExported(name, len(rec.Items))
		logger.Success(s.logger, "Exported container",
			zap.String("container", name),
			zap.Int("items", len(rec.Items)),
		)
	}
	res.Errors = errs.ErrorOrNil()

	if len(env.Containers) == 0 {
		if res.Errors != nil {
			return nil, fmt.Errorf("%w: %w", ErrNothingExported, res.Errors)
		}
		return nil, ErrNothingExported
	}
	if len(res.Failed) > 0 {
		s.logger.Warn("Export completed with warnings",
			zap.Int("failed_count", len(res.Failed)),
			zap.Strings("failed", res.Failed),
		)
	}
	return res, nil
}

// Dump exports and then writes the envelope to loc in one step.
func (s *Service) Dump(ctx context.Context, opts Options, loc envelope.Location, store storage.Client, pretty bool) (*Result, error) {
	res, err := s.Export(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := envelope.Write(ctx, loc, store, res.Envelope, pretty); err != nil {
		return nil, err
	}
	logger.Success(s.logger, "Export written",
		zap.String("output", loc.String()),
		zap.Int("containers", res.Envelope.TotalContainers),
		zap.Int("items", res.Envelope.TotalItems),
	)
	return res, nil
}

func (s *Service) exportContainer(ctx context.Context, name string, batchSize int) (envelope.ContainerRecord, error) {
	pk, err := s.catalog.PartitionKey(ctx, name)
	if err != nil {
		return envelope.ContainerRecord{}, err
	}
	if pk == nil {
		s.logger.Warn("No partition key found", zap.String("container", name))
	} else {
		s.logger.Info("Found partition key", zap.String("container", name), zap.Strings("paths", pk.Paths))
	}

	total, err := s.client.CountItems(ctx, name)
	if err != nil {
		return envelope.ContainerRecord{}, fmt.Errorf("failed to count items: %w", err)
	}
	if total == 0 {
		s.logger.Warn("No items found", zap.String("container", name))
	} else {
		s.logger.Info("Reading items", zap.String("container", name), zap.Int("total", total))
	}

	items := make([]envelope.Document, 0, total)
	err = s.client.QueryItems(ctx, name, func(doc envelope.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		items = append(items, envelope.StripInternal(doc))
		if n := len(items); n%batchSize == 0 {
			s.logger.Debug("Read progress", zap.String("container", name), zap.Int("read", n), zap.Int("total", total))
		}
		return nil
	})
	if err != nil {
		return envelope.ContainerRecord{}, fmt.Errorf("failed to read items: %w", err)
	}

	if len(items) > 0 {
		s.logSample(name, items[0], pk)
	}
	return envelope.NewRecord(name, pk, items), nil
}

func (s *Service) logSample(container string, doc envelope.Document, pk *envelope.PartitionKeySchema) {
	if ce := s.logger.Check(zap.DebugLevel, "Sample item structure"); ce != nil {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := []zap.Field{zap.String("container", container), zap.Strings("keys", keys)}
		if id, ok := doc["id"]; ok {
			fields = append(fields, zap.Any("id", id))
		}
		if typ, ok := doc["type"]; ok {
			fields = append(fields, zap.Any("type", typ))
		}
		if pk.HasPaths() {
			fields = append(fields, zap.Strings("partition_paths", pk.Paths))
		}
		ce.Write(fields...)
	}
}
