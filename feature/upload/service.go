package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosmos-isolation/core/batch"
	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/logger"
	"cosmos-isolation/core/metrics"
	"cosmos-isolation/core/reconcile"
	"cosmos-isolation/core/storage"

	"go.uber.org/zap"
)

// ErrSkipped marks a container whose creation the operator declined.
var ErrSkipped = errors.New("container creation declined")

// Options controls an upload.
type Options struct {
	// Containers is an optional comma-separated filter over envelope records.
	Containers string
	// BatchSize only sets how often write progress is reported.
	BatchSize int
	// Upsert replaces existing documents instead of failing on them.
	Upsert bool
	// DryRun plans without creating or writing anything.
	DryRun bool
	// Force answers every confirmation with yes.
	Force bool
	// CreateContainers permits creating containers missing from the database.
	CreateContainers bool
	// CreateDatabase permits creating the database when it does not exist.
	CreateDatabase bool
}

// Result is a finished upload.
type Result struct {
	Database string
	Plan     *reconcile.Plan
	// Report is nil for dry runs.
	Report *reconcile.Report
	DryRun bool
}

// Message is the one-line outcome shown to the operator.
func (r *Result) Message() string {
	if r.DryRun {
		return fmt.Sprintf("Dry run completed. Would upload %d items to %d containers",
			r.Plan.Summary.TotalItems, r.Plan.Summary.Containers)
	}
	s := r.Report.Summary()
	switch r.Report.Outcome() {
	case reconcile.OutcomeFailed:
		return "No containers were successfully processed"
	case reconcile.OutcomeDegraded:
		return fmt.Sprintf("Upload completed with warnings. %d containers failed", s.Failed)
	default:
		return fmt.Sprintf("All containers processed successfully. Uploaded %d items", s.Uploaded)
	}
}

// Service uploads envelopes into one database.
type Service struct {
	client  docstore.Client
	admin   docstore.Admin
	oracle  confirm.Oracle
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates an upload service. admin is needed only to create a
// missing database and may be nil; m may be nil.
func NewService(client docstore.Client, admin docstore.Admin, oracle confirm.Oracle, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		client:  client,
		admin:   admin,
		oracle:  oracle,
		logger:  logger,
		metrics: m,
	}
}

// UploadFrom reads the envelope at loc and uploads it.
func (s *Service) UploadFrom(ctx context.Context, loc envelope.Location, store storage.Client, opts Options) (*Result, error) {
	env, shape, err := envelope.Read(ctx, loc, store)
	if err != nil {
		return nil, err
	}
	if shape == envelope.ShapeLegacy {
		s.logger.Warn("Detected legacy single-container format, converted to multi-container format",
			zap.String("container", env.Containers[0].Name),
			zap.Int("items", len(env.Containers[0].Items)),
		)
	} else {
		s.logger.Info("Found multi-container dump file",
			zap.String("input", loc.String()),
			zap.String("database", env.Database),
			zap.Int("containers", len(env.Containers)),
			zap.Int("total_items", env.TotalItems),
		)
	}
	return s.Upload(ctx, env, opts)
}

// Upload replays env into the service's database. The returned error is nil
// for full and degraded success, confirm.ErrCancelled when the operator
// declines, and the aggregate failure when no container succeeded. The result
// is returned whenever the run got as far as processing containers.
func (s *Service) Upload(ctx context.Context, env *envelope.Envelope, opts Options) (*Result, error) {
	oracle := confirm.Forced(opts.Force, s.oracle)

	records, err := envelope.Select(env, opts.Containers)
	if err != nil {
		var missing *envelope.MissingContainersError
		if errors.As(err, &missing) {
			s.logger.Error("Specified containers not found in envelope",
				zap.Strings("missing", missing.Missing),
				zap.Strings("available", missing.Available),
			)
		}
		return nil, err
	}

	existing, err := s.existingContainers(ctx, opts, oracle)
	if err != nil {
		return nil, err
	}

	plan := reconcile.BuildPlan(records, existing)
	s.logPlan(plan, opts)

	res := &Result{Database: s.client.Database(), Plan: plan, DryRun: opts.DryRun}
	if opts.DryRun {
		logger.Success(s.logger, res.Message())
		return res, nil
	}

	if err := confirm.Require(oracle, "Do you want to proceed with the upload?"); err != nil {
		s.logger.Warn("Upload cancelled")
		return nil, err
	}

	writer := batch.New(s.client, s.logger,
		batch.WithUpsert(opts.Upsert),
		batch.WithBatchSize(opts.BatchSize),
		batch.WithMetrics(s.metrics),
	)
	reconciler := reconcile.NewReconciler(s.client, s.logger, s.metrics)
	res.Report = reconcile.NewReport()

	for i, cp := range plan.Containers {
		start := time.Now()
		cr, err := s.processContainer(ctx, cp, records[i], opts, oracle, reconciler, writer)
		s.metrics.ObserveContainer("upload", start)
		res.Report.Add(cr)
		if err != nil {
			return res, err
		}
		if cr.State == reconcile.StateFailed {
			s.metrics.ContainerFailed()
		}
	}

	s.logResults(res)
	return res, res.Report.Err()
}

// existingContainers lists the database, creating it when permitted. A dry
// run never creates and treats a missing database as empty.
func (s *Service) existingContainers(ctx context.Context, opts Options, oracle confirm.Oracle) ([]string, error) {
	catalog := docstore.NewCatalog(s.client)
	existing, err := catalog.ListContainers(ctx)
	if err == nil {
		return existing, nil
	}
	if !docstore.IsNotFound(err) {
		return nil, err
	}

	db := s.client.Database()
	s.logger.Warn("Database does not exist or is not accessible", zap.String("database", db))

	if opts.DryRun {
		return []string{}, nil
	}
	if !opts.CreateDatabase {
		return nil, fmt.Errorf("database %s not found; use --create-database to create it: %w", db, err)
	}
	if s.admin == nil {
		return nil, fmt.Errorf("database %s not found and this store cannot create databases: %w", db, err)
	}
	if err := confirm.Require(oracle, fmt.Sprintf("Do you want to create database '%s' first?", db)); err != nil {
		s.logger.Warn("Database creation cancelled. Cannot proceed without database.")
		return nil, err
	}
	if err := s.admin.CreateDatabase(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create database %s: %w", db, err)
	}
	logger.Success(s.logger, "Database created", zap.String("database", db))
	return []string{}, nil
}

// processContainer runs one container through the state machine. Only a
// cancelled context is returned as an error; everything else is recorded on
// the result.
func (s *Service) processContainer(
	ctx context.Context,
	cp reconcile.ContainerPlan,
	rec envelope.ContainerRecord,
	opts Options,
	oracle confirm.Oracle,
	reconciler *reconcile.Reconciler,
	writer *batch.Writer,
) (*reconcile.ContainerResult, error) {
	cr := reconcile.NewResult(cp.Name)
	l := s.logger.With(zap.String("container", cp.Name))
	l.Info("Processing container")

	if err := ctx.Err(); err != nil {
		cr.Fail(err)
		return cr, err
	}

	if cp.Exists {
		cr.Strategy = reconcile.StrategyExisting
		_ = cr.Advance(reconcile.StateReady)
	} else {
		if !opts.CreateContainers {
			l.Error("Container not found. Use --create-containers to create missing containers.")
			cr.Fail(fmt.Errorf("container %s: %w", cp.Name, docstore.ErrNotFound))
			return cr, nil
		}
		_ = cr.Advance(reconcile.StateCreating)

		if !oracle.Confirm(fmt.Sprintf("Do you want to create container '%s'?", cp.Name)) {
			l.Warn("Skipping container")
			cr.Fail(ErrSkipped)
			return cr, nil
		}
		strategy, err := reconciler.EnsureContainer(ctx, cp.Name, rec.PartitionKey)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				cr.Fail(ctxErr)
				return cr, ctxErr
			}
			l.Error("Cannot create container", zap.Error(err))
			cr.Fail(err)
			return cr, nil
		}
		cr.Strategy = strategy
		_ = cr.Advance(reconcile.StateReady)
		logger.Success(l, "Container ready", zap.String("strategy", string(strategy)))
	}

	_ = cr.Advance(reconcile.StateWriting)
	if len(rec.Items) == 0 {
		l.Warn("No items to upload")
		_ = cr.Advance(reconcile.StateSucceeded)
		return cr, nil
	}

	l.Info("Uploading items", zap.Int("items", len(rec.Items)), zap.String("mode", string(writer.Mode())))
	written, err := writer.Write(ctx, cp.Name, rec.Items)
	cr.Attempted = written.Attempted()
	cr.Uploaded = len(written.Written)
	if err != nil {
		cr.Fail(err)
		return cr, err
	}
	_ = cr.Advance(reconcile.StateSucceeded)

	if failed := cr.FailedItems(); failed > 0 {
		l.Warn("Some items were rejected", zap.Int("uploaded", cr.Uploaded), zap.Int("failed", failed))
	} else {
		logger.Success(l, "Uploaded items", zap.Int("uploaded", cr.Uploaded))
	}
	return cr, nil
}

func (s *Service) logPlan(plan *reconcile.Plan, opts Options) {
	mode := "Create"
	if opts.Upsert {
		mode = "Upsert"
	}
	s.logger.Info("Upload summary",
		zap.String("database", s.client.Database()),
		zap.Int("containers", plan.Summary.Containers),
		zap.Int("total_items", plan.Summary.TotalItems),
		zap.Int("batch_size", opts.BatchSize),
		zap.String("mode", mode),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("create_containers", opts.CreateContainers),
	)
	for _, cp := range plan.Containers {
		var paths []string
		if cp.PartitionKey.HasPaths() {
			paths = cp.PartitionKey.Paths
		}
		s.logger.Info("Container plan",
			zap.String("container", cp.Name),
			zap.Int("items", cp.Items),
			zap.Strings("partition_key", paths),
			zap.String("status", cp.Status()),
		)
	}
}

func (s *Service) logResults(res *Result) {
	summary := res.Report.Summary()
	s.logger.Info("Upload results",
		zap.Int("total_uploaded", summary.Uploaded),
		zap.Int("successful_count", summary.Succeeded),
		zap.Int("failed_count", summary.Failed),
		zap.Int("failed_items", summary.FailedItems),
	)
	if len(summary.Successful) > 0 {
		logger.Success(s.logger, "Successfully processed containers", zap.Strings("containers", summary.Successful))
	}
	if len(summary.FailedNames) > 0 {
		s.logger.Error("Failed containers", zap.Strings("containers", summary.FailedNames))
	}

	switch res.Report.Outcome() {
	case reconcile.OutcomeFailed:
		s.logger.Error(res.Message())
	case reconcile.OutcomeDegraded:
		s.logger.Warn(res.Message(), zap.Int("failed_count", summary.Failed))
	default:
		logger.Success(s.logger, res.Message())
	}
}
