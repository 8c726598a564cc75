package reconcile

import (
	"context"
	"fmt"

	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/metrics"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Attempt is one rung of the creation ladder.
type Attempt struct {
	Strategy Strategy
	Schema   envelope.PartitionKeySchema
}

// Ladder returns the creation attempts for a record's schema, in order.
func Ladder(schema *envelope.PartitionKeySchema) []Attempt {
	if !schema.HasPaths() {
		return []Attempt{{Strategy: StrategyID, Schema: envelope.PartitionKeySchema{Paths: []string{IDPath}}}}
	}
	own := envelope.PartitionKeySchema{
		Paths:   append([]string(nil), schema.Paths...),
		Version: schema.Version,
	}
	return []Attempt{
		{Strategy: StrategySchema, Schema: own},
		{Strategy: StrategyFallbackPK, Schema: envelope.PartitionKeySchema{Paths: []string{FallbackPKPath}}},
	}
}

// Reconciler creates missing containers.
type Reconciler struct {
	client  docstore.Client
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewReconciler creates a reconciler; m may be nil.
func NewReconciler(client docstore.Client, log *zap.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{client: client, log: log, metrics: m}
}

// EnsureContainer walks the ladder for name until a create succeeds. A create
// that reports the container already exists counts as ready. When every rung
// fails the returned error lists each attempt's cause.
func (r *Reconciler) EnsureContainer(ctx context.Context, name string, schema *envelope.PartitionKeySchema) (Strategy, error) {
	var errs *multierror.Error

	for _, attempt := range Ladder(schema) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		r.log.Info("Creating container",
			zap.String("container", name),
			zap.Strings("partition_key", attempt.Schema.Paths),
			zap.String("strategy", string(attempt.Strategy)),
		)

		err := r.client.CreateContainer(ctx, name, attempt.Schema)
		if err == nil {
			r.metrics.ContainerCreated(string(attempt.Strategy))
			if attempt.Strategy == StrategyFallbackPK {
				r.log.Warn("Container created with fallback partition key; documents must carry a 'pk' field",
					zap.String("container", name),
					zap.String("partition_key", FallbackPKPath),
				)
			}
			return attempt.Strategy, nil
		}
		if docstore.IsConflict(err) {
			r.log.Warn("Container already exists", zap.String("container", name))
			return StrategyExisting, nil
		}

		errs = multierror.Append(errs, fmt.Errorf("partition key %v: %w", attempt.Schema.Paths, err))
		r.log.Warn("Failed to create container",
			zap.String("container", name),
			zap.Strings("partition_key", attempt.Schema.Paths),
			zap.Error(err),
		)
	}

	return "", fmt.Errorf("cannot create container %s: %w", name, errs.ErrorOrNil())
}
