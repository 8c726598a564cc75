package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run collects the metrics of a single dump or upload and pushes them when it
// finishes. A run without a push URL records nothing.
type Run struct {
	cfg     Config
	reg     *prometheus.Registry
	metrics *Metrics
}

// NewRun creates the collectors for one command run.
func NewRun(cfg Config) (*Run, error) {
	r := &Run{cfg: cfg}
	if !cfg.Enabled() {
		return r, nil
	}
	r.reg = prometheus.NewRegistry()
	m, err := New(r.reg)
	if err != nil {
		return nil, err
	}
	r.metrics = m
	return r, nil
}

// Metrics returns the run's collectors, nil when pushing is disabled.
func (r *Run) Metrics() *Metrics {
	return r.metrics
}

// Push replaces the Pushgateway group operation/database with this run's
// metrics. It still pushes after ctx is cancelled so interrupted runs report.
func (r *Run) Push(ctx context.Context, operation, database string) error {
	if r.reg == nil {
		return nil
	}
	timeout := r.cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(timeout)*time.Second)
	defer cancel()

	err := push.New(r.cfg.PushURL, r.cfg.Job).
		Gatherer(r.reg).
		Grouping("operation", operation).
		Grouping("database", database).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", r.cfg.PushURL, err)
	}
	return nil
}
