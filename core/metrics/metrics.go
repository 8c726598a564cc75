package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "cosmos_isolation"

var containerDurationBuckets = prometheus.ExponentialBuckets(0.01, 2, 14) // ~10ms to 82s

// Metrics groups the engine collectors.
type Metrics struct {
	itemsWritten      *prometheus.CounterVec
	itemsFailed       *prometheus.CounterVec
	containersCreated *prometheus.CounterVec
	containersFailed  prometheus.Counter
	documentsExported *prometheus.CounterVec
	containerDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Collectors already present on reg are
// reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.itemsWritten, err = newCounterVec(reg, "items_written_total",
		"Documents written to the store", []string{"container", "mode"})
	if err != nil {
		return nil, err
	}
	m.itemsFailed, err = newCounterVec(reg, "items_failed_total",
		"Documents the store rejected", []string{"container", "mode"})
	if err != nil {
		return nil, err
	}
	m.containersCreated, err = newCounterVec(reg, "containers_created_total",
		"Containers created during upload, by partition key strategy", []string{"strategy"})
	if err != nil {
		return nil, err
	}
	m.containersFailed, err = newCounter(reg, "containers_failed_total",
		"Containers that failed during dump or upload")
	if err != nil {
		return nil, err
	}
	m.documentsExported, err = newCounterVec(reg, "documents_exported_total",
		"Documents added to export envelopes", []string{"container"})
	if err != nil {
		return nil, err
	}
	m.containerDuration, err = newHistogramVec(reg, "container_duration_seconds",
		"Time spent processing one container", []string{"operation"}, containerDurationBuckets)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NewRegistry creates a private registry with the engine collectors plus the
// Go runtime and process collectors.
func NewRegistry() (*prometheus.Registry, *Metrics, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := New(reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, m, nil
}

func newCounter(reg prometheus.Registerer, name, help string) (prometheus.Counter, error) {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
	if err := reg.Register(c); err != nil {
		var e prometheus.AlreadyRegisteredError
		if errors.As(err, &e) {
			if counter, ok := e.ExistingCollector.(prometheus.Counter); ok {
				return counter, nil
			}
			return nil, fmt.Errorf("metric %s already registered but not as a Counter", name)
		}
		return nil, err
	}
	return c, nil
}

func newCounterVec(reg prometheus.Registerer, name, help string, labels []string) (*prometheus.CounterVec, error) {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
	if err := reg.Register(c); err != nil {
		var e prometheus.AlreadyRegisteredError
		if errors.As(err, &e) {
			if vec, ok := e.ExistingCollector.(*prometheus.CounterVec); ok {
				return vec, nil
			}
			return nil, fmt.Errorf("metric %s already registered but not as a CounterVec", name)
		}
		return nil, err
	}
	return c, nil
}

func newHistogramVec(reg prometheus.Registerer, name, help string, labels []string, buckets []float64) (*prometheus.HistogramVec, error) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	if err := reg.Register(h); err != nil {
		var e prometheus.AlreadyRegisteredError
		if errors.As(err, &e) {
			if vec, ok := e.ExistingCollector.(*prometheus.HistogramVec); ok {
				return vec, nil
			}
			return nil, fmt.Errorf("metric %s already registered but not as a HistogramVec", name)
		}
		return nil, err
	}
	return h, nil
}

func (m *Metrics) ItemWritten(container, mode string) {
	if m != nil {
		m.itemsWritten.WithLabelValues(container, mode).Inc()
	}
}

func (m *Metrics) ItemFailed(container, mode string) {
	if m != nil {
		m.itemsFailed.WithLabelValues(container, mode).Inc()
	}
}

func (m *Metrics) ContainerCreated(strategy string) {
	if m != nil {
		m.containersCreated.WithLabelValues(strategy).Inc()
	}
}

func (m *Metrics) ContainerFailed() {
	if m != nil {
		m.containersFailed.Inc()
	}
}

func (m *Metrics) DocumentsExported(container string, n int) {
	if m != nil {
		m.documentsExported.WithLabelValues(container).Add(float64(n))
	}
}

// ObserveContainer records how long one container took for operation
// ("dump" or "upload") since start.
func (m *Metrics) ObserveContainer(operation string, start time.Time) {
	if m != nil {
		m.containerDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
