package batch

import (
	"context"
	"fmt"

	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/metrics"

	"go.uber.org/zap"
)

// DefaultBatchSize is the progress cadence when none is configured.
const DefaultBatchSize = 100

// Mode selects the write call used for each document.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpsert Mode = "upsert"
)

// ItemError describes one document the store rejected.
type ItemError struct {
	// Index is the document's position in the input slice.
	Index int
	// ID is the document id, empty when the document had none.
	ID  string
	Err error
}

func (e *ItemError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("item %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("item %s: %v", e.ID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Result is the outcome of writing one container's documents.
type Result struct {
	Container string
	Mode      Mode
	// Written holds the stored documents as echoed by the store.
	Written  []envelope.Document
	Failures []ItemError
}

// Attempted is the number of documents the writer tried.
func (r *Result) Attempted() int { return len(r.Written) + len(r.Failures) }

// ProgressFunc is called after every batch-size documents and once at the end.
type ProgressFunc func(container string, done, total int)

// Writer performs per-item writes against a docstore.Client.
type Writer struct {
	client    docstore.Client
	log       *zap.Logger
	mode      Mode
	batchSize int
	metrics   *metrics.Metrics
	progress  ProgressFunc
}

// Option configures a Writer.
type Option func(*Writer)

// WithUpsert switches between upsert and create.
func WithUpsert(upsert bool) Option {
	return func(w *Writer) {
		if upsert {
			w.mode = ModeUpsert
		} else {
			w.mode = ModeCreate
		}
	}
}

// WithBatchSize sets the progress cadence. Values below one are ignored.
func WithBatchSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

func WithProgress(fn ProgressFunc) Option {
	return func(w *Writer) { w.progress = fn }
}

// New creates a writer in create mode with the default batch size.
func New(client docstore.Client, log *zap.Logger, opts ...Option) *Writer {
	w := &Writer{
		client:    client,
		log:       log,
		mode:      ModeCreate,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Mode reports the write mode in use.
func (w *Writer) Mode() Mode { return w.mode }

// Write stores docs into container in input order. The only error returned is
// the context's; the partial result is returned alongside it.
func (w *Writer) Write(ctx context.Context, container string, docs []envelope.Document) (*Result, error) {
	res := &Result{
		Container: container,
		Mode:      w.mode,
		Written:   make([]envelope.Document, 0, len(docs)),
	}
	total := len(docs)

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		stored, err := w.writeOne(ctx, container, doc)
		if err != nil {
			id, _ := docstore.DocumentID(doc)
			res.Failures = append(res.Failures, ItemError{Index: i, ID: id, Err: err})
			w.metrics.ItemFailed(container, string(w.mode))
			w.log.Warn("Failed to write item",
				zap.String("container", container),
				zap.String("id", id),
				zap.Int("index", i),
				zap.Error(err),
			)
		} else {
			res.Written = append(res.Written, stored)
			w.metrics.ItemWritten(container, string(w.mode))
		}

		done := i + 1
		if done%w.batchSize == 0 && done < total {
			w.report(container, done, total)
		}
	}

	w.report(container, total, total)
	return res, nil
}

func (w *Writer) writeOne(ctx context.Context, container string, doc envelope.Document) (envelope.Document, error) {
	if w.mode == ModeUpsert {
		return w.client.UpsertItem(ctx, container, doc)
	}
	return w.client.CreateItem(ctx, container, doc)
}

func (w *Writer) report(container string, done, total int) {
	w.log.Info("Write progress",
		zap.String("container", container),
		zap.Int("processed", done),
		zap.Int("total", total),
	)
	if w.progress != nil {
		w.progress(container, done, total)
	}
}
