// Package batch writes documents into one container, one at a time.
//
// Each document is either created or upserted. A document the store rejects
// is logged, recorded as an ItemError and skipped; the remaining documents are
// still written. There is no retry and no rollback. The batch size only sets
// how often progress is reported.
//
//	w := batch.New(client, log, batch.WithUpsert(true), batch.WithBatchSize(100))
//	res, err := w.Write(ctx, "users", docs)
//	// res.Written holds the store's echo, res.Failures the rejected documents
package batch
