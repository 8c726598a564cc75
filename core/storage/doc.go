// Package storage provides an abstraction layer for object storage services.
//
// Envelopes can live in a bucket instead of on local disk: a location of the
// form s3://bucket/key is read with GetObject and written with a single
// PutObject once an export has finished. The Client wraps the MinIO Go client,
// which speaks to both AWS S3 and self-hosted MinIO.
//
// # Client Interface
//
// The Client interface keeps only the calls the envelope code needs, which
// makes it easy to mock (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, "backups")
package storage
