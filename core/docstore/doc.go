// Package docstore defines the document-store operations the export and
// upload engines depend on.
//
// A Client is scoped to one database and exposes container listing, container
// properties, container creation, item counting and streaming, and per-item
// create/upsert writes. Admin covers the account-level calls used by the
// test, status and delete-db commands.
//
// Two implementations exist:
//
//   - core/docstore/cosmos talks to Azure Cosmos DB through azcosmos.
//   - core/docstore/sqlstore keeps databases, containers and documents in SQL
//     tables through gorm, for isolated local runs and tests.
//
// Backends translate missing resources to ErrNotFound and duplicate creates
// to ErrConflict; callers classify with errors.Is or IsNotFound.
package docstore
