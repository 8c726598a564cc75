// Package cosmos implements docstore.Client and docstore.Admin against Azure
// Cosmos DB using the azcosmos SDK.
//
// Queries run cross-partition. Item writes resolve the target container's
// partition key paths once, cache them, and build the SDK partition key from
// the document's values at those paths. HTTP 404 and 409 responses are mapped
// to docstore.ErrNotFound and docstore.ErrConflict.
package cosmos
