// Package sqlstore implements docstore.Client and docstore.Admin on top of
// three SQL tables managed by gorm:
//
//	cosmos_databases   one row per database
//	cosmos_containers  one row per container, partition key stored as JSON
//	cosmos_documents   one row per document, body stored as JSON
//
// Reads decorate documents with the same bookkeeping fields Cosmos DB adds
// (_rid, _self, _etag, _attachments, _ts), and writes strip them, so export
// filtering and replay behave as they do against the real service.
//
// Container creation enforces the Cosmos partition key rules that matter to
// the upload ladder: at least one path, every path starting with "/", and at
// most three paths.
package sqlstore
