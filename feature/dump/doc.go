// Package dump exports containers into an envelope.
//
// The selection is either "all" containers the catalog lists or an explicit
// comma-separated list; explicitly named containers the catalog lacks abort
// the export before any container is read. Each container's partition key
// definition, item count and documents are read in turn, with store
// bookkeeping fields stripped. A container that fails is logged and skipped.
// The export fails only when no container could be read.
//
// Nothing is written until every container has been processed, so a failed
// run never leaves a partial file behind.
package dump
