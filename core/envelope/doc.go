// Package envelope defines the portable export format and its codec.
//
// An envelope holds one or more container records, each with its documents
// and the partition key definition the source container declared:
//
//	{
//	  "database": "orders",
//	  "exported_at": "2025-01-02T03:04:05Z",
//	  "total_containers": 1,
//	  "total_items": 2,
//	  "containers": [
//	    {"name": "carts", "total_items": 2, "partition_key": {"paths": ["/tenantId"]}, "items": [...]}
//	  ]
//	}
//
// Parse also accepts the older single-container layout
// {"container": "carts", "items": [...]} and converts it to the layout above;
// no other code needs to know the legacy shape exists.
//
// Documents never carry the store bookkeeping fields (_rid, _self, _etag,
// _attachments, _ts). StripInternal removes them on export.
//
// Envelopes are always handled whole: Read and Write move a complete file,
// either on local disk or in object storage (s3://bucket/key).
package envelope
