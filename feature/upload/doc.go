// Package upload replays an envelope into a live database.
//
// An upload selects records from the envelope, lists the target database
// (optionally creating it), plans which containers exist and which must be
// created, then processes containers one at a time: missing containers go
// through the partition key ladder, and documents are written item by item.
//
// Dry runs stop after the plan and report what a real run would attempt.
// Nothing is created and nothing is written.
//
// The confirmation oracle gates database creation, the upload itself, and
// each container creation. With Force set every question is answered yes.
package upload
