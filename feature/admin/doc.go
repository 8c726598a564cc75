// Package admin holds the database housekeeping operations that sit beside
// dump and upload: connection testing, container status, and database
// listing and deletion.
//
// Deletion is never implicit. DeleteDatabase needs an explicit name and asks
// twice when the database still holds containers; listing is a separate call.
package admin
