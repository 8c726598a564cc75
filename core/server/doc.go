// Package server holds the HTTP server configuration.
//
// The serve command owns the Fiber application; this package only defines
// the settings it reads: listen port, API key, and how long the container
// status snapshot is cached.
package server
