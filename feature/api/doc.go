// Package api exposes read-only store operations over HTTP.
//
// # Routes
//
//	GET /health             liveness, no store access
//	GET /containers         container status snapshot (cached, ?refresh=true bypasses)
//	GET /export?containers= envelope of the selected containers (default all)
//	GET /metrics            Prometheus exposition of the private registry
//
// Uploads and database deletion stay on the command line: they need an
// operator to confirm.
package api
