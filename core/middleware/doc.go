// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - RequestID: tags every request with a UUID, stored in the "requestid"
//     local and echoed in the X-Request-ID header.
//   - AccessLog: logs each request through zap with its request id.
//   - Auth: API key validation on the X-API-Key header.
//
// RequestID must be registered first so the other two can see the id.
package middleware
