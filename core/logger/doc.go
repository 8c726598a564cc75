// Package logger provides a structured logging facility based on Zap.
//
// The export and upload engines report through a plain *zap.Logger: Info,
// Warn and Error map directly, and Success marks a finished unit of work with
// an outcome=success field so it can be filtered in json output.
//
// # Correlation
//
// WithRunID tags every entry of one CLI invocation with a run_id. For the HTTP
// API, WithRequestID copies the id assigned by the Fiber requestid middleware.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log = logger.WithRunID(log)
//	logger.Success(log, "container exported", zap.String("container", "users"))
package logger
