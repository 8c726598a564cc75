// Package metrics holds the Prometheus collectors updated by the dump and
// upload engines. A nil *Metrics is valid and records nothing, so engines
// can run without a registry.
//
// The serve command exposes its registry on /metrics. Command runs are
// short-lived, so dump and upload push theirs to a Pushgateway through Run
// when METRICS_PUSH_URL is set.
package metrics
