// Package server holds the shared state of a running calassist process and
// its auxiliary HTTP surface.
//
// ServerContext carries the calendar session, metrics recorder and audit
// logger that the MCP tools and the assistant loop use.
//
// MetricsServer exposes Prometheus metrics on a dedicated port together with
// the liveness and readiness endpoints of HealthChecker:
//
//	/metrics   Prometheus scrape endpoint
//	/healthz   liveness
//	/readyz    readiness (calendar configured, not shutting down)
package server
