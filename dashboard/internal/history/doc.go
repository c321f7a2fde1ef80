// Package history keeps the rolling in-memory window of telemetry samples the
// dashboard charts are drawn from. A background goroutine evicts samples
// older than the configured window.
package history
