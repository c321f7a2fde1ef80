// Package api implements the dashboard REST endpoints under /api/v1/: feed
// health, the latest reading, chart series with summaries, recent alerts, and
// the configured rule table. The WebSocket hub reuses the same response
// builders so streamed and polled clients see identical JSON.
package api
