// Package ws implements the WebSocket hub that streams telemetry samples and
// fired alerts to connected dashboard clients. The poll loop pushes a new
// envelope after every cycle; clients get a history backfill on connect so
// charts render immediately.
package ws
