// Package auth provides API key authentication middleware for the dashboard
// REST API and WebSocket stream.
package auth
