// Package telemetry defines the shared in-memory representation of a
// telemetry sample used by both the notifier and the dashboard. A Sample is a
// set of named scalar readings observed at one point in time, as returned by
// a single poll of the feed.
package telemetry
