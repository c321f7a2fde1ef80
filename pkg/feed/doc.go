// Package feed provides clients for the telemetry feeds SunKalp can poll.
// Each client fetches the latest station reading and returns it as a
// telemetry.Sample keyed by configured metric names.
//
// Implemented feeds: ThingSpeak-style channel JSON (thingspeak.go) and
// Prometheus exposition endpoints such as a local inverter exporter
// (prometheus.go). Factory: New(Source) returns the correct Client.
//
// Authentication (API key, bearer token, basic auth) is handled by the shared
// authRoundTripper in feed.go; individual clients receive a pre-configured
// *http.Client from New().
package feed
