// Package alert implements the threshold-crossing notification policy shared
// by the notifier service and the dashboard. Given a telemetry sample and the
// per-metric last-fire state, the Evaluator decides which configured rules
// have been breached and are outside their cooldown window. The Evaluator is
// a pure function over in-memory state: it performs no I/O and cannot fail.
// Delivery of fired alerts (SMS, webhook, WebSocket) belongs to the caller.
package alert
