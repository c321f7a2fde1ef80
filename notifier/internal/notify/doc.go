// Package notify delivers fired alerts to the configured channels: a
// Twilio-style SMS provider and slack/generic webhooks. Delivery is
// best-effort and at-most-once — a failed send is logged and never retried,
// and the alert still counts as fired.
package notify
