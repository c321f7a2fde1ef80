// Package digest produces the daily station summary: per-metric min/mean/max
// over the samples collected since the last report, plus the alert count,
// delivered once a day on a cron schedule through the notify dispatcher.
package digest
