package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/robfig/cron/v3"

	"github.com/code-nisarg/SunKalp/pkg/telemetry"
)

// Sender delivers a rendered digest message. Satisfied by
// notify.Dispatcher.DispatchMessage.
type Sender interface {
	DispatchMessage(ctx context.Context, message string)
}

// Reporter accumulates samples between reports and renders the daily summary.
//
// Reporter is safe for concurrent use: the poll loop records samples while
// the cron goroutine sends the report.
type Reporter struct {
	sender Sender

	mu         sync.Mutex
	values     map[string][]float64 // metric -> readings since last report
	alertCount int
	since      time.Time

	cron *cron.Cron
}

// NewReporter creates a Reporter delivering through sender.
func NewReporter(sender Sender) *Reporter {
	return &Reporter{
		sender: sender,
		values: make(map[string][]float64),
		since:  time.Now(),
	}
}

// Record adds one sample's readings to the current reporting window.
func (r *Reporter) Record(sample *telemetry.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for metric, v := range sample.Values {
		r.values[metric] = append(r.values[metric], v)
	}
}

// RecordAlerts counts fired alerts for the current reporting window.
func (r *Reporter) RecordAlerts(n int) {
	if n == 0 {
		return
	}
	r.mu.Lock()
	r.alertCount += n
	r.mu.Unlock()
}

// Start schedules the report at the given cron expression (five-field, e.g.
// "0 8 * * *"). It returns an error if the expression does not parse. The
// job runs until Stop is called.
func (r *Reporter) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		r.Send(ctx)
	})
	if err != nil {
		return fmt.Errorf("digest: bad schedule %q: %w", schedule, err)
	}
	c.Start()
	r.cron = c
	slog.Info("digest: scheduled", "schedule", schedule)
	return nil
}

// Stop cancels the scheduled report.
func (r *Reporter) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// Send renders the summary for the window so far, delivers it, and resets the
// window. A window with no samples sends nothing.
func (r *Reporter) Send(ctx context.Context) {
	msg, ok := r.flush()
	if !ok {
		slog.Info("digest: no samples in window — skipping report")
		return
	}
	r.sender.DispatchMessage(ctx, msg)
	slog.Info("digest: report sent")
}

// flush renders and clears the current window. Returns false if the window
// held no samples.
func (r *Reporter) flush() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.values) == 0 {
		r.since = time.Now()
		r.alertCount = 0
		return "", false
	}

	metrics := make([]string, 0, len(r.values))
	for m := range r.values {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	var b strings.Builder
	fmt.Fprintf(&b, "SunKalp daily report (since %s):", r.since.Format("Jan 2 15:04"))
	for _, m := range metrics {
		vals := r.values[m]
		min, _ := stats.Min(vals)
		mean, _ := stats.Mean(vals)
		max, _ := stats.Max(vals)
		unit := telemetry.UnitFor(m)
		fmt.Fprintf(&b, "\n%s: min %.1f%s, avg %.1f%s, max %.1f%s",
			m, min, unit, mean, unit, max, unit)
	}
	fmt.Fprintf(&b, "\nalerts fired: %d", r.alertCount)

	r.values = make(map[string][]float64)
	r.alertCount = 0
	r.since = time.Now()
	return b.String(), true
}
