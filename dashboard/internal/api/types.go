package api

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/code-nisarg/SunKalp/dashboard/internal/history"
	"github.com/code-nisarg/SunKalp/pkg/alert"
)

// HealthResponse is the GET /api/v1/health body.
type HealthResponse struct {
	// State is "ok", "stale" (no fresh sample within two poll intervals),
	// or "no_data" (nothing received since startup).
	State string `json:"state"`

	SampleCount    int     `json:"sample_count"`
	SampleAgeSecs  float64 `json:"sample_age_secs,omitempty"`
	LastSampleAt   string  `json:"last_sample_at,omitempty"`
	RuleCount      int     `json:"rule_count"`
	AlertsRetained int     `json:"alerts_retained"`
}

// LatestResponse is the GET /api/v1/latest body and the payload of the
// WebSocket "sample" event.
type LatestResponse struct {
	At     string             `json:"at"`
	Values map[string]float64 `json:"values"`
}

// SeriesPoint is one charted observation.
type SeriesPoint struct {
	At     string             `json:"at"`
	Values map[string]float64 `json:"values"`
}

// MetricSummary aggregates one metric over the requested window.
type MetricSummary struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// SeriesResponse is the GET /api/v1/series body.
type SeriesResponse struct {
	Window  string                   `json:"window"`
	Points  []SeriesPoint            `json:"points"`
	Summary map[string]MetricSummary `json:"summary"`
}

// RuleResponse is one entry of the GET /api/v1/rules body.
type RuleResponse struct {
	Metric    string  `json:"metric"`
	Limit     float64 `json:"limit"`
	Direction string  `json:"direction"`
	Cooldown  string  `json:"cooldown"`
	ZeroGuard bool    `json:"zero_guard"`
	Unit      string  `json:"unit,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// BuildLatest maps the store's newest sample to its JSON representation.
// Returns nil if the store is empty.
func BuildLatest(st *history.Store) *LatestResponse {
	sample := st.Latest()
	if sample == nil {
		return nil
	}
	values := make(map[string]float64, len(sample.Values))
	for k, v := range sample.Values {
		values[k] = v
	}
	return &LatestResponse{
		At:     sample.At.UTC().Format(time.RFC3339),
		Values: values,
	}
}

// BuildSeries maps the samples within the window before now to chart points
// plus per-metric min/mean/max summaries.
func BuildSeries(st *history.Store, now time.Time, window time.Duration) SeriesResponse {
	samples := st.Recent(now, window)

	points := make([]SeriesPoint, 0, len(samples))
	byMetric := make(map[string][]float64)
	for _, s := range samples {
		values := make(map[string]float64, len(s.Values))
		for k, v := range s.Values {
			values[k] = v
			byMetric[k] = append(byMetric[k], v)
		}
		points = append(points, SeriesPoint{
			At:     s.At.UTC().Format(time.RFC3339),
			Values: values,
		})
	}

	summary := make(map[string]MetricSummary, len(byMetric))
	for metric, vals := range byMetric {
		min, _ := stats.Min(vals)
		mean, _ := stats.Mean(vals)
		max, _ := stats.Max(vals)
		summary[metric] = MetricSummary{Min: min, Mean: mean, Max: max}
	}

	return SeriesResponse{
		Window:  window.String(),
		Points:  points,
		Summary: summary,
	}
}

// BuildRules maps the rule table to its JSON representation, sorted by
// metric for stable output.
func BuildRules(rules []alert.Rule) []RuleResponse {
	out := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleResponse{
			Metric:    r.Metric,
			Limit:     r.Limit,
			Direction: string(r.Direction),
			Cooldown:  r.EffectiveCooldown().String(),
			ZeroGuard: r.ZeroGuard,
			Unit:      r.Unit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}
