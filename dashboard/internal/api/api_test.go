package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/code-nisarg/SunKalp/dashboard/internal/history"
	"github.com/code-nisarg/SunKalp/pkg/alert"
	"github.com/code-nisarg/SunKalp/pkg/telemetry"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testHandler(t *testing.T) (*Handler, *history.Store, *alert.Log) {
	t.Helper()
	st := history.New(time.Hour)
	log := alert.NewLog(50)
	rules := []alert.Rule{
		{Metric: "voltage", Limit: 250, Direction: alert.Above, Cooldown: 30 * time.Minute, Unit: "V"},
		{Metric: "battery_soc", Limit: 20, Direction: alert.Below, ZeroGuard: true, Unit: "%"},
	}
	h := New(st, log, rules, 10*time.Second)
	h.now = func() time.Time { return base.Add(5 * time.Second) }
	return h, st, log
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth_NoData(t *testing.T) {
	h, _, _ := testHandler(t)

	rec := doGet(t, h, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp HealthResponse
	decode(t, rec, &resp)
	if resp.State != "no_data" {
		t.Errorf("state: got %q, want no_data", resp.State)
	}
}

func TestHealth_OkAndStale(t *testing.T) {
	h, st, _ := testHandler(t)
	st.Append(&telemetry.Sample{At: base, Values: map[string]float64{"voltage": 230}})

	var resp HealthResponse
	decode(t, doGet(t, h, "/api/v1/health"), &resp)
	if resp.State != "ok" {
		t.Errorf("fresh sample: state %q, want ok", resp.State)
	}
	if resp.SampleCount != 1 {
		t.Errorf("sample_count: got %d, want 1", resp.SampleCount)
	}

	// Push the clock past two poll intervals.
	h.now = func() time.Time { return base.Add(time.Minute) }
	decode(t, doGet(t, h, "/api/v1/health"), &resp)
	if resp.State != "stale" {
		t.Errorf("old sample: state %q, want stale", resp.State)
	}
}

func TestLatest(t *testing.T) {
	h, st, _ := testHandler(t)

	rec := doGet(t, h, "/api/v1/latest")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty store: status %d, want 404", rec.Code)
	}

	st.Append(&telemetry.Sample{At: base, Values: map[string]float64{"voltage": 230, "current": 3.1}})
	rec = doGet(t, h, "/api/v1/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp LatestResponse
	decode(t, rec, &resp)
	if resp.Values["voltage"] != 230 || resp.Values["current"] != 3.1 {
		t.Errorf("values: got %v", resp.Values)
	}
	if resp.At != "2024-06-01T12:00:00Z" {
		t.Errorf("at: got %q", resp.At)
	}
}

func TestSeries_PointsAndSummary(t *testing.T) {
	h, st, _ := testHandler(t)
	// Outside the 10m window below; the handler's clock decides, not the
	// wall clock.
	st.Append(&telemetry.Sample{At: base.Add(-30 * time.Minute), Values: map[string]float64{"voltage": 200}})
	st.Append(&telemetry.Sample{At: base.Add(-2 * time.Minute), Values: map[string]float64{"voltage": 230}})
	st.Append(&telemetry.Sample{At: base.Add(-1 * time.Minute), Values: map[string]float64{"voltage": 250}})
	st.Append(&telemetry.Sample{At: base, Values: map[string]float64{"voltage": 240}})

	rec := doGet(t, h, "/api/v1/series?window=10m")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp SeriesResponse
	decode(t, rec, &resp)
	if len(resp.Points) != 3 {
		t.Fatalf("points: got %d, want 3", len(resp.Points))
	}
	s := resp.Summary["voltage"]
	if s.Min != 230 || s.Mean != 240 || s.Max != 250 {
		t.Errorf("summary: got %+v", s)
	}
}

func TestSeries_InvalidWindow(t *testing.T) {
	h, _, _ := testHandler(t)
	rec := doGet(t, h, "/api/v1/series?window=soon")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestAlerts_RecentOnly(t *testing.T) {
	h, _, log := testHandler(t)
	log.Add(
		alert.Fired{Metric: "voltage", Value: 254, Limit: 250, At: base.Add(-2 * time.Hour)},
		alert.Fired{Metric: "voltage", Value: 256, Limit: 250, At: base},
	)

	rec := doGet(t, h, "/api/v1/alerts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var fired []alert.Fired
	decode(t, rec, &fired)
	if len(fired) != 1 {
		t.Fatalf("alerts: got %d, want 1 (default 1h window)", len(fired))
	}
	if fired[0].Value != 256 {
		t.Errorf("alert value: got %v, want 256", fired[0].Value)
	}
}

func TestRules(t *testing.T) {
	h, _, _ := testHandler(t)

	rec := doGet(t, h, "/api/v1/rules")
	var rules []RuleResponse
	decode(t, rec, &rules)
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}
	// Sorted by metric.
	if rules[0].Metric != "battery_soc" || rules[1].Metric != "voltage" {
		t.Errorf("order: got %q, %q", rules[0].Metric, rules[1].Metric)
	}
	if !rules[0].ZeroGuard {
		t.Error("battery_soc zero_guard: got false")
	}
	if rules[1].Cooldown != "30m0s" {
		t.Errorf("voltage cooldown: got %q", rules[1].Cooldown)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := testHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rules", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
}
