package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/code-nisarg/SunKalp/dashboard/internal/history"
	"github.com/code-nisarg/SunKalp/pkg/alert"
)

// staleFactor: a sample older than this many poll intervals marks the feed
// stale.
const staleFactor = 2

// defaultAlertWindow bounds GET /api/v1/alerts when no window is given.
const defaultAlertWindow = time.Hour

// Handler is the HTTP handler for all /api/v1/* endpoints. It reads from the
// sample history and the alert log and returns JSON responses.
type Handler struct {
	store        *history.Store
	alertLog     *alert.Log
	rules        []alert.Rule
	pollInterval time.Duration
	mux          *http.ServeMux
	now          func() time.Time // injectable for deterministic tests
}

// New creates a Handler wired to the given history store and alert log and
// registers all routes.
func New(st *history.Store, log *alert.Log, rules []alert.Rule, pollInterval time.Duration) *Handler {
	h := &Handler{
		store:        st,
		alertLog:     log,
		rules:        rules,
		pollInterval: pollInterval,
		mux:          http.NewServeMux(),
		now:          time.Now,
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/latest", h.latest)
	h.mux.HandleFunc("/api/v1/series", h.series)
	h.mux.HandleFunc("/api/v1/alerts", h.alerts)
	h.mux.HandleFunc("/api/v1/rules", h.listRules)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — feed freshness and counters.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		SampleCount:    h.store.Count(),
		RuleCount:      len(h.rules),
		AlertsRetained: h.alertLog.Len(),
	}

	latest := h.store.Latest()
	if latest == nil {
		resp.State = "no_data"
		jsonResp(w, http.StatusOK, resp)
		return
	}

	age := h.now().Sub(latest.At)
	resp.SampleAgeSecs = age.Seconds()
	resp.LastSampleAt = latest.At.UTC().Format(time.RFC3339)
	if age > staleFactor*h.pollInterval {
		resp.State = "stale"
	} else {
		resp.State = "ok"
	}
	jsonResp(w, http.StatusOK, resp)
}

// latest returns GET /api/v1/latest — the newest sample.
func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := BuildLatest(h.store)
	if resp == nil {
		jsonErr(w, http.StatusNotFound, "no samples yet")
		return
	}
	jsonResp(w, http.StatusOK, resp)
}

// series returns GET /api/v1/series?window=15m — chart points and summaries.
// The window defaults to the full history when absent.
func (h *Handler) series(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	window := 24 * time.Hour // effectively "everything retained"
	if q := r.URL.Query().Get("window"); q != "" {
		d, err := time.ParseDuration(q)
		if err != nil || d <= 0 {
			jsonErr(w, http.StatusBadRequest, "invalid window duration")
			return
		}
		window = d
	}

	jsonResp(w, http.StatusOK, BuildSeries(h.store, h.now(), window))
}

// alerts returns GET /api/v1/alerts?window=1h — recently fired alerts.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	window := defaultAlertWindow
	if q := r.URL.Query().Get("window"); q != "" {
		d, err := time.ParseDuration(q)
		if err != nil || d <= 0 {
			jsonErr(w, http.StatusBadRequest, "invalid window duration")
			return
		}
		window = d
	}

	fired := h.alertLog.Recent(h.now().Add(-window))
	jsonResp(w, http.StatusOK, fired)
}

// listRules returns GET /api/v1/rules — the configured threshold table.
func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildRules(h.rules))
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
