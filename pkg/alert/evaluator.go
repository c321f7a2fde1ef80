package alert

import (
	"fmt"
	"time"

	"github.com/code-nisarg/SunKalp/pkg/telemetry"
)

// Fired is one alert event produced by the Evaluator.
type Fired struct {
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Limit     float64   `json:"limit"`
	Direction Direction `json:"direction"`
	Unit      string    `json:"unit,omitempty"`
	At        time.Time `json:"at"`
}

// Message renders the human-readable alert text used by SMS and webhook
// delivery.
func (f Fired) Message() string {
	verb := "above"
	if f.Direction == Below {
		verb = "below"
	}
	return fmt.Sprintf("SunKalp alert: %s is %.1f%s, %s limit %.1f%s",
		f.Metric, f.Value, f.Unit, verb, f.Limit, f.Unit)
}

// State holds the per-metric last-fire timestamps. The caller owns the
// lifecycle: the notifier keeps one State for the process lifetime; the
// dashboard resets its State when the feed reconnects.
//
// State is not safe for concurrent mutation — serialize Evaluate calls.
type State struct {
	lastFired map[string]time.Time
}

// NewState returns an empty State: no metric has ever fired.
func NewState() *State {
	return &State{lastFired: make(map[string]time.Time)}
}

// LastFired returns when metric last fired and whether it ever has.
func (s *State) LastFired(metric string) (time.Time, bool) {
	t, ok := s.lastFired[metric]
	return t, ok
}

// Reset clears all last-fire timestamps, as if no alert had ever fired.
func (s *State) Reset() {
	s.lastFired = make(map[string]time.Time)
}

// Evaluator applies a fixed rule table to incoming samples.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator creates an Evaluator over rules. An Evaluator with no rules is
// valid — Evaluate becomes a no-op.
func NewEvaluator(rules []Rule) *Evaluator {
	return &Evaluator{rules: rules}
}

// Rules returns the configured rule table.
func (e *Evaluator) Rules() []Rule {
	return e.rules
}

// Evaluate tests every rule against sample and returns the alerts that fire,
// updating st.lastFired for each. now is passed explicitly so callers (and
// tests) control the clock.
//
// Per rule:
//   - a metric absent from the sample is skipped, state untouched;
//   - a "below" rule with ZeroGuard skips values <= 0 (disconnected sensor);
//   - breach requires strictly crossing the limit; equality never fires;
//   - a breach fires only if the metric has never fired or more than the
//     cooldown has elapsed since the last fire.
//
// Metrics are independent; one call may return zero or more alerts.
func (e *Evaluator) Evaluate(sample *telemetry.Sample, now time.Time, st *State) []Fired {
	var fired []Fired
	for _, rule := range e.rules {
		value, ok := sample.Get(rule.Metric)
		if !ok {
			continue
		}
		if rule.Direction == Below && rule.ZeroGuard && value <= 0 {
			continue
		}
		if !breached(rule, value) {
			continue
		}
		if last, ever := st.lastFired[rule.Metric]; ever && now.Sub(last) <= rule.EffectiveCooldown() {
			continue
		}

		st.lastFired[rule.Metric] = now
		fired = append(fired, Fired{
			Metric:    rule.Metric,
			Value:     value,
			Limit:     rule.Limit,
			Direction: rule.Direction,
			Unit:      rule.Unit,
			At:        now,
		})
	}
	return fired
}

// breached reports whether value strictly crosses the rule's limit.
func breached(rule Rule, value float64) bool {
	switch rule.Direction {
	case Above:
		return value > rule.Limit
	case Below:
		return value < rule.Limit
	default:
		return false
	}
}
