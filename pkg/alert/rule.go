package alert

import (
	"fmt"
	"time"
)

// DefaultCooldown applies when a rule omits its cooldown.
const DefaultCooldown = 30 * time.Minute

// Direction selects which side of the limit is a breach.
type Direction string

const (
	// Above fires when value > limit.
	Above Direction = "above"

	// Below fires when value < limit.
	Below Direction = "below"
)

// Rule defines one threshold condition for one metric. Rules are loaded from
// config at startup and are immutable for the process lifetime.
type Rule struct {
	// Metric is the sample key this rule watches, e.g. "voltage".
	Metric string `yaml:"metric"`

	// Limit is the threshold value. Equality is never a breach — only
	// strictly crossing the limit in the rule's direction fires.
	Limit float64 `yaml:"limit"`

	// Direction is "above" or "below".
	Direction Direction `yaml:"direction"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Measured from the last fire, not the last observed breach. Defaults
	// to DefaultCooldown if zero.
	Cooldown time.Duration `yaml:"cooldown"`

	// ZeroGuard, on a "below" rule, skips evaluation when the reported value
	// is <= 0. A disconnected sensor reads as zero on most station firmware,
	// which would otherwise trip every low-limit rule. Has no effect on
	// "above" rules.
	ZeroGuard bool `yaml:"zero_guard"`

	// Unit is the display unit label used in alert messages, e.g. "V".
	Unit string `yaml:"unit"`
}

// EffectiveCooldown returns the rule's cooldown, or DefaultCooldown if unset.
func (r Rule) EffectiveCooldown() time.Duration {
	if r.Cooldown <= 0 {
		return DefaultCooldown
	}
	return r.Cooldown
}

// Validate checks structural constraints on a rule.
func (r Rule) Validate() error {
	if r.Metric == "" {
		return fmt.Errorf("rule is missing a metric name")
	}
	switch r.Direction {
	case Above, Below:
	default:
		return fmt.Errorf("rule %q: direction %q unknown: want above|below", r.Metric, r.Direction)
	}
	if r.Cooldown < 0 {
		return fmt.Errorf("rule %q: cooldown must not be negative", r.Metric)
	}
	return nil
}

// ValidateRules checks every rule and rejects duplicate metrics. One rule per
// metric keeps the cooldown state unambiguous.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.Metric]; dup {
			return fmt.Errorf("duplicate rule for metric %q", r.Metric)
		}
		seen[r.Metric] = struct{}{}
	}
	return nil
}
