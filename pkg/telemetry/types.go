package telemetry

import "time"

// Canonical metric names used across SunKalp deployments. Rule and field
// configuration may reference arbitrary names; these are the ones the stock
// station hardware reports.
const (
	MetricVoltage     = "voltage"
	MetricCurrent     = "current"
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
	MetricBatterySOC  = "battery_soc"
	MetricLight       = "light"
)

// Sample is one observation of the station: metric name → scalar value.
// A metric absent from Values was not reported in this poll.
type Sample struct {
	// At is the time the sample was observed by the poller, not the feed's
	// own created-at timestamp (feeds report wall-clock times in their own
	// zone and with their own skew).
	At time.Time

	Values map[string]float64
}

// NewSample returns an empty Sample observed at t.
func NewSample(t time.Time) *Sample {
	return &Sample{At: t, Values: make(map[string]float64)}
}

// Get returns the value for metric and whether it was present in the sample.
func (s *Sample) Get(metric string) (float64, bool) {
	v, ok := s.Values[metric]
	return v, ok
}

// defaultUnits maps canonical metric names to display unit labels.
var defaultUnits = map[string]string{
	MetricVoltage:     "V",
	MetricCurrent:     "A",
	MetricTemperature: "°C",
	MetricHumidity:    "%",
	MetricBatterySOC:  "%",
	MetricLight:       "lx",
}

// UnitFor returns the default unit label for a canonical metric name, or ""
// for metrics SunKalp does not know about.
func UnitFor(metric string) string {
	return defaultUnits[metric]
}
