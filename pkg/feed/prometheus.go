package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/code-nisarg/SunKalp/pkg/telemetry"
)

// promClient scrapes a Prometheus exposition endpoint, typically a local
// inverter or charge-controller exporter, and maps configured metric families
// to SunKalp metric names.
type promClient struct {
	src    Source
	client *http.Client
	now    func() time.Time
}

// Fetch scrapes the endpoint and builds a sample from the configured metric
// families. A family absent from the exposition leaves its metric out of the
// sample.
func (c *promClient) Fetch(ctx context.Context) (*telemetry.Sample, error) {
	mfs, err := fetchFamilies(ctx, c.client, c.src.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("prometheus feed: %w", err)
	}

	sample := telemetry.NewSample(c.now().UTC())
	for family, metric := range c.src.Metrics {
		mf, ok := mfs[family]
		if !ok {
			continue
		}
		sample.Values[metric] = sumFamily(mf)
	}
	return sample, nil
}

// fetchFamilies performs an HTTP GET to url and returns parsed metric families.
func fetchFamilies(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseFamilies(resp.Body)
}

// parseFamilies decodes a Prometheus text exposition from r into metric
// families. A partial result with a non-fatal parse warning is still returned
// successfully.
func parseFamilies(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
// Exporters that label a reading per-phase or per-string sum to the station
// total. Returns 0 if mf is nil.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
