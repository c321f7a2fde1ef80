package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cast"

	"github.com/code-nisarg/SunKalp/pkg/telemetry"
)

// thingspeakClient polls a ThingSpeak-style channel feed. The endpoint is the
// channel's last-entry URL; the response is a flat JSON object whose fieldN
// values are strings (or null for fields the station did not write).
type thingspeakClient struct {
	src    Source
	client *http.Client
	now    func() time.Time
}

// Fetch retrieves the latest channel entry and maps configured fields to
// metric names.
//
// A field key absent from the response leaves its metric out of the sample
// entirely. A field that is present but null or non-numeric becomes 0 — the
// same value a disconnected sensor reports, so zero-guarded rules absorb it.
func (c *thingspeakClient) Fetch(ctx context.Context) (*telemetry.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.src.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("thingspeak: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thingspeak: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thingspeak: unexpected status %d", resp.StatusCode)
	}

	var entry map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("thingspeak: decode entry: %w", err)
	}

	sample := telemetry.NewSample(c.now().UTC())
	for field, metric := range c.src.Fields {
		raw, ok := entry[field]
		if !ok {
			continue
		}
		// cast treats null and unparseable strings as 0.
		sample.Values[metric] = cast.ToFloat64(raw)
	}
	return sample, nil
}
