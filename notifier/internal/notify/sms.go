package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/code-nisarg/SunKalp/notifier/internal/config"
)

// SMS sends alert messages through a Twilio-compatible Messages API:
// form-encoded POST to /Accounts/{sid}/Messages.json with basic auth.
type SMS struct {
	cfg    config.SMSConfig
	client *http.Client
}

// NewSMS creates the SMS channel. Credentials are resolved from the
// environment on every send so rotation does not require a restart.
func NewSMS(cfg config.SMSConfig, client *http.Client) *SMS {
	return &SMS{cfg: cfg, client: client}
}

// Name implements Notifier.
func (s *SMS) Name() string { return "sms" }

// Send delivers message to every configured recipient. The first provider
// error aborts remaining recipients — the next alert will reach them anyway,
// and a provider-side failure rarely clears mid-loop.
func (s *SMS) Send(ctx context.Context, message string) error {
	sid := s.cfg.AccountSID()
	token := s.cfg.AuthToken()
	if sid == "" || token == "" {
		return fmt.Errorf("sms: credentials not set in environment")
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json",
		strings.TrimRight(s.cfg.APIBase, "/"), sid)

	for _, to := range s.cfg.To {
		form := url.Values{}
		form.Set("From", s.cfg.From)
		form.Set("To", to)
		form.Set("Body", message)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("sms: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(sid, token)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("sms: send to %s: %w", to, err)
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			return fmt.Errorf("sms: provider returned HTTP %d for %s", resp.StatusCode, to)
		}
	}
	return nil
}
