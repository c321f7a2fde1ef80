package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/code-nisarg/SunKalp/notifier/internal/config"
	"github.com/code-nisarg/SunKalp/pkg/alert"
)

const sendTimeout = 10 * time.Second

// Notifier is one delivery channel for alert messages.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string

	// Send delivers one rendered message.
	Send(ctx context.Context, message string) error
}

// Dispatcher fans alert messages out to all configured channels.
type Dispatcher struct {
	channels []Notifier
}

// NewDispatcher builds a Dispatcher from the notifier configuration. Channels
// with missing credentials are skipped with a warning; a Dispatcher with no
// channels is valid and only logs.
func NewDispatcher(cfg config.NotifierConfig) *Dispatcher {
	client := &http.Client{Timeout: sendTimeout}

	var channels []Notifier
	if cfg.SMS.Enabled() {
		channels = append(channels, NewSMS(cfg.SMS, client))
	} else if cfg.SMS.AccountSIDEnv != "" {
		slog.Warn("notify: sms configured without recipients — channel disabled")
	}
	for _, wh := range cfg.Webhooks {
		channels = append(channels, NewWebhook(wh, client))
	}
	return &Dispatcher{channels: channels}
}

// Channels returns the number of active delivery channels.
func (d *Dispatcher) Channels() int {
	return len(d.channels)
}

// DispatchAlerts renders and delivers each fired alert on every channel.
// Failures are logged per channel; lastFired state is never rolled back, so
// delivery is at-most-once.
func (d *Dispatcher) DispatchAlerts(ctx context.Context, fired []alert.Fired) {
	for _, f := range fired {
		d.DispatchMessage(ctx, f.Message())
	}
}

// DispatchMessage delivers one message on every channel.
func (d *Dispatcher) DispatchMessage(ctx context.Context, message string) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, message); err != nil {
			slog.Error("notify: delivery failed",
				"channel", ch.Name(),
				"err", err,
			)
			continue
		}
		slog.Debug("notify: delivered", "channel", ch.Name())
	}
}
