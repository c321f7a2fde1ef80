package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/code-nisarg/SunKalp/pkg/alert"
	"github.com/code-nisarg/SunKalp/pkg/feed"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPollInterval   = 60 * time.Second
	DefaultHealthPort     = 8090
	DefaultDigestSchedule = "0 8 * * *"
	DefaultSMSAPIBase     = "https://api.twilio.com/2010-04-01"
)

// Config holds the notifier configuration parsed from the `notifier:` section
// of config.yaml. The `dashboard:` key in the same file is ignored.
type Config struct {
	Notifier NotifierConfig `yaml:"notifier"`
}

// NotifierConfig holds all notifier-side settings.
type NotifierConfig struct {
	// PollInterval controls how often the feed is polled (default 60s).
	PollInterval time.Duration `yaml:"poll_interval"`

	// Feed is the telemetry source to poll.
	Feed feed.Source `yaml:"feed"`

	// Rules is the threshold table, one entry per monitored metric. Fixed
	// for the process lifetime.
	Rules []alert.Rule `yaml:"rules"`

	// SMS configures the SMS delivery channel. Disabled when AccountSIDEnv
	// is empty.
	SMS SMSConfig `yaml:"sms"`

	// Webhooks lists additional webhook delivery targets.
	Webhooks []WebhookConfig `yaml:"webhooks"`

	// Digest configures the daily summary report.
	Digest DigestConfig `yaml:"digest"`

	// HealthPort is the port the /healthz endpoint listens on (default 8090).
	HealthPort int `yaml:"health_port"`
}

// SMSConfig configures the Twilio-style SMS provider.
type SMSConfig struct {
	// APIBase is the provider API root. Defaults to the Twilio messages API.
	APIBase string `yaml:"api_base"`

	// AccountSIDEnv and AuthTokenEnv name the environment variables holding
	// the account SID and auth token.
	AccountSIDEnv string `yaml:"account_sid_env"`
	AuthTokenEnv  string `yaml:"auth_token_env"`

	// From is the sending phone number in E.164 form.
	From string `yaml:"from"`

	// To lists recipient phone numbers.
	To []string `yaml:"to"`
}

// AccountSID returns the provider account SID resolved from the environment.
func (s SMSConfig) AccountSID() string {
	if s.AccountSIDEnv == "" {
		return ""
	}
	return os.Getenv(s.AccountSIDEnv)
}

// AuthToken returns the provider auth token resolved from the environment.
func (s SMSConfig) AuthToken() string {
	if s.AuthTokenEnv == "" {
		return ""
	}
	return os.Getenv(s.AuthTokenEnv)
}

// Enabled reports whether the SMS channel is configured.
func (s SMSConfig) Enabled() bool {
	return s.AccountSIDEnv != "" && len(s.To) > 0
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook
	// URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// DigestConfig controls the daily summary report.
type DigestConfig struct {
	// Enabled turns the digest on.
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression (default "0 8 * * *", daily at 08:00
	// local time).
	Schedule string `yaml:"schedule"`
}

// Load reads and parses the config file at path, returning the notifier
// configuration. Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("notifier config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("notifier config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("notifier config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Notifier: NotifierConfig{
			PollInterval: DefaultPollInterval,
			HealthPort:   DefaultHealthPort,
			SMS: SMSConfig{
				APIBase: DefaultSMSAPIBase,
			},
			Digest: DigestConfig{
				Schedule: DefaultDigestSchedule,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	n := cfg.Notifier
	if n.PollInterval <= 0 {
		return fmt.Errorf("notifier.poll_interval must be positive")
	}
	if n.HealthPort <= 0 || n.HealthPort > 65535 {
		return fmt.Errorf("notifier.health_port %d is out of range [1, 65535]", n.HealthPort)
	}
	if err := n.Feed.Validate(); err != nil {
		return err
	}
	if err := alert.ValidateRules(n.Rules); err != nil {
		return err
	}
	if n.SMS.Enabled() && n.SMS.From == "" {
		return fmt.Errorf("notifier.sms.from is required when sms is configured")
	}
	for _, wh := range n.Webhooks {
		switch wh.Type {
		case "slack", "http":
		default:
			return fmt.Errorf("notifier.webhooks type %q unknown: want slack|http", wh.Type)
		}
	}
	return nil
}
