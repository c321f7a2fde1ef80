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
	DefaultPollInterval  = 10 * time.Second
	DefaultHTTPPort      = 8080
	DefaultHistoryWindow = time.Hour
)

// Config holds the dashboard configuration parsed from the `dashboard:`
// section of config.yaml. The `notifier:` key in the same file is ignored.
type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DashboardConfig holds all dashboard-side settings.
type DashboardConfig struct {
	// PollInterval controls how often the feed is polled (default 10s).
	PollInterval time.Duration `yaml:"poll_interval"`

	// HTTPPort is the port the REST API, WebSocket stream, and SPA listen
	// on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// HistoryWindow is how much sample history is kept for charts
	// (default 1h).
	HistoryWindow time.Duration `yaml:"history_window"`

	// ResetOnReconnect clears alert cooldown state when the feed recovers
	// after a failed poll, mirroring a fresh page load. Defaults to true.
	ResetOnReconnect *bool `yaml:"reset_on_reconnect"`

	// Feed is the telemetry source to poll.
	Feed feed.Source `yaml:"feed"`

	// Rules is the threshold table used for in-dashboard notifications.
	Rules []alert.Rule `yaml:"rules"`

	// Auth configures REST API authentication.
	Auth AuthConfig `yaml:"auth"`
}

// ResetsOnReconnect returns the ResetOnReconnect flag with its default
// applied.
func (d DashboardConfig) ResetsOnReconnect() bool {
	if d.ResetOnReconnect == nil {
		return true
	}
	return *d.ResetOnReconnect
}

// AuthConfig configures REST API authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable holding the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from. Defaults to
	// "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default
// "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// Load reads and parses the config file at path, returning the dashboard
// configuration. Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dashboard config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("dashboard config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("dashboard config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			PollInterval:  DefaultPollInterval,
			HTTPPort:      DefaultHTTPPort,
			HistoryWindow: DefaultHistoryWindow,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	d := cfg.Dashboard
	if d.PollInterval <= 0 {
		return fmt.Errorf("dashboard.poll_interval must be positive")
	}
	if d.HTTPPort <= 0 || d.HTTPPort > 65535 {
		return fmt.Errorf("dashboard.http_port %d is out of range [1, 65535]", d.HTTPPort)
	}
	if d.HistoryWindow <= 0 {
		return fmt.Errorf("dashboard.history_window must be positive")
	}
	if err := d.Feed.Validate(); err != nil {
		return err
	}
	if err := alert.ValidateRules(d.Rules); err != nil {
		return err
	}
	switch d.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("dashboard.auth.mode %q unknown: want apikey|none", d.Auth.Mode)
	}
	return nil
}
