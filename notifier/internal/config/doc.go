// Package config loads the notifier's section of config.yaml: poll interval,
// feed source, threshold rules, SMS and webhook delivery targets, and the
// daily digest schedule. Secrets (API keys, tokens) are referenced by
// environment variable name and resolved at use time, never stored in the
// file.
package config
