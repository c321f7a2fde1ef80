// Package config loads the dashboard's section of config.yaml: poll
// interval, feed source, threshold rules, history window, and REST API
// authentication.
package config
