// Package config loads relayui's layered configuration.
package config

import (
	"time"

	"github.com/leapstack-labs/relayui/internal/relay"
)

// Default configuration values.
const (
	DefaultRelayURL      = "http://localhost:8060"
	DefaultRelayTimeout  = 10 * time.Second
	DefaultDebounce      = 250 * time.Millisecond
	DefaultUIPort        = 8765
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSessionSecret = "relayui-dev-secret-change-in-production" //nolint:gosec
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config is the root configuration.
type Config struct {
	Relay   RelayConfig   `koanf:"relay"`
	Preview PreviewConfig `koanf:"preview"`
	UI      UIConfig      `koanf:"ui"`
	Log     LogConfig     `koanf:"log"`
	Verbose bool          `koanf:"verbose"`
}

// RelayConfig locates the relay API.
type RelayConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	// Paths overrides individual endpoints; empty entries keep the
	// relay's standard layout.
	Paths relay.Paths `koanf:"paths"`
}

// PreviewConfig tunes the render pipeline.
type PreviewConfig struct {
	Debounce time.Duration `koanf:"debounce"`
	// Template replaces the built-in initial template text when set.
	Template string `koanf:"template"`
}

// UIConfig holds web console settings.
type UIConfig struct {
	Port          int           `koanf:"port"`
	AutoOpen      bool          `koanf:"auto_open"`
	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaults is the lowest configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"relay.url":               DefaultRelayURL,
		"relay.timeout":           DefaultRelayTimeout.String(),
		"preview.debounce":        DefaultDebounce.String(),
		"ui.port":                 DefaultUIPort,
		"ui.auto_open":            true,
		"ui.session_secret":       DefaultSessionSecret,
		"ui.session_ttl":          DefaultSessionTTL.String(),
		"log.level":               DefaultLogLevel,
		"log.format":              DefaultLogFormat,
		"verbose":                 false,
		"relay.paths.templates":   "",
		"relay.paths.render":      "",
		"relay.paths.runtimeinfo": "",
		"relay.paths.buildinfo":   "",
		"relay.paths.flags":       "",
		"relay.paths.config":      "",
		"preview.template":        "",
	}
}
