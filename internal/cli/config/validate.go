package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Relay.URL == "" {
		errs = append(errs, errors.New("relay.url is required"))
	} else if u, err := url.Parse(c.Relay.URL); err != nil {
		errs = append(errs, fmt.Errorf("relay.url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("relay.url %q: scheme must be http or https", c.Relay.URL))
	}

	if c.Relay.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("relay.timeout must be positive, got %s", c.Relay.Timeout))
	}
	if c.Preview.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("preview.debounce must be positive, got %s", c.Preview.Debounce))
	}
	if c.UI.Port < 1 || c.UI.Port > 65535 {
		errs = append(errs, fmt.Errorf("ui.port must be between 1 and 65535, got %d", c.UI.Port))
	}
	if c.UI.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("ui.session_ttl must be positive, got %s", c.UI.SessionTTL))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
