package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/relayui/internal/relay"
)

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// EnvPrefix prefixes every environment override, e.g. RELAYUI_RELAY_URL.
const EnvPrefix = "RELAYUI_"

// configFileUsed records the file the last Load read, if any.
var configFileUsed string

// flagKeys maps flag names to config keys where the two differ.
var flagKeys = map[string]string{
	"relay-url":      "relay.url",
	"timeout":        "relay.timeout",
	"debounce":       "preview.debounce",
	"port":           "ui.port",
	"session-secret": "ui.session_secret",
	"log-format":     "log.format",
	"log-level":      "log.level",
	"verbose":        "verbose",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > relayui.yaml > relayui.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"relayui.yaml", "relayui.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey turns RELAYUI_UI_SESSION_SECRET into ui.session_secret. Only
// known keys are accepted, since both the separator and the key words
// use underscores.
func envKey(known map[string]bool) func(string) string {
	byEnv := make(map[string]string, len(known))
	for k := range known {
		byEnv[strings.ReplaceAll(k, ".", "_")] = k
	}
	return func(s string) string {
		return byEnv[strings.ToLower(strings.TrimPrefix(s, EnvPrefix))]
	}
}

// Load reads configuration from defaults, a YAML file, RELAYUI_*
// environment variables and explicitly set flags, in rising precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defs := defaults()
	if err := k.Load(confmap.Provider(defs, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	known := make(map[string]bool, len(defs))
	for key := range defs {
		known[key] = true
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey(known)), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// RelayClientConfig converts the relay section into a client config.
func (c *Config) RelayClientConfig(logger *slog.Logger) relay.Config {
	return relay.Config{
		BaseURL: c.Relay.URL,
		Timeout: c.Relay.Timeout,
		Paths:   c.Relay.Paths,
		Logger:  logger,
	}
}

// NewLogger builds the slog logger the log section asks for. Verbose
// forces debug level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level := parseLevel(c.Log.Level)
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

type configKey struct{}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig.
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	return cfg, ok
}
