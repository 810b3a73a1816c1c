package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/relayui/internal/cli/config"
	"github.com/leapstack-labs/relayui/internal/cli/output"
	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/relay"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Client   *relay.Client
	Renderer *output.Renderer
}

// NewCommandContext builds the relay client and output renderer from the
// configuration the root command loaded.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	logger := config.GetLogger(cmd.Context())

	client, err := relay.NewClient(cfg.RelayClientConfig(logger))
	if err != nil {
		return nil, err
	}

	format, _ := cmd.Flags().GetString("output")
	mode, err := output.ParseMode(format)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Client:   client,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// InitialInput is the input new preview sessions start from.
func (c *CommandContext) InitialInput() preview.InputState {
	in := preview.DefaultInput()
	if c.Cfg.Preview.Template != "" {
		in.TemplateText = c.Cfg.Preview.Template
	}
	return in
}

// PipelineConfig returns the pipeline settings from the configuration.
func (c *CommandContext) PipelineConfig(in preview.InputState) preview.Config {
	return preview.Config{
		Debounce: c.Cfg.Preview.Debounce,
		Timeout:  c.Cfg.Relay.Timeout,
		Initial:  in,
		Logger:   c.Logger,
	}
}

// relayError formats a relay failure for the terminal.
func relayError(d *fetch.ErrorDescriptor) error {
	return fmt.Errorf("relay %s error: %s", d.Kind, d.Message)
}

// load fetches and decodes one relay resource, waiting for it to settle.
func load[T any](cmd *cobra.Command, cc *CommandContext, path string) (T, error) {
	ctx := cmd.Context()
	ctrl := fetch.NewResource(ctx, cc.Client, path, relay.Decode[T](), fetch.Options{
		Timeout: cc.Cfg.Relay.Timeout,
		Logger:  cc.Logger,
	})
	defer ctrl.Close()

	var zero T
	st, err := ctrl.Wait(ctx)
	if err != nil {
		return zero, err
	}
	if st.Phase == fetch.Failed {
		return zero, relayError(st.Err)
	}
	return st.Data, nil
}
