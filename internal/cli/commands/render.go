package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/relayui/internal/markdown"
	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/tui"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	TemplateFile string
	PayloadFile  string
	TemplateName string
	Plain        bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template once against a sample alert",
		Long: `Send template text and a sample Alertmanager payload to the relay's
render endpoint and print the resulting markdown.

Without flags the configured initial template is rendered against the
built-in sample alert.`,
		Example: `  # Render a template file
  relayui render --template-file message.tmpl

  # Render a catalog template against your own alert, as plain text
  relayui render --template webhook1 --payload-file alert.json --plain`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.TemplateFile, "template-file", "f", "", "Read template text from file")
	cmd.Flags().StringVarP(&opts.PayloadFile, "payload-file", "p", "", "Read the sample alert JSON from file")
	cmd.Flags().StringVarP(&opts.TemplateName, "template", "t", "", "Start from the named catalog template")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Print plain text instead of markdown")
	cmd.MarkFlagsMutuallyExclusive("template-file", "template")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	in := cc.InitialInput()
	if opts.TemplateName != "" {
		catalog, err := load[relay.Catalog](cmd, cc, cc.Client.Paths().Templates)
		if err != nil {
			return err
		}
		t, ok := findTemplate(catalog, opts.TemplateName)
		if !ok {
			return &notFoundError{name: opts.TemplateName}
		}
		in.TemplateText = t.Text
	}
	in, err = tui.ReadInput(in, opts.TemplateFile, opts.PayloadFile)
	if err != nil {
		return err
	}

	outcome, err := renderOnce(cmd.Context(), cc, in)
	if err != nil {
		return err
	}
	if outcome.Failed() {
		return errors.New("unable to render template: " + outcome.ErrorMessage)
	}

	r := cc.Renderer
	if r.Structured() {
		return r.Data(relay.RenderResult{Markdown: outcome.RenderedMarkdown})
	}
	text := outcome.RenderedMarkdown
	if opts.Plain {
		if text, err = markdown.PlainText(text); err != nil {
			return err
		}
	}
	r.Println(text)
	return nil
}

// renderOnce runs in through a pipeline and waits for the first outcome.
func renderOnce(ctx context.Context, cc *CommandContext, in preview.InputState) (preview.RenderOutcome, error) {
	cfg := cc.PipelineConfig(in)
	cfg.Renderer = cc.Client
	p := preview.NewPipeline(ctx, cfg)
	defer p.Close()

	ch := p.Subscribe()
	defer p.Unsubscribe(ch)
	p.Start()

	for {
		snap := p.Snapshot()
		if !snap.Outcome.Empty() && snap.Phase == preview.Quiescent {
			return snap.Outcome, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return preview.RenderOutcome{}, ctx.Err()
		}
	}
}

func findTemplate(c relay.Catalog, name string) (relay.Template, bool) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return relay.Template{}, false
}
