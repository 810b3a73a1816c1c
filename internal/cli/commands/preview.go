package commands

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/tui"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	TemplateFile string
	PayloadFile  string
	NoWatch      bool
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Edit a template in the terminal with a live preview",
		Long: `Open the template playground in the terminal.

The left pane edits the template text or the sample alert; the right pane
shows the relay's rendering as markdown or plain text. Renders are
debounced while you type. When --template-file or --payload-file is given
the file is loaded at start and changes saved from another editor are
picked up.`,
		Example: `  # Start from the default template
  relayui preview

  # Edit a template file in your own editor and watch the result
  relayui preview --template-file message.tmpl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.TemplateFile, "template-file", "f", "", "Load template text from file")
	cmd.Flags().StringVarP(&opts.PayloadFile, "payload-file", "p", "", "Load the sample alert JSON from file")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "Don't reload the files when they change")
	cmd.Flags().Duration("debounce", 0, "Quiet period after the last keystroke before rendering (default: 250ms)")

	return cmd
}

func runPreview(cmd *cobra.Command, opts *PreviewOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	in, err := tui.ReadInput(cc.InitialInput(), opts.TemplateFile, opts.PayloadFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session := preview.NewSession(ctx, preview.SessionConfig{
		ID:          "terminal",
		Backend:     cc.Client,
		CatalogPath: cc.Client.Paths().Templates,
		Pipeline:    cc.PipelineConfig(in),
	})
	defer session.Close()
	session.Start()

	eg, egctx := errgroup.WithContext(ctx)

	var edits <-chan tui.FileEdit
	files := map[preview.LeftTab]string{
		preview.TabTemplate:    opts.TemplateFile,
		preview.TabSampleInput: opts.PayloadFile,
	}
	if !opts.NoWatch && (opts.TemplateFile != "" || opts.PayloadFile != "") {
		w, err := tui.WatchFiles(files, cc.Logger)
		if err != nil {
			return err
		}
		edits = w.Edits()
		eg.Go(func() error {
			return w.Run(egctx)
		})
	}

	eg.Go(func() error {
		defer cancel()
		return tui.Run(egctx, tui.Options{
			Session: session,
			Edits:   edits,
			Input:   cmd.InOrStdin(),
			Output:  cmd.OutOrStdout(),
		})
	})

	return eg.Wait()
}
