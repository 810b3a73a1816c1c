package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/relayui/internal/relay"
)

// TemplatesOptions holds options for the templates command.
type TemplatesOptions struct {
	Name string
}

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand() *cobra.Command {
	opts := &TemplatesOptions{}

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the relay's message templates",
		Long: `List the templates configured on the relay: the default message
first, then one entry per notification target.`,
		Example: `  # List templates
  relayui templates

  # Print the text of one template
  relayui templates --name webhook1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTemplates(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Print the text of the named template only")

	return cmd
}

func runTemplates(cmd *cobra.Command, opts *TemplatesOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	catalog, err := load[relay.Catalog](cmd, cc, cc.Client.Paths().Templates)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if opts.Name != "" {
		t, ok := findTemplate(catalog, opts.Name)
		if !ok {
			return &notFoundError{name: opts.Name}
		}
		if r.Structured() {
			return r.Data(t)
		}
		r.Println(t.Text)
		return nil
	}

	if r.Structured() {
		return r.Data(catalog.Templates)
	}

	rows := make([][]string, len(catalog.Templates))
	for i, t := range catalog.Templates {
		rows[i] = []string{strconv.Itoa(i), t.Name, firstLine(t.Text)}
	}
	r.Table("Templates", []string{"#", "Name", "Text"}, rows)
	return nil
}

type notFoundError struct {
	name string
}

func (e *notFoundError) Error() string {
	return "template " + strconv.Quote(e.name) + " not found"
}

// firstLine shortens multi-line template text for the listing.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
