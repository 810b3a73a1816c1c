package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/relayui/internal/cli/output"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/status"
)

// Status sections selectable with --section.
const (
	SectionRuntime = "runtime"
	SectionBuild   = "build"
	SectionFlags   = "flags"
	SectionConfig  = "config"
	SectionAll     = "all"
)

var statusSections = []string{SectionRuntime, SectionBuild, SectionFlags, SectionConfig, SectionAll}

// StatusOptions holds options for the status command.
type StatusOptions struct {
	Section string
}

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	opts := &StatusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the relay's runtime, build, flag and config status",
		Long: `Query the relay's status endpoints and print them.

Sections:
  runtime  Runtime and build information
  build    Build information only
  flags    Command-line flags
  config   Loaded configuration file
  all      Everything above`,
		Example: `  # Runtime and build information
  relayui status

  # The relay's flags as JSON
  relayui status --section flags -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Section, "section", "s", SectionRuntime,
		"Section to show: "+strings.Join(statusSections, ", "))
	_ = cmd.RegisterFlagCompletionFunc("section", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return statusSections, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// statusReport is the structured form of the status command's output.
type statusReport struct {
	Runtime []status.Row `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Build   []status.Row `json:"build,omitempty" yaml:"build,omitempty"`
	Flags   []status.Row `json:"flags,omitempty" yaml:"flags,omitempty"`
	Config  string       `json:"config,omitempty" yaml:"config,omitempty"`
}

func runStatus(cmd *cobra.Command, opts *StatusOptions) error {
	want, err := sectionSet(opts.Section)
	if err != nil {
		return err
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	paths := cc.Client.Paths()
	fields := status.DefaultFields()

	var report statusReport
	if want[SectionRuntime] {
		info, err := load[relay.Info](cmd, cc, paths.RuntimeInfo)
		if err != nil {
			return err
		}
		report.Runtime = fields.Resolve(info)
	}
	if want[SectionBuild] {
		info, err := load[relay.Info](cmd, cc, paths.BuildInfo)
		if err != nil {
			return err
		}
		report.Build = fields.Resolve(info)
	}
	if want[SectionFlags] {
		flags, err := load[relay.Flags](cmd, cc, paths.Flags)
		if err != nil {
			return err
		}
		report.Flags = status.FlagRows(flags)
	}
	if want[SectionConfig] {
		dump, err := load[relay.ConfigDump](cmd, cc, paths.Config)
		if err != nil {
			return err
		}
		report.Config = dump.YAML
	}

	r := cc.Renderer
	if r.Structured() {
		return r.Data(report)
	}

	sections := []status.Section{
		{Title: "Runtime Information", Rows: report.Runtime},
		{Title: "Build Information", Rows: report.Build},
		{Title: "Command-Line Flags", Rows: report.Flags},
	}
	for _, s := range sections {
		if len(s.Rows) == 0 {
			continue
		}
		rows := make([][]string, len(s.Rows))
		for i, row := range s.Rows {
			rows[i] = []string{row.Title, row.Value}
		}
		r.Table(s.Title, []string{"Key", "Value"}, rows)
	}

	if want[SectionConfig] {
		printConfig(cc, report.Config)
	}
	return nil
}

func sectionSet(section string) (map[string]bool, error) {
	switch section {
	case SectionRuntime:
		return map[string]bool{SectionRuntime: true, SectionBuild: true}, nil
	case SectionBuild, SectionFlags, SectionConfig:
		return map[string]bool{section: true}, nil
	case SectionAll:
		return map[string]bool{SectionRuntime: true, SectionBuild: true, SectionFlags: true, SectionConfig: true}, nil
	default:
		return nil, fmt.Errorf("unknown section %q (want %s)", section, strings.Join(statusSections, ", "))
	}
}

func printConfig(cc *CommandContext, yamlText string) {
	r := cc.Renderer
	text := strings.TrimRight(yamlText, "\n")
	if r.Mode() == output.ModeMarkdown {
		r.Println("## Configuration")
		r.Println()
		r.Println("```yaml")
		r.Println(text)
		r.Println("```")
		return
	}
	r.Println(r.Styles.Title.Render("Configuration"))
	r.Println(text)
}
