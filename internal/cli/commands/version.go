package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/relayui/internal/cli/config"
	"github.com/leapstack-labs/relayui/internal/cli/output"
	"github.com/leapstack-labs/relayui/internal/relay"
)

// BuildInfo identifies a relayui binary. The fields are stamped with
// -ldflags at release time.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
}

// endpoint is one relay API the console talks to.
type endpoint struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type versionReport struct {
	Build     BuildInfo  `json:"build" yaml:"build"`
	Relay     string     `json:"relay,omitempty" yaml:"relay,omitempty"`
	Endpoints []endpoint `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build metadata and the relay endpoints in use",
		Long: `Print the relayui version, commit and build date, followed by the
relay base URL and the status and render endpoints resolved from the
current configuration.`,
		Example: `  relayui version
  relayui version --relay-url http://relay:8060 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, info)
		},
	}
}

func runVersion(cmd *cobra.Command, info BuildInfo) error {
	if info.Go == "" {
		info.Go = runtime.Version()
	}
	report := versionReport{Build: info}

	if cfg, ok := config.FromContext(cmd.Context()); ok {
		client, err := relay.NewClient(cfg.RelayClientConfig(nil))
		if err != nil {
			return err
		}
		report.Relay = cfg.Relay.URL
		report.Endpoints = relayEndpoints(client)
	}

	format, _ := cmd.Flags().GetString("output")
	mode, err := output.ParseMode(format)
	if err != nil {
		return err
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	if r.Structured() {
		return r.Data(report)
	}

	r.Table("relayui "+info.Version, []string{"Key", "Value"}, [][]string{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"Built", info.Date},
		{"Go", info.Go},
	})
	if len(report.Endpoints) > 0 {
		rows := make([][]string, len(report.Endpoints))
		for i, e := range report.Endpoints {
			rows[i] = []string{e.Name, e.URL}
		}
		r.Table("Relay "+report.Relay, []string{"Endpoint", "URL"}, rows)
	}
	return nil
}

func relayEndpoints(c *relay.Client) []endpoint {
	p := c.Paths()
	return []endpoint{
		{Name: "templates", URL: c.URL(p.Templates)},
		{Name: "render", URL: c.URL(p.Render)},
		{Name: "runtimeinfo", URL: c.URL(p.RuntimeInfo)},
		{Name: "buildinfo", URL: c.URL(p.BuildInfo)},
		{Name: "flags", URL: c.URL(p.Flags)},
		{Name: "config", URL: c.URL(p.Config)},
	}
}
