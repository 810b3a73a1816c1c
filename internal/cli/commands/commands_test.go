package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/cli/testutil"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/ui/features"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{cmd: NewVersionCommand(BuildInfo{}), use: "version"},
		{cmd: NewStatusCommand(), use: "status", flags: []string{"section"}},
		{cmd: NewTemplatesCommand(), use: "templates", flags: []string{"name"}},
		{cmd: NewRenderCommand(), use: "render", flags: []string{"template-file", "payload-file", "template", "plain"}},
		{cmd: NewPreviewCommand(), use: "preview", flags: []string{"template-file", "payload-file", "no-watch", "debounce"}},
		{cmd: NewUICommand(), use: "ui", flags: []string{"port", "no-browser", "debounce", "session-secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewCommandContext_RequiresConfig(t *testing.T) {
	cmd := NewStatusCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration not loaded")
}

func TestStatusCommand(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	cfg := testutil.NewConfig(tr.Server.URL)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr string
	}{
		{
			name:    "runtime is the default",
			want:    []string{"## Runtime Information", "| Goroutines | 12 |", "| Working directory | /srv/relay |", "## Build Information", "| Version | 1.4.0 |"},
			notWant: []string{"Command-Line Flags", "Configuration"},
		},
		{
			name:    "flags",
			args:    []string{"--section", "flags"},
			want:    []string{"## Command-Line Flags", "| --config.file | config.yml |", "| --web.listen-address | :8060 |"},
			notWant: []string{"Runtime Information"},
		},
		{
			name: "config is fenced yaml",
			args: []string{"-s", "config"},
			want: []string{"## Configuration", "```yaml\ntargets:\n  ops: {}\n```"},
		},
		{
			name: "all",
			args: []string{"--section", "all"},
			want: []string{"Runtime Information", "Build Information", "Command-Line Flags", "## Configuration"},
		},
		{
			name: "json",
			args: []string{"-o", "json", "--section", "flags"},
			want: []string{`"flags": [`, `"title": "--config.file"`},
		},
		{
			name:    "unknown section",
			args:    []string{"--section", "logs"},
			wantErr: `unknown section "logs"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testutil.Run(t, NewStatusCommand(), cfg, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, res.Err)
				assert.Contains(t, res.Err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, res.Err)
			testutil.AssertNoANSI(t, res.Out)
			testutil.AssertValidMarkdown(t, res.Out)
			for _, w := range tt.want {
				assert.Contains(t, res.Out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, res.Out, w)
			}
		})
	}
}

func TestStatusCommand_RelayFailure(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	tr.Fail(relay.DefaultPaths().RuntimeInfo)

	res := testutil.Run(t, NewStatusCommand(), testutil.NewConfig(tr.Server.URL))
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "relay application error")
	assert.Contains(t, res.Err.Error(), "runtime info unavailable")
}

func TestStatusCommand_RelayDown(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	url := tr.Server.URL
	tr.Server.Close()

	res := testutil.Run(t, NewStatusCommand(), testutil.NewConfig(url))
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "relay transport error")
}

func TestTemplatesCommand(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	cfg := testutil.NewConfig(tr.Server.URL)

	t.Run("list", func(t *testing.T) {
		res := testutil.Run(t, NewTemplatesCommand(), cfg)
		require.NoError(t, res.Err)
		assert.Contains(t, res.Out, "## Templates")
		assert.Contains(t, res.Out, "<default>")
		assert.Contains(t, res.Out, "ding.link.content")
	})

	t.Run("by name", func(t *testing.T) {
		res := testutil.Run(t, NewTemplatesCommand(), cfg, "--name", "ding.link.content")
		require.NoError(t, res.Err)
		assert.Equal(t, "{{ range .Alerts }}{{ .Labels.alertname }}{{ end }}\n", res.Out)
	})

	t.Run("yaml", func(t *testing.T) {
		res := testutil.Run(t, NewTemplatesCommand(), cfg, "-o", "yaml")
		require.NoError(t, res.Err)
		assert.Contains(t, res.Out, "- name: ")
		assert.Contains(t, res.Out, "name: ding.link.content")
	})

	t.Run("unknown name", func(t *testing.T) {
		res := testutil.Run(t, NewTemplatesCommand(), cfg, "--name", "missing")
		require.Error(t, res.Err)
		assert.Equal(t, `template "missing" not found`, res.Err.Error())
	})
}

func TestRenderCommand(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	cfg := testutil.NewConfig(tr.Server.URL)

	dir := t.TempDir()
	tmpl := filepath.Join(dir, "message.tmpl")
	broken := filepath.Join(dir, "broken.tmpl")
	payload := filepath.Join(dir, "alert.json")
	require.NoError(t, os.WriteFile(tmpl, []byte("**hello**"), 0o600))
	require.NoError(t, os.WriteFile(broken, []byte(features.BrokenTemplate), 0o600))
	require.NoError(t, os.WriteFile(payload, []byte(`{"alerts":[]}`), 0o600))

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "template file", args: []string{"-f", tmpl}, want: "md:**hello**\n"},
		{name: "plain", args: []string{"-f", tmpl, "--plain"}, want: "md:hello\n"},
		{name: "catalog template", args: []string{"--template", "<default>"}, want: "md:{{ .Status }}\n"},
		{name: "json", args: []string{"-f", tmpl, "-o", "json"}, want: "{\n  \"markdown\": \"md:**hello**\"\n}\n"},
		{name: "template error", args: []string{"-f", broken}, wantErr: "unable to render template: bad_data: template: :1: unclosed action"},
		{name: "unknown catalog template", args: []string{"--template", "nope"}, wantErr: `template "nope" not found`},
		{name: "missing file", args: []string{"-f", filepath.Join(dir, "missing")}, wantErr: "reading template file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testutil.Run(t, NewRenderCommand(), cfg, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, res.Err)
				assert.Contains(t, res.Err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Out)
		})
	}
}

func TestRenderCommand_SendsPayload(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	dir := t.TempDir()
	payload := filepath.Join(dir, "alert.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{"alerts":[]}`), 0o600))

	res := testutil.Run(t, NewRenderCommand(), testutil.NewConfig(tr.Server.URL), "-p", payload)
	require.NoError(t, res.Err)

	renders := tr.Renders()
	require.Len(t, renders, 1)
	assert.Equal(t, `{"alerts":[]}`, renders[0].SamplePayload)
}

func TestRenderCommand_ConfiguredTemplate(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	cfg := testutil.NewConfig(tr.Server.URL)
	cfg.Preview.Template = "{{ .Receiver }}"

	res := testutil.Run(t, NewRenderCommand(), cfg)
	require.NoError(t, res.Err)
	assert.Equal(t, "md:{{ .Receiver }}\n", res.Out)
}

func TestPreviewCommand_MissingFile(t *testing.T) {
	tr := features.NewTestRelay(t, features.DefaultCatalog)

	res := testutil.Run(t, NewPreviewCommand(), testutil.NewConfig(tr.Server.URL),
		"--payload-file", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "reading payload file")
}
