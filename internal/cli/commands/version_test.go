package commands

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/cli/testutil"
)

func TestVersionCommand(t *testing.T) {
	info := BuildInfo{Version: "0.3.1", Commit: "4f2a9c1", Date: "2024-05-01T10:00:00Z"}
	cfg := testutil.NewConfig("http://relay.example:8060/prefix")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "build metadata",
			want: []string{"## relayui 0.3.1", "| Commit | 4f2a9c1 |", "| Built | 2024-05-01T10:00:00Z |", "| Go | " + runtime.Version() + " |"},
		},
		{
			name: "resolved endpoints",
			want: []string{
				"## Relay http://relay.example:8060/prefix",
				"| templates | http://relay.example:8060/prefix/api/v1/status/templates |",
				"| render | http://relay.example:8060/prefix/api/v1/status/templates/render |",
				"| config | http://relay.example:8060/prefix/api/v1/status/config |",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testutil.Run(t, NewVersionCommand(info), cfg, tt.args...)
			require.NoError(t, res.Err)
			for _, w := range tt.want {
				assert.Contains(t, res.Out, w)
			}
		})
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	info := BuildInfo{Version: "0.3.1", Commit: "4f2a9c1", Date: "unknown", Go: "go1.24.2"}
	cfg := testutil.NewConfig("http://relay.example:8060")
	cfg.Relay.Paths.Render = "/custom/render"

	res := testutil.Run(t, NewVersionCommand(info), cfg, "-o", "json")
	require.NoError(t, res.Err)

	var report versionReport
	require.NoError(t, json.Unmarshal([]byte(res.Out), &report))
	assert.Equal(t, info, report.Build)
	assert.Equal(t, "http://relay.example:8060", report.Relay)
	require.Len(t, report.Endpoints, 6)
	assert.Equal(t, endpoint{Name: "render", URL: "http://relay.example:8060/custom/render"}, report.Endpoints[1])
}

func TestVersionCommand_WithoutConfig(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "relayui dev")
	assert.NotContains(t, out.String(), "Endpoint")
}
