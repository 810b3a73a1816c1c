package components

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/ui/features/common"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestWithStatusIndicator(t *testing.T) {
	tests := []struct {
		name       string
		state      fetch.State[string]
		errorText  string
		want       string
		wantCalled bool
	}{
		{name: "idle", state: fetch.IdleState[string](), want: "Loading..."},
		{name: "loading", state: fetch.LoadingState[string](), want: "Loading..."},
		{name: "failed uses load message", state: fetch.FailedState[string](errors.New("connection refused")), want: "connection refused"},
		{name: "failed prefers error text", state: fetch.FailedState[string](errors.New("boom")), errorText: "Could not load status", want: "Could not load status"},
		{name: "succeeded", state: fetch.SuccessState("payload"), want: "<p>payload</p>", wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			content := func(s string) templ.Component {
				called = true
				return templ.Raw("<p>" + templ.EscapeString(s) + "</p>")
			}

			html := render(t, WithStatusIndicator(tt.state, tt.errorText, content))

			assert.Contains(t, html, tt.want)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestIdleAndLoadingLookTheSame(t *testing.T) {
	never := func(string) templ.Component {
		t.Fatal("content must not be rendered")
		return nil
	}
	idle := render(t, WithStatusIndicator(fetch.IdleState[string](), "", never))
	loading := render(t, WithStatusIndicator(fetch.LoadingState[string](), "", never))
	assert.Equal(t, idle, loading)
}

func TestErrorBanner_Escapes(t *testing.T) {
	html := render(t, ErrorBanner(`<script>"x"</script>`))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestLayout(t *testing.T) {
	body := templ.Raw(`<div id="body"></div>`)

	html := render(t, Layout(common.PageData{Title: "Playground", CurrentPath: common.PlaygroundPath}, body))

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<title>Playground · Relay</title>")
	assert.Contains(t, html, `<div id="body"></div>`)
	assert.Contains(t, html, DatastarScript)
	assert.NotContains(t, html, "/reload")

	dev := render(t, Layout(common.PageData{Title: "x", IsDev: true}, body))
	assert.Contains(t, dev, `data-init="@get('/reload')"`)
}

func TestNavbar(t *testing.T) {
	html := render(t, Navbar(common.FlagsPath))

	assert.Contains(t, html, `class="navbar-brand" href="/ui/playground"`)
	assert.Contains(t, html, `class="nav-link active">Status</summary>`)
	assert.Contains(t, html, `class="dropdown-item active" href="/ui/flags">Command-Line Flags</a>`)
	assert.Contains(t, html, `class="nav-link" href="/ui/playground">Playground</a>`)
}
