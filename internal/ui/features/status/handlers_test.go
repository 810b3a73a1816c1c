package status

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/testutil"
	"github.com/leapstack-labs/relayui/internal/ui/features"
)

func setup(t *testing.T) (chi.Router, *features.TestRelay) {
	t.Helper()
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, tr.Client, relay.DefaultPaths(), 5*time.Second, testutil.NewTestLogger(t), false))
	return r, tr
}

func get(r chi.Router, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages(t *testing.T) {
	router, _ := setup(t)

	tests := []struct {
		path   string
		title  string
		source string
	}{
		{"/ui/status", "<title>Status · Relay</title>", "/status/sse/runtime"},
		{"/ui/flags", "<title>Command-Line Flags · Relay</title>", "/status/sse/flags"},
		{"/ui/config", "<title>Configuration · Relay</title>", "/status/sse/config"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(router, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.title)
			assert.Contains(t, rec.Body.String(), "@get(&#39;"+tt.source+"&#39;)")
			assert.Contains(t, rec.Body.String(), "Loading...")
		})
	}
}

func TestRuntimeSSE(t *testing.T) {
	router, _ := setup(t)

	body := get(router, "/status/sse/runtime").Body.String()

	assert.Contains(t, body, "<h2>Runtime Information</h2>")
	assert.Contains(t, body, "<h2>Build Information</h2>")
	assert.Contains(t, body, `<th class="capitalize-title">Start time</th><td class="text-break">Wed, 01 May 2024 10:00:00 GMT</td>`)
	assert.Contains(t, body, `<th class="capitalize-title">Working directory</th><td class="text-break">/srv/relay</td>`)
	assert.Contains(t, body, `<th class="capitalize-title">Goroutines</th><td class="text-break">12</td>`)
	assert.Contains(t, body, `<th class="capitalize-title">GoVersion</th>`)

	// Rows keep the relay's order.
	assert.Less(t, strings.Index(body, "Start time"), strings.Index(body, "Working directory"))
	assert.Less(t, strings.Index(body, "Goroutines"), strings.Index(body, "GOMAXPROCS"))
}

func TestRuntimeSSE_EitherFailureFailsPage(t *testing.T) {
	router, tr := setup(t)
	tr.Fail(relay.DefaultPaths().RuntimeInfo)

	body := get(router, "/status/sse/runtime").Body.String()

	assert.Contains(t, body, "internal: runtime info unavailable")
	assert.NotContains(t, body, "Build Information")
}

func TestFlagsSSE(t *testing.T) {
	router, _ := setup(t)

	body := get(router, "/status/sse/flags").Body.String()

	assert.Contains(t, body, "<h2>Command-Line Flags</h2>")
	assert.Less(t, strings.Index(body, "--config.file"), strings.Index(body, "--web.listen-address"))
	assert.Contains(t, body, ":8060")
}

func TestConfigSSE(t *testing.T) {
	router, _ := setup(t)

	body := get(router, "/status/sse/config").Body.String()

	assert.Contains(t, body, "<h2>Configuration</h2>")
	assert.Contains(t, body, "targets:")
}
