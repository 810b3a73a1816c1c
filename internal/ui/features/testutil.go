// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/testutil"
)

// BrokenTemplate makes the test relay answer with a template error.
const BrokenTemplate = "{{ broken"

// TestRelay is an in-process relay API. Render returns "md:" followed by
// the template text.
type TestRelay struct {
	Server *httptest.Server
	Client *relay.Client

	mu      sync.Mutex
	renders []relay.RenderRequest
	failing map[string]bool
}

// NewTestRelay starts a TestRelay that serves catalog.
func NewTestRelay(t *testing.T, catalog relay.Catalog) *TestRelay {
	t.Helper()
	tr := &TestRelay{failing: make(map[string]bool)}

	paths := relay.DefaultPaths()
	mux := http.NewServeMux()
	mux.HandleFunc(paths.Templates, func(w http.ResponseWriter, _ *http.Request) {
		if tr.isFailing(paths.Templates) {
			writeEnvelope(w, http.StatusInternalServerError, "error", nil, "internal", "catalog unavailable")
			return
		}
		writeEnvelope(w, http.StatusOK, "success", catalog, "", "")
	})
	mux.HandleFunc(paths.Render, func(w http.ResponseWriter, r *http.Request) {
		var req relay.RenderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "error", nil, "bad_data", err.Error())
			return
		}
		tr.mu.Lock()
		tr.renders = append(tr.renders, req)
		tr.mu.Unlock()

		if strings.Contains(req.TemplateText, BrokenTemplate) {
			writeEnvelope(w, http.StatusBadRequest, "error", nil, "bad_data", `template: :1: unclosed action`)
			return
		}
		writeEnvelope(w, http.StatusOK, "success", relay.RenderResult{Markdown: "md:" + req.TemplateText}, "", "")
	})
	mux.HandleFunc(paths.RuntimeInfo, func(w http.ResponseWriter, _ *http.Request) {
		if tr.isFailing(paths.RuntimeInfo) {
			writeEnvelope(w, http.StatusInternalServerError, "error", nil, "internal", "runtime info unavailable")
			return
		}
		writeRaw(w, `{"status":"success","data":{"startTime":"2024-05-01T10:00:00Z","CWD":"/srv/relay","goroutineCount":12,"GOMAXPROCS":4}}`)
	})
	mux.HandleFunc(paths.BuildInfo, func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, `{"status":"success","data":{"version":"1.4.0","revision":"abc123","branch":"main","goVersion":"go1.24.0"}}`)
	})
	mux.HandleFunc(paths.Flags, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", relay.Flags{"web.listen-address": ":8060", "config.file": "config.yml"}, "", "")
	})
	mux.HandleFunc(paths.Config, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", relay.ConfigDump{YAML: "targets:\n  ops: {}\n"}, "", "")
	})

	tr.Server = httptest.NewServer(mux)
	t.Cleanup(tr.Server.Close)

	client, err := relay.NewClient(relay.Config{
		BaseURL: tr.Server.URL,
		Timeout: 5 * time.Second,
		Logger:  testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	tr.Client = client
	return tr
}

// Fail makes path answer with an error envelope.
func (tr *TestRelay) Fail(path string) {
	tr.mu.Lock()
	tr.failing[path] = true
	tr.mu.Unlock()
}

func (tr *TestRelay) isFailing(path string) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.failing[path]
}

// Renders returns the render requests received so far.
func (tr *TestRelay) Renders() []relay.RenderRequest {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]relay.RenderRequest(nil), tr.renders...)
}

func writeEnvelope(w http.ResponseWriter, code int, status string, data any, errType, msg string) {
	body := map[string]any{"status": status}
	if data != nil {
		body["data"] = data
	}
	if errType != "" {
		body["errorType"] = errType
	}
	if msg != "" {
		body["error"] = msg
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRaw(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Relay        *TestRelay
	Registry     *preview.Registry
	Scheduler    *preview.ManualScheduler
	SessionStore *sessions.CookieStore
}

// DefaultCatalog is what the fixture's relay serves.
var DefaultCatalog = relay.Catalog{Templates: []relay.Template{
	{Name: "<default>", Title: `{{ template "ding.link.title" . }}`, Text: `{{ .Status }}`},
	{Name: "ding.link.content", Text: `{{ range .Alerts }}{{ .Labels.alertname }}{{ end }}`},
}}

// SetupTestFixture creates a relay, a session registry whose sessions
// debounce on one shared manual scheduler, and a cookie store.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	tr := NewTestRelay(t, DefaultCatalog)
	sched := preview.NewManualScheduler()

	registry := preview.NewRegistry(func(id string, sel preview.ViewSelection) *preview.Session {
		return preview.NewSession(context.Background(), preview.SessionConfig{
			ID:          id,
			Backend:     tr.Client,
			CatalogPath: tr.Client.Paths().Templates,
			Pipeline: preview.Config{
				Scheduler: sched,
				Timeout:   5 * time.Second,
				Logger:    logger,
			},
			Selection: sel,
		})
	}, time.Minute, logger)
	t.Cleanup(registry.Close)

	return &TestFixture{
		Relay:        tr,
		Registry:     registry,
		Scheduler:    sched,
		SessionStore: NewTestSessionStore(),
	}
}

// SignalsRequest builds a datastar request carrying signals: in the body
// for POST and in the datastar query parameter for GET.
func SignalsRequest(t *testing.T, method, path string, signals any) *http.Request {
	t.Helper()
	b, err := json.Marshal(signals)
	require.NoError(t, err)

	if method == http.MethodGet {
		return httptest.NewRequest(method, path+"?datastar="+url.QueryEscape(string(b)), nil)
	}
	r := httptest.NewRequest(method, path, strings.NewReader(string(b)))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
