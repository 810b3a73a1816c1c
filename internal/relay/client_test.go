package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/fetch"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr string
	}{
		{name: "empty", baseURL: "", wantErr: "required"},
		{name: "bad scheme", baseURL: "ftp://relay:8060", wantErr: "scheme"},
		{name: "unparseable", baseURL: "http://[::1", wantErr: "invalid relay URL"},
		{name: "ok", baseURL: "http://localhost:8060"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(Config{BaseURL: tt.baseURL})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultPaths(), c.Paths())
		})
	}
}

func TestClient_FetchCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status/templates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"templates":[
			{"name":"<default>","title":"{{ template \"ding.link.title\" . }}","text":"default text"},
			{"name":"webhook1","title":"t1","text":"custom text"}]}}`)
	})
	c := newTestClient(t, mux)

	body, err := c.Fetch(context.Background(), c.Paths().Templates)
	require.NoError(t, err)

	catalog, err := Decode[Catalog]()(body)
	require.NoError(t, err)
	require.Len(t, catalog.Templates, 2)
	assert.Equal(t, "<default>", catalog.Templates[0].Name)
	assert.Equal(t, "custom text", catalog.Templates[1].Text)
}

func TestClient_BasePathIsPreserved(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, `{"status":"success","data":{}}`)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/relay/"})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "/api/v1/status/flags")
	require.NoError(t, err)
	assert.Equal(t, "/relay/api/v1/status/flags", gotPath)
}

func TestClient_Render(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status/templates/render", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"markdown":"# T2"}}`)
	})
	c := newTestClient(t, mux)

	md, err := c.Render(context.Background(), RenderRequest{TemplateText: "T2", SamplePayload: "{}"})

	require.NoError(t, err)
	assert.Equal(t, "# T2", md)
	assert.Equal(t, map[string]string{"text": "T2", "demoAlertJSON": "{}"}, got)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		wantKind fetch.Kind
		wantMsg  string
	}{
		{
			name:     "application error envelope",
			code:     http.StatusBadRequest,
			body:     `{"status":"error","errorType":"bad_data","error":"template: :1: unexpected \"}\""}`,
			wantKind: fetch.KindApplication,
			wantMsg:  `bad_data: template: :1: unexpected "}"`,
		},
		{
			name:     "error status with 200",
			code:     http.StatusOK,
			body:     `{"status":"error","error":"boom"}`,
			wantKind: fetch.KindApplication,
			wantMsg:  "boom",
		},
		{
			name:     "non-2xx without envelope",
			code:     http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantKind: fetch.KindApplication,
			wantMsg:  "http: server returned 502 Bad Gateway",
		},
		{
			name:     "non-2xx with success envelope",
			code:     http.StatusInternalServerError,
			body:     `{"status":"success"}`,
			wantKind: fetch.KindApplication,
			wantMsg:  "server returned 500 Internal Server Error",
		},
		{
			name:     "malformed body",
			code:     http.StatusOK,
			body:     `{"status":`,
			wantKind: fetch.KindDecode,
		},
		{
			name:     "unknown status",
			code:     http.StatusOK,
			body:     `{"status":"pending"}`,
			wantKind: fetch.KindDecode,
			wantMsg:  `unknown response status "pending"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.code, tt.body)
			}))

			_, err := c.Render(context.Background(), RenderRequest{TemplateText: "x"})
			require.Error(t, err)

			d := fetch.Describe(err)
			assert.Equal(t, tt.wantKind, d.Kind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, d.Message)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "/api/v1/status/buildinfo")
	require.Error(t, err)
	assert.Equal(t, fetch.KindTransport, fetch.Describe(err).Kind)
}

func TestClient_DrivesController(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status/runtimeinfo", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"CWD":"/srv","goroutineCount":12}}`)
	})
	c := newTestClient(t, mux)

	ctrl := fetch.NewResource(context.Background(), c, c.Paths().RuntimeInfo, Decode[Info](), fetch.Options{})
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := ctrl.Wait(ctx)
	require.NoError(t, err)

	require.Equal(t, fetch.Succeeded, st.Phase)
	assert.Equal(t, []string{"CWD", "goroutineCount"}, st.Data.Keys())
	cwd, ok := st.Data.Get("CWD")
	require.True(t, ok)
	assert.Equal(t, "/srv", cwd)
}
