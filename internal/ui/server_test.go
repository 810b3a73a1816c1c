package ui

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/testutil"
	"github.com/leapstack-labs/relayui/internal/ui/features"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tr := features.NewTestRelay(t, features.DefaultCatalog)
	return NewServer(Config{
		Client:        tr.Client,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Debounce:      10 * time.Millisecond,
		Timeout:       5 * time.Second,
		Logger:        testutil.NewTestLogger(t),
	})
}

func TestServer_Handler(t *testing.T) {
	s := newTestServer(t)
	h, err := s.Handler()
	require.NoError(t, err)
	t.Cleanup(s.Registry().Close)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/playground", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.Registry().Len())
}

func TestServer_ServeListenerShutsDown(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/ui/playground")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, strings.Contains(body, "template-loader"))
	assert.Equal(t, 1, s.Registry().Len())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 0, s.Registry().Len())
}
