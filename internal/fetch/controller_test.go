package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

// gatedFetcher returns the resource name as a JSON string. Resources with a
// gate block until the gate is released.
type gatedFetcher struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	calls    map[string]int
	returned map[string]chan struct{}
	fail     map[string]error
}

func newGatedFetcher(gated ...string) *gatedFetcher {
	g := &gatedFetcher{
		gates:    make(map[string]chan struct{}),
		calls:    make(map[string]int),
		returned: make(map[string]chan struct{}),
		fail:     make(map[string]error),
	}
	for _, r := range gated {
		g.gates[r] = make(chan struct{})
		g.returned[r] = make(chan struct{})
	}
	return g
}

func (g *gatedFetcher) Fetch(ctx context.Context, resource string) ([]byte, error) {
	g.mu.Lock()
	g.calls[resource]++
	gate := g.gates[resource]
	done := g.returned[resource]
	failure := g.fail[resource]
	g.mu.Unlock()

	if done != nil {
		defer close(done)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	return json.Marshal(resource)
}

func (g *gatedFetcher) release(resource string) {
	close(g.gates[resource])
}

func (g *gatedFetcher) callCount(resource string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[resource]
}

func decodeString(body []byte) (string, error) {
	var s string
	err := json.Unmarshal(body, &s)
	return s, err
}

func waitSettled[T any](t *testing.T, c *Controller[T]) State[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := c.Wait(ctx)
	require.NoError(t, err)
	return st
}

// =============================================================================
// Resource loading
// =============================================================================

func TestController_NewResourceLoadsImmediately(t *testing.T) {
	f := newGatedFetcher("/templates")
	c := NewResource(context.Background(), f, "/templates", decodeString, Options{})
	defer c.Close()

	assert.Equal(t, Loading, c.State().Phase)
	assert.True(t, c.State().Pending())

	f.release("/templates")
	st := waitSettled(t, c)

	assert.Equal(t, Succeeded, st.Phase)
	assert.Equal(t, "/templates", st.Data)
	assert.Equal(t, 1, f.callCount("/templates"))
}

func TestController_IdleUntilFirstLoad(t *testing.T) {
	c := NewController[string](context.Background(), newGatedFetcher(), decodeString, Options{})
	defer c.Close()

	st := c.State()
	assert.Equal(t, Idle, st.Phase)
	assert.True(t, st.Pending(), "idle must render like loading")
	assert.Equal(t, NoToken, c.Latest())
}

func TestController_SameResourceIsNoop(t *testing.T) {
	f := newGatedFetcher()
	c := NewResource(context.Background(), f, "/a", decodeString, Options{})
	defer c.Close()
	waitSettled(t, c)

	tok := c.SetResource("/a")

	assert.Equal(t, NoToken, tok)
	assert.Equal(t, 1, f.callCount("/a"))
	assert.Equal(t, Succeeded, c.State().Phase)
}

func TestController_ResourceChangeReloads(t *testing.T) {
	f := newGatedFetcher()
	c := NewResource(context.Background(), f, "/a", decodeString, Options{})
	defer c.Close()
	waitSettled(t, c)

	tok := c.SetResource("/b")
	assert.NotEqual(t, NoToken, tok)

	st := waitSettled(t, c)
	assert.Equal(t, "/b", st.Data)
	assert.Equal(t, "/b", c.Resource())
}

func TestController_StaleResultIsDiscarded(t *testing.T) {
	f := newGatedFetcher("/old", "/new")
	c := NewResource(context.Background(), f, "/old", decodeString, Options{})
	defer c.Close()

	var settled atomic.Int32
	c.OnSettle(func(Token, State[string]) { settled.Add(1) })

	c.SetResource("/new")

	// Newer load finishes first.
	f.release("/new")
	st := waitSettled(t, c)
	require.Equal(t, "/new", st.Data)

	// The superseded load completes afterwards and must not win.
	f.release("/old")
	<-f.returned["/old"]
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, "/new", c.State().Data)
	assert.Equal(t, int32(1), settled.Load(), "only the latest load settles")
}

// =============================================================================
// Failures
// =============================================================================

func TestController_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fetchErr error
		decode   Decoder[string]
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "transport failure",
			fetchErr: TransportError(errors.New("connection refused")),
			decode:   decodeString,
			wantKind: KindTransport,
			wantMsg:  "connection refused",
		},
		{
			name:     "application failure",
			fetchErr: ApplicationError("bad_data", "template: unexpected EOF"),
			decode:   decodeString,
			wantKind: KindApplication,
			wantMsg:  "bad_data: template: unexpected EOF",
		},
		{
			name: "decode failure",
			decode: func([]byte) (string, error) {
				return "", errors.New("unexpected end of JSON input")
			},
			wantKind: KindDecode,
			wantMsg:  "unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGatedFetcher()
			if tt.fetchErr != nil {
				f.fail["/r"] = tt.fetchErr
			}
			c := NewResource(context.Background(), f, "/r", tt.decode, Options{})
			defer c.Close()

			st := waitSettled(t, c)

			require.Equal(t, Failed, st.Phase)
			require.NotNil(t, st.Err)
			assert.Equal(t, tt.wantKind, st.Err.Kind)
			assert.Equal(t, tt.wantMsg, st.ErrorMessage())
		})
	}
}

func TestController_NoAutomaticRetry(t *testing.T) {
	f := newGatedFetcher()
	f.fail["/r"] = TransportError(errors.New("boom"))
	c := NewResource(context.Background(), f, "/r", decodeString, Options{})
	defer c.Close()

	waitSettled(t, c)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, f.callCount("/r"))

	f.mu.Lock()
	delete(f.fail, "/r")
	f.mu.Unlock()

	assert.NotEqual(t, NoToken, c.Reload())
	st := waitSettled(t, c)
	assert.Equal(t, Succeeded, st.Phase)
	assert.Equal(t, 2, f.callCount("/r"))
}

func TestController_Timeout(t *testing.T) {
	f := newGatedFetcher("/slow")
	c := NewResource(context.Background(), f, "/slow", decodeString, Options{Timeout: 20 * time.Millisecond})
	defer c.Close()

	st := waitSettled(t, c)

	assert.Equal(t, Failed, st.Phase)
	assert.Equal(t, KindTransport, st.Err.Kind)
	assert.Equal(t, "request timed out", st.ErrorMessage())
}

// =============================================================================
// FetchNow
// =============================================================================

func TestController_FetchNowOutOfOrder(t *testing.T) {
	c := NewController[string](context.Background(), nil, nil, Options{})
	defer c.Close()

	first := make(chan struct{})
	firstDone := make(chan struct{})
	second := make(chan struct{})

	t1 := c.FetchNow(func(context.Context) (string, error) {
		defer close(firstDone)
		<-first
		return "first", nil
	})
	t2 := c.FetchNow(func(context.Context) (string, error) {
		<-second
		return "second", nil
	})
	require.Greater(t, t2, t1)
	assert.Equal(t, t2, c.Latest())

	close(second)
	st := waitSettled(t, c)
	require.Equal(t, "second", st.Data)

	close(first)
	<-firstDone
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, "second", c.State().Data)
}

func TestController_ReloadWithoutFetcher(t *testing.T) {
	c := NewController[string](context.Background(), nil, nil, Options{})
	defer c.Close()

	assert.Equal(t, NoToken, c.Reload())
	assert.Equal(t, Idle, c.State().Phase)
}

// =============================================================================
// Wait / Close
// =============================================================================

func TestController_WaitHonoursContext(t *testing.T) {
	f := newGatedFetcher("/r")
	c := NewResource(context.Background(), f, "/r", decodeString, Options{})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	st, err := c.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Loading, st.Phase)
}

func TestController_CloseUnblocksWait(t *testing.T) {
	f := newGatedFetcher("/r")
	c := NewResource(context.Background(), f, "/r", decodeString, Options{})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Wait(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	c.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Close")
	}

	assert.Equal(t, NoToken, c.SetResource("/other"))
	assert.Equal(t, NoToken, c.FetchNow(func(context.Context) (string, error) { return "", nil }))
}

func TestController_SubscribeReceivesChanges(t *testing.T) {
	f := newGatedFetcher("/r")
	c := NewController[string](context.Background(), f, decodeString, Options{})
	defer c.Close()

	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	c.SetResource("/r")
	select {
	case <-ch:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no ping for loading transition")
	}

	f.release("/r")
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no ping for settle")
	}
	assert.Eventually(t, func() bool { return c.State().Phase == Succeeded }, time.Second, 5*time.Millisecond)
}
