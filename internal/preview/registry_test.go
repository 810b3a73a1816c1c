package preview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/relay"
)

func newTestRegistry(t *testing.T, ttl time.Duration) *Registry {
	t.Helper()
	backend := stubBackend{stubRenderer: newStubRenderer(), catalog: relay.Catalog{}}
	r := NewRegistry(func(id string, sel ViewSelection) *Session {
		return NewSession(context.Background(), SessionConfig{
			ID:          id,
			Backend:     backend,
			CatalogPath: "/templates",
			Pipeline:    Config{Scheduler: NewManualScheduler()},
			Selection:   sel,
		})
	}, ttl, nil)
	t.Cleanup(r.Close)
	return r
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r := newTestRegistry(t, time.Minute)

	a := r.Create(ViewSelection{Left: TabSampleInput, Right: TabPreview})
	b := r.Create(DefaultSelection())
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, TabSampleInput, a.Selection().Left)

	got, ok := r.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	r := newTestRegistry(t, time.Minute)
	a := r.Create(DefaultSelection())
	b := r.Create(DefaultSelection())

	a.Pipeline.SetTemplateText("only a")
	a.SelectRight(TabRawMarkdown)

	assert.Equal(t, DefaultTemplate, b.Pipeline.Input().TemplateText)
	assert.Equal(t, TabPreview, b.Selection().Right)
}

func TestRegistry_Sweep(t *testing.T) {
	r := newTestRegistry(t, time.Minute)
	idle := r.Create(DefaultSelection())
	watched := r.Create(DefaultSelection())
	watched.Attach()

	assert.Equal(t, 0, r.Sweep(time.Now()))
	assert.Equal(t, 1, r.Sweep(time.Now().Add(2*time.Minute)))

	_, ok := r.Get(idle.ID)
	assert.False(t, ok)
	_, ok = r.Get(watched.ID)
	assert.True(t, ok)
}

func TestRegistry_RemoveAndClose(t *testing.T) {
	r := newTestRegistry(t, time.Minute)
	s := r.Create(DefaultSelection())

	r.Remove(s.ID)
	r.Remove(s.ID)
	assert.Equal(t, 0, r.Len())

	r.Create(DefaultSelection())
	r.Close()
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Create(DefaultSelection()))
}

func TestRegistry_RunClosesOnCancel(t *testing.T) {
	r := newTestRegistry(t, time.Minute)
	r.Create(DefaultSelection())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Hour) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 0, r.Len())
}
