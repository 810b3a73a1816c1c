package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/fetch"
)

const catalogJSON = `{"templates":[
	{"name":"<default>","title":"{{ template \"ding.link.title\" . }}","text":"{{ .Status }}"},
	{"name":"ding.link.content","text":"{{ range .Alerts }}{{ .Labels.alertname }}{{ end }}"}
]}`

type countingFetcher struct {
	mu    sync.Mutex
	calls int
	body  string
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, resource string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSink struct {
	texts []string
}

func (s *recordingSink) SetTemplateText(text string) {
	s.texts = append(s.texts, text)
}

func mountAndWait(t *testing.T, f fetch.Fetcher) *Loader {
	t.Helper()
	l := NewLoader(context.Background(), f, "/templates", fetch.Options{})
	t.Cleanup(l.Close)
	l.Mount()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := l.Wait(ctx)
	require.NoError(t, err)
	return l
}

func TestLoader_IdleUntilMounted(t *testing.T) {
	f := &countingFetcher{body: catalogJSON}
	l := NewLoader(context.Background(), f, "/templates", fetch.Options{})
	defer l.Close()

	assert.Equal(t, fetch.Idle, l.State().Phase)
	assert.Nil(t, l.Names())
	assert.Equal(t, 0, f.count())
}

func TestLoader_MountFetchesOnce(t *testing.T) {
	f := &countingFetcher{body: catalogJSON}
	l := mountAndWait(t, f)

	l.Mount()
	l.Mount()

	assert.Equal(t, 1, f.count())
	assert.Equal(t, fetch.Succeeded, l.State().Phase)
	assert.Equal(t, []string{"<default>", "ding.link.content"}, l.Names())
}

func TestLoader_Apply(t *testing.T) {
	l := mountAndWait(t, &countingFetcher{body: catalogJSON})

	tests := []struct {
		name  string
		index int
		ok    bool
		want  []string
	}{
		{name: "first", index: 0, ok: true, want: []string{"{{ .Status }}"}},
		{name: "second", index: 1, ok: true, want: []string{"{{ range .Alerts }}{{ .Labels.alertname }}{{ end }}"}},
		{name: "negative", index: -1, ok: false},
		{name: "past end", index: 2, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			assert.Equal(t, tt.ok, l.Apply(tt.index, sink))
			assert.Equal(t, tt.want, sink.texts)
		})
	}
}

func TestLoader_ApplyBeforeLoadIsNoop(t *testing.T) {
	l := NewLoader(context.Background(), &countingFetcher{body: catalogJSON}, "/templates", fetch.Options{})
	defer l.Close()

	sink := &recordingSink{}
	assert.False(t, l.Apply(0, sink))
	assert.Empty(t, sink.texts)
}

func TestLoader_FailureAndReload(t *testing.T) {
	f := &countingFetcher{err: fetch.TransportError(errors.New("connection refused"))}
	l := mountAndWait(t, f)

	st := l.State()
	require.Equal(t, fetch.Failed, st.Phase)
	assert.Equal(t, "connection refused", st.ErrorMessage())
	assert.Nil(t, l.Names())

	f.mu.Lock()
	f.err = nil
	f.body = catalogJSON
	f.mu.Unlock()

	require.NotEqual(t, fetch.NoToken, l.Reload())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := l.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, fetch.Succeeded, st.Phase)
	assert.Len(t, l.Names(), 2)
	assert.Equal(t, 2, f.count())
}

func TestLoader_ReloadKeepsLoadedCatalog(t *testing.T) {
	f := &countingFetcher{body: catalogJSON}
	l := mountAndWait(t, f)

	assert.Equal(t, fetch.NoToken, l.Reload())
	assert.Equal(t, fetch.NoToken, l.Reload())

	assert.Equal(t, 1, f.count())
	assert.Equal(t, fetch.Succeeded, l.State().Phase)
	assert.Equal(t, []string{"<default>", "ding.link.content"}, l.Names())
}

func TestLoader_ReloadBeforeMountIsNoop(t *testing.T) {
	f := &countingFetcher{body: catalogJSON}
	l := NewLoader(context.Background(), f, "/templates", fetch.Options{})
	defer l.Close()

	assert.Equal(t, fetch.NoToken, l.Reload())
	assert.Equal(t, fetch.Idle, l.State().Phase)
	assert.Equal(t, 0, f.count())
}

func TestLoader_DecodeFailure(t *testing.T) {
	l := mountAndWait(t, &countingFetcher{body: `{"templates":"nope"}`})

	st := l.State()
	require.Equal(t, fetch.Failed, st.Phase)
	assert.Equal(t, fetch.KindDecode, st.Err.Kind)
}
