// Package catalog loads the relay's template catalog and applies a
// selected template to a preview input.
package catalog

import (
	"context"
	"sync"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/relay"
)

// TemplateSink receives the text of a selected template.
type TemplateSink interface {
	SetTemplateText(text string)
}

// Loader fetches the catalog once per mount.
type Loader struct {
	path string
	ctrl *fetch.Controller[relay.Catalog]
	once sync.Once
}

// NewLoader returns an unmounted loader for the catalog at path.
func NewLoader(ctx context.Context, fetcher fetch.Fetcher, path string, opts fetch.Options) *Loader {
	return &Loader{
		path: path,
		ctrl: fetch.NewController(ctx, fetcher, relay.Decode[relay.Catalog](), opts),
	}
}

// Mount issues the catalog fetch. Only the first call has any effect.
func (l *Loader) Mount() {
	l.once.Do(func() {
		l.ctrl.SetResource(l.path)
	})
}

// Reload retries a failed catalog fetch. A catalog that is loading or
// already loaded is left alone and NoToken is returned.
func (l *Loader) Reload() fetch.Token {
	if l.ctrl.State().Phase != fetch.Failed {
		return fetch.NoToken
	}
	return l.ctrl.Reload()
}

// State returns the catalog's fetch state.
func (l *Loader) State() fetch.State[relay.Catalog] {
	return l.ctrl.State()
}

// Wait blocks until the catalog fetch settles.
func (l *Loader) Wait(ctx context.Context) (fetch.State[relay.Catalog], error) {
	return l.ctrl.Wait(ctx)
}

// Names returns the template names in catalog order, or nil until the
// catalog has loaded.
func (l *Loader) Names() []string {
	st := l.ctrl.State()
	if st.Phase != fetch.Succeeded {
		return nil
	}
	names := make([]string, len(st.Data.Templates))
	for i, t := range st.Data.Templates {
		names[i] = t.Name
	}
	return names
}

// Template returns the template at index i.
func (l *Loader) Template(i int) (relay.Template, bool) {
	st := l.ctrl.State()
	if st.Phase != fetch.Succeeded || i < 0 || i >= len(st.Data.Templates) {
		return relay.Template{}, false
	}
	return st.Data.Templates[i], true
}

// Apply copies the text of template i into sink. An index outside the
// loaded catalog changes nothing and returns false.
func (l *Loader) Apply(i int, sink TemplateSink) bool {
	t, ok := l.Template(i)
	if !ok {
		return false
	}
	sink.SetTemplateText(t.Text)
	return true
}

// Subscribe returns a channel pinged when the catalog state changes.
func (l *Loader) Subscribe() chan struct{} {
	return l.ctrl.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (l *Loader) Unsubscribe(ch chan struct{}) {
	l.ctrl.Unsubscribe(ch)
}

// Close stops the underlying controller.
func (l *Loader) Close() {
	l.ctrl.Close()
}
