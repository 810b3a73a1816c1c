package playground

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/ui/features/common"
	"github.com/leapstack-labs/relayui/internal/ui/features/playground/components"
)

const (
	// cookieName is the browser session that remembers tab choices.
	cookieName = "relayui"
	leftKey    = "left"
	rightKey   = "right"
)

// Handlers provides HTTP handlers for the playground feature.
type Handlers struct {
	registry     *preview.Registry
	sessionStore sessions.Store
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *preview.Registry, sessionStore sessions.Store, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		registry:     registry,
		sessionStore: sessionStore,
		logger:       logger,
		isDev:        isDev,
	}
}

// PlaygroundPage starts a preview session and renders the page for it.
func (h *Handlers) PlaygroundPage(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create(h.loadSelection(r))
	if s == nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	page := common.PageData{Title: "Playground", CurrentPath: common.PlaygroundPath, IsDev: h.isDev}
	if err := components.Page(page, components.NewView(s)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// PlaygroundUpdates is the long-lived SSE endpoint of one playground page.
// It pushes the output pane and warning after every render and the
// loader whenever the catalog settles.
func (h *Handlers) PlaygroundUpdates(w http.ResponseWriter, r *http.Request) {
	var signals SessionSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	s, ok := h.registry.Get(signals.SessionID)
	if !ok {
		// Expired or from before a restart: start over with a fresh session.
		_ = sse.Redirect(common.PlaygroundPath)
		return
	}

	s.Attach()
	defer s.Detach()

	renders := s.Pipeline.Subscribe()
	defer s.Pipeline.Unsubscribe(renders)
	catalog := s.Catalog.Subscribe()
	defer s.Catalog.Unsubscribe(catalog)

	// Anything that settled between the page render and the subscription.
	if err := h.sendOutput(sse, s); err != nil {
		_ = sse.ConsoleError(err)
	}
	if err := sse.PatchElementTempl(components.Loader(components.NewView(s))); err != nil {
		_ = sse.ConsoleError(err)
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-renders:
			if !ok {
				return
			}
			if err := h.sendOutput(sse, s); err != nil {
				_ = sse.ConsoleError(err)
			}
		case _, ok := <-catalog:
			if !ok {
				return
			}
			if err := sse.PatchElementTempl(components.Loader(components.NewView(s))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) sendOutput(sse *datastar.ServerSentEventGenerator, s *preview.Session) error {
	v := components.NewView(s)
	if err := sse.PatchElementTempl(components.RightPane(v)); err != nil {
		return err
	}
	return sse.PatchElementTempl(components.Warning(v))
}

// Edit applies the page's current inputs to its pipeline.
func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request) {
	var signals EditSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, ok := h.registry.Get(signals.SessionID)
	if !ok {
		_ = datastar.NewSSE(w, r).Redirect(common.PlaygroundPath)
		return
	}

	in := preview.InputState{TemplateText: signals.Template, SamplePayload: signals.Payload}
	if in != s.Pipeline.Input() {
		s.Pipeline.Edit(in)
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectTab switches one tab group. It never touches the input or
// triggers a render.
func (h *Handlers) SelectTab(w http.ResponseWriter, r *http.Request) {
	var signals SessionSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, ok := h.registry.Get(signals.SessionID)
	if !ok {
		_ = datastar.NewSSE(w, r).Redirect(common.PlaygroundPath)
		return
	}

	group, name := chi.URLParam(r, "group"), chi.URLParam(r, "tab")
	var sel preview.ViewSelection
	switch group {
	case "left":
		tab, ok := preview.ParseLeftTab(name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		sel = s.SelectLeft(tab)
	case "right":
		tab, ok := preview.ParseRightTab(name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		sel = s.SelectRight(tab)
	default:
		http.NotFound(w, r)
		return
	}

	h.saveSelection(w, r, sel)

	sse := datastar.NewSSE(w, r)
	v := components.NewView(s)
	pane := components.RightPane(v)
	if group == "left" {
		pane = components.LeftPane(v)
	}
	if err := sse.PatchElementTempl(pane); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ApplyCatalog loads the selected catalog entry into the template field.
// An index that is not in the loaded catalog does nothing.
func (h *Handlers) ApplyCatalog(w http.ResponseWriter, r *http.Request) {
	var signals CatalogSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, ok := h.registry.Get(signals.SessionID)
	if !ok {
		_ = datastar.NewSSE(w, r).Redirect(common.PlaygroundPath)
		return
	}

	idx := int(signals.CatalogIndex)
	if idx == components.DefaultCatalogIndex {
		s.LoadDefaultTemplate()
	} else if !s.LoadTemplate(idx) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(map[string]any{
		"template": s.Pipeline.Input().TemplateText,
	}); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ClosePage drops the page's session when the browser leaves it.
// Sessions whose pages never report back are left to the idle sweep.
func (h *Handlers) ClosePage(w http.ResponseWriter, r *http.Request) {
	var signals SessionSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if signals.SessionID != "" {
		h.registry.Remove(signals.SessionID)
		h.logger.Debug("preview session closed by page", "session", signals.SessionID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadSelection reads the remembered tabs. Anything unreadable falls
// back to the defaults.
func (h *Handlers) loadSelection(r *http.Request) preview.ViewSelection {
	sel := preview.DefaultSelection()
	if h.sessionStore == nil {
		return sel
	}
	sess, err := h.sessionStore.Get(r, cookieName)
	if err != nil {
		return sel
	}
	if v, ok := sess.Values[leftKey].(string); ok {
		sel.Left = preview.LeftTab(v)
	}
	if v, ok := sess.Values[rightKey].(string); ok {
		sel.Right = preview.RightTab(v)
	}
	return sel.Normalize()
}

func (h *Handlers) saveSelection(w http.ResponseWriter, r *http.Request, sel preview.ViewSelection) {
	if h.sessionStore == nil {
		return
	}
	sess, err := h.sessionStore.Get(r, cookieName)
	if err != nil && sess == nil {
		h.logger.Debug("tab preference unavailable", "error", err)
		return
	}
	sess.Values[leftKey] = string(sel.Left)
	sess.Values[rightKey] = string(sel.Right)
	if err := sess.Save(r, w); err != nil {
		h.logger.Debug("saving tab preference", "error", err)
	}
}
