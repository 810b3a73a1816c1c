package preview

import (
	"context"
	"sync"
	"time"

	"github.com/leapstack-labs/relayui/internal/catalog"
	"github.com/leapstack-labs/relayui/internal/fetch"
)

// Backend is everything a session needs from the relay.
type Backend interface {
	fetch.Fetcher
	Renderer
}

// SessionConfig holds configuration for a Session.
type SessionConfig struct {
	ID          string
	Backend     Backend
	CatalogPath string
	Pipeline    Config
	Selection   ViewSelection
}

// Session is one operator's playground: a pipeline, a catalog and a tab
// selection. Each open page owns its own session.
type Session struct {
	ID       string
	Pipeline *Pipeline
	Catalog  *catalog.Loader

	cancel  context.CancelFunc
	initial InputState

	mu        sync.Mutex
	selection ViewSelection
	lastSeen  time.Time
	attached  int
}

// NewSession creates a session. Nothing is fetched until Start.
func NewSession(ctx context.Context, cfg SessionConfig) *Session {
	ctx, cancel := context.WithCancel(ctx)

	pcfg := cfg.Pipeline
	if pcfg.Renderer == nil && cfg.Backend != nil {
		pcfg.Renderer = cfg.Backend
	}
	if pcfg.Initial == (InputState{}) {
		pcfg.Initial = DefaultInput()
	}

	var fetcher fetch.Fetcher
	if cfg.Backend != nil {
		fetcher = cfg.Backend
	}

	return &Session{
		ID:       cfg.ID,
		Pipeline: NewPipeline(ctx, pcfg),
		Catalog: catalog.NewLoader(ctx, fetcher, cfg.CatalogPath, fetch.Options{
			Timeout: pcfg.Timeout,
			Logger:  pcfg.Logger,
		}),
		cancel:    cancel,
		initial:   pcfg.Initial,
		selection: cfg.Selection.Normalize(),
		lastSeen:  time.Now(),
	}
}

// Start mounts the catalog and schedules the initial render.
func (s *Session) Start() {
	s.Catalog.Mount()
	s.Pipeline.Start()
}

// Selection returns the current tab selection.
func (s *Session) Selection() ViewSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Select replaces the tab selection. Input and outcome are untouched.
func (s *Session) Select(sel ViewSelection) ViewSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel.Normalize()
	return s.selection
}

// SelectLeft switches the left pane.
func (s *Session) SelectLeft(tab LeftTab) ViewSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Left = tab
	s.selection = s.selection.Normalize()
	return s.selection
}

// SelectRight switches the right pane.
func (s *Session) SelectRight(tab RightTab) ViewSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Right = tab
	s.selection = s.selection.Normalize()
	return s.selection
}

// LoadTemplate applies catalog entry i to the pipeline. It reports false
// and leaves the input alone when i is not a loaded template.
func (s *Session) LoadTemplate(i int) bool {
	return s.Catalog.Apply(i, s.Pipeline)
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Attach marks the session as watched by a live connection.
func (s *Session) Attach() {
	s.mu.Lock()
	s.attached++
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Detach undoes Attach.
func (s *Session) Detach() {
	s.mu.Lock()
	if s.attached > 0 {
		s.attached--
	}
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LoadDefaultTemplate puts the session's initial template text back.
func (s *Session) LoadDefaultTemplate() {
	s.Pipeline.SetTemplateText(s.initial.TemplateText)
}

// IdleSince reports how long the session has gone without activity. An
// attached session is never idle.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached > 0 {
		return 0
	}
	return now.Sub(s.lastSeen)
}

// Close stops the pipeline and the catalog and cancels their loads.
func (s *Session) Close() {
	s.Pipeline.Close()
	s.Catalog.Close()
	s.cancel()
}
