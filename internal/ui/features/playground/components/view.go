// Package components renders the template playground.
package components

import (
	"encoding/json"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/relay"
)

// Element IDs patched over SSE.
const (
	PlaygroundID = "playground"
	LoaderID     = "template-loader"
	WarningID    = "render-warning"
	LeftPaneID   = "left-pane"
	RightPaneID  = "right-pane"
)

// DefaultCatalogIndex is the loader option that restores the built-in template.
const DefaultCatalogIndex = -1

// View is everything the playground renders, read from one session.
type View struct {
	SessionID string
	Input     preview.InputState
	Outcome   preview.RenderOutcome
	Phase     preview.Phase
	Selection preview.ViewSelection
	Catalog   fetch.State[relay.Catalog]
}

// NewView snapshots s.
func NewView(s *preview.Session) View {
	snap := s.Pipeline.Snapshot()
	return View{
		SessionID: s.ID,
		Input:     snap.Input,
		Outcome:   snap.Outcome,
		Phase:     snap.Phase,
		Selection: s.Selection(),
		Catalog:   s.Catalog.State(),
	}
}

type signals struct {
	SessionID    string `json:"sid"`
	Template     string `json:"template"`
	Payload      string `json:"payload"`
	CatalogIndex int    `json:"catalogIndex"`
}

func (v View) signals() string {
	b, _ := json.Marshal(signals{
		SessionID:    v.SessionID,
		Template:     v.Input.TemplateText,
		Payload:      v.Input.SamplePayload,
		CatalogIndex: DefaultCatalogIndex,
	})
	return string(b)
}
