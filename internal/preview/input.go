// Package preview implements the debounced edit → render loop behind the
// template playground.
//
// Each preview session owns one Pipeline. Edits reset a debounce timer;
// when the timer expires the current input is snapshotted and rendered
// under a fresh token, and only the response for the latest token is
// ever shown.
package preview

import (
	_ "embed"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/relay"
)

// DefaultTemplate is the template text a new session starts with.
const DefaultTemplate = `{{ template "ding.link.content" . }}`

// SampleAlert is an Alertmanager webhook payload used as the initial sample input.
//
//go:embed sample_alert.json
var SampleAlert string

// InputState is what the operator edits.
type InputState struct {
	TemplateText  string
	SamplePayload string
}

// DefaultInput returns the input a new session starts with.
func DefaultInput() InputState {
	return InputState{
		TemplateText:  DefaultTemplate,
		SamplePayload: SampleAlert,
	}
}

func (in InputState) request() relay.RenderRequest {
	return relay.RenderRequest{
		TemplateText:  in.TemplateText,
		SamplePayload: in.SamplePayload,
	}
}

// RenderOutcome is the result of the latest non-stale render.
type RenderOutcome struct {
	Succeeded        bool
	RenderedMarkdown string
	// ErrorMessage is set when the latest render failed. RenderedMarkdown
	// then still holds the last good result.
	ErrorMessage string
	// Input is the snapshot the outcome was rendered from.
	Input InputState
	Token fetch.Token
}

// Failed reports whether the latest render failed.
func (o RenderOutcome) Failed() bool {
	return !o.Succeeded && o.ErrorMessage != ""
}

// Empty reports whether no render has resolved yet.
func (o RenderOutcome) Empty() bool {
	return o.Token == fetch.NoToken
}
