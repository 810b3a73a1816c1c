package tui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/relay"
)

type stubBackend struct {
	catalog relay.Catalog
}

func (b stubBackend) Fetch(context.Context, string) ([]byte, error) {
	return json.Marshal(b.catalog)
}

func (b stubBackend) Render(_ context.Context, in relay.RenderRequest) (string, error) {
	if strings.Contains(in.TemplateText, "broken") {
		return "", fetch.ApplicationError("bad_data", "unclosed action")
	}
	return "# " + in.TemplateText, nil
}

func newTestModel(t *testing.T) (Model, *preview.Session, *preview.ManualScheduler) {
	t.Helper()
	sched := preview.NewManualScheduler()
	s := preview.NewSession(context.Background(), preview.SessionConfig{
		ID: "tui",
		Backend: stubBackend{catalog: relay.Catalog{Templates: []relay.Template{
			{Name: "<default>", Text: "default"},
			{Name: "team", Text: "team text"},
		}}},
		CatalogPath: "/templates",
		Pipeline: preview.Config{
			Scheduler: sched,
			Initial:   preview.InputState{TemplateText: "hello", SamplePayload: "{}"},
		},
	})
	t.Cleanup(s.Close)
	s.Start()

	m := New(s, nil)
	t.Cleanup(m.Close)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), s, sched
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func settle(t *testing.T, m Model, s *preview.Session, sched *preview.ManualScheduler, md string) Model {
	t.Helper()
	sched.Fire()
	require.Eventually(t, func() bool {
		return s.Pipeline.Outcome().RenderedMarkdown == md
	}, 2*time.Second, 5*time.Millisecond)
	return update(t, m, pipelineMsg{})
}

func TestModel_RendersInitialInput(t *testing.T) {
	m, s, sched := newTestModel(t)
	m = settle(t, m, s, sched, "# hello")

	view := m.View()
	assert.Contains(t, view, "Template")
	assert.Contains(t, view, "Preview")
	assert.Contains(t, m.outputText(), "hello")
	assert.NotContains(t, m.outputText(), "#")
}

func TestModel_TypingEditsPipeline(t *testing.T) {
	m, s, sched := newTestModel(t)
	m = settle(t, m, s, sched, "# hello")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})

	assert.Equal(t, "hello!", s.Pipeline.Input().TemplateText)
	assert.Equal(t, preview.PendingDebounce, s.Pipeline.Phase())

	m = settle(t, m, s, sched, "# hello!")
	assert.Contains(t, m.outputText(), "hello!")
}

func TestModel_ToggleLeftEditsPayload(t *testing.T) {
	m, s, _ := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF2})
	assert.Equal(t, preview.TabSampleInput, s.Selection().Left)
	assert.Contains(t, m.View(), "Alert JSON")

	update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	in := s.Pipeline.Input()
	assert.Equal(t, "hello", in.TemplateText)
	assert.Contains(t, in.SamplePayload, "x")
}

func TestModel_ToggleRightShowsRawMarkdown(t *testing.T) {
	m, s, sched := newTestModel(t)
	m = settle(t, m, s, sched, "# hello")
	dispatched := s.Pipeline.Dispatched()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF3})

	assert.Equal(t, preview.TabRawMarkdown, s.Selection().Right)
	assert.Equal(t, "# hello", m.outputText())
	assert.Equal(t, dispatched, s.Pipeline.Dispatched(), "switching tabs never renders")
	assert.Zero(t, sched.Pending())
}

func TestModel_CatalogCycleAndLoad(t *testing.T) {
	m, s, _ := newTestModel(t)
	_, err := s.Catalog.Wait(context.Background())
	require.NoError(t, err)
	m = update(t, m, catalogMsg{})

	assert.Contains(t, m.loaderLine(), "Template 1/2: <default>")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Contains(t, m.loaderLine(), "Template 2/2: team")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Contains(t, m.loaderLine(), "Template 1/2: <default>")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Contains(t, m.loaderLine(), "Template 2/2: team")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, "team text", s.Pipeline.Input().TemplateText)
	assert.Equal(t, "team text", m.template.Value())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Equal(t, "hello", s.Pipeline.Input().TemplateText)
	assert.Equal(t, "hello", m.template.Value())
}

func TestModel_RetryKeyLeavesLoadedCatalog(t *testing.T) {
	m, s, _ := newTestModel(t)
	_, err := s.Catalog.Wait(context.Background())
	require.NoError(t, err)
	m = update(t, m, catalogMsg{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, fetch.Succeeded, s.Catalog.State().Phase)
	assert.Contains(t, m.loaderLine(), "Template 2/2: team")
}

func TestModel_FailureShowsWarningAndKeepsOutput(t *testing.T) {
	m, s, sched := newTestModel(t)
	m = settle(t, m, s, sched, "# hello")

	s.Pipeline.SetTemplateText("broken")
	sched.Fire()
	require.Eventually(t, func() bool {
		return s.Pipeline.Outcome().Failed()
	}, 2*time.Second, 5*time.Millisecond)
	m = update(t, m, pipelineMsg{})

	assert.Contains(t, m.loaderLine(), "Unable to render template: bad_data: unclosed action")
	assert.Contains(t, m.outputText(), "hello")
	assert.Equal(t, "broken", m.template.Value())
}

func TestModel_FileEdit(t *testing.T) {
	tests := []struct {
		name     string
		edit     FileEdit
		template string
		payload  string
	}{
		{name: "template", edit: FileEdit{Tab: preview.TabTemplate, Text: "from file"}, template: "from file", payload: "{}"},
		{name: "payload", edit: FileEdit{Tab: preview.TabSampleInput, Text: `{"a":1}`}, template: "hello", payload: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _ := newTestModel(t)
			m = update(t, m, fileEditMsg(tt.edit))

			assert.Equal(t, preview.InputState{TemplateText: tt.template, SamplePayload: tt.payload}, s.Pipeline.Input())
			assert.Equal(t, tt.template, m.template.Value())
			assert.Equal(t, tt.payload, m.payload.Value())
		})
	}
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewBeforeSize(t *testing.T) {
	sched := preview.NewManualScheduler()
	s := preview.NewSession(context.Background(), preview.SessionConfig{Pipeline: preview.Config{Scheduler: sched}})
	t.Cleanup(s.Close)
	m := New(s, nil)
	t.Cleanup(m.Close)

	assert.Equal(t, "Loading...", m.View())
}
