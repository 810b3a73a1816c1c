// Package tui is the terminal rendition of the template playground: an
// editor on the left, the rendered message on the right.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/markdown"
	"github.com/leapstack-labs/relayui/internal/preview"
)

type (
	pipelineMsg struct{}
	catalogMsg  struct{}
	fileEditMsg FileEdit
)

// Model is the bubbletea model of one terminal preview session.
type Model struct {
	session *preview.Session
	help    help.Model

	template textarea.Model
	payload  textarea.Model
	output   viewport.Model

	pipelineCh chan struct{}
	catalogCh  chan struct{}
	edits      <-chan FileEdit

	snapshot preview.Snapshot
	names    []string
	cursor   int

	width  int
	height int
}

// New creates a model bound to s. edits may be nil.
func New(s *preview.Session, edits <-chan FileEdit) Model {
	in := s.Pipeline.Input()

	ta := textarea.New()
	ta.Placeholder = "Template text"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetValue(in.TemplateText)

	pa := textarea.New()
	pa.Placeholder = "Alert JSON"
	pa.ShowLineNumbers = true
	pa.CharLimit = 0
	pa.MaxHeight = 0
	pa.SetValue(in.SamplePayload)

	m := Model{
		session:    s,
		help:       help.New(),
		template:   ta,
		payload:    pa,
		output:     viewport.New(40, 20),
		pipelineCh: s.Pipeline.Subscribe(),
		catalogCh:  s.Catalog.Subscribe(),
		edits:      edits,
		snapshot:   s.Pipeline.Snapshot(),
	}
	m.focus()
	m.refreshOutput()
	return m
}

// Close releases the model's subscriptions.
func (m Model) Close() {
	m.session.Pipeline.Unsubscribe(m.pipelineCh)
	m.session.Catalog.Unsubscribe(m.catalogCh)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		wait(m.pipelineCh, pipelineMsg{}),
		wait(m.catalogCh, catalogMsg{}),
		waitEdit(m.edits),
	)
}

func wait(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

func waitEdit(edits <-chan FileEdit) tea.Cmd {
	if edits == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-edits
		if !ok {
			return nil
		}
		return fileEditMsg(e)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case pipelineMsg:
		m.syncFromPipeline()
		return m, wait(m.pipelineCh, pipelineMsg{})

	case catalogMsg:
		m.syncCatalog()
		return m, wait(m.catalogCh, catalogMsg{})

	case fileEditMsg:
		m.applyFileEdit(FileEdit(msg))
		return m, waitEdit(m.edits)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.ToggleLeft):
			m.session.Select(m.session.Selection().ToggleLeft())
			m.focus()
			return m, nil
		case key.Matches(msg, keys.ToggleRight):
			m.session.Select(m.session.Selection().ToggleRight())
			m.refreshOutput()
			return m, nil
		case key.Matches(msg, keys.NextEntry):
			m.moveCursor(1)
			return m, nil
		case key.Matches(msg, keys.PrevEntry):
			m.moveCursor(-1)
			return m, nil
		case key.Matches(msg, keys.Load):
			if m.session.LoadTemplate(m.cursor) {
				m.syncFromPipeline()
			}
			return m, nil
		case key.Matches(msg, keys.Default):
			m.session.LoadDefaultTemplate()
			m.syncFromPipeline()
			return m, nil
		case key.Matches(msg, keys.Reload):
			m.session.Catalog.Reload()
			return m, nil
		}
		return m.updateEditor(msg)
	}

	return m.updateEditor(msg)
}

// updateEditor forwards msg to the visible editor and pushes any change
// into the pipeline.
func (m Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var outCmd tea.Cmd
	in := m.session.Pipeline.Input()

	switch m.session.Selection().Left {
	case preview.TabSampleInput:
		m.payload, cmd = m.payload.Update(msg)
		if v := m.payload.Value(); v != in.SamplePayload {
			m.session.Pipeline.SetSamplePayload(v)
		}
	default:
		m.template, cmd = m.template.Update(msg)
		if v := m.template.Value(); v != in.TemplateText {
			m.session.Pipeline.SetTemplateText(v)
		}
	}

	if _, ok := msg.(tea.MouseMsg); ok {
		m.output, outCmd = m.output.Update(msg)
	}
	return m, tea.Batch(cmd, outCmd)
}

func (m *Model) applyFileEdit(e FileEdit) {
	switch e.Tab {
	case preview.TabSampleInput:
		m.session.Pipeline.SetSamplePayload(e.Text)
	default:
		m.session.Pipeline.SetTemplateText(e.Text)
	}
	m.syncFromPipeline()
}

// syncFromPipeline copies the pipeline's state into the editors and the
// output pane. Editors are only touched when their text differs so the
// cursor survives ordinary typing.
func (m *Model) syncFromPipeline() {
	m.snapshot = m.session.Pipeline.Snapshot()
	if m.template.Value() != m.snapshot.Input.TemplateText {
		m.template.SetValue(m.snapshot.Input.TemplateText)
	}
	if m.payload.Value() != m.snapshot.Input.SamplePayload {
		m.payload.SetValue(m.snapshot.Input.SamplePayload)
	}
	m.refreshOutput()
}

func (m *Model) syncCatalog() {
	m.names = m.session.Catalog.Names()
	if m.cursor >= len(m.names) {
		m.cursor = 0
	}
}

func (m *Model) moveCursor(delta int) {
	n := len(m.names)
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

func (m *Model) focus() {
	if m.session.Selection().Left == preview.TabSampleInput {
		m.template.Blur()
		m.payload.Focus()
	} else {
		m.payload.Blur()
		m.template.Focus()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	paneWidth := width/2 - 4
	if paneWidth < 20 {
		paneWidth = 20
	}
	// tab bar, loader line, borders and help
	paneHeight := height - 8
	if paneHeight < 5 {
		paneHeight = 5
	}

	m.template.SetWidth(paneWidth)
	m.template.SetHeight(paneHeight)
	m.payload.SetWidth(paneWidth)
	m.payload.SetHeight(paneHeight)
	m.output.Width = paneWidth
	m.output.Height = paneHeight
	m.help.Width = width
	m.refreshOutput()
}

func (m *Model) refreshOutput() {
	m.output.SetContent(m.outputText())
}

// outputText is the right pane body for the current selection.
func (m Model) outputText() string {
	md := m.snapshot.Outcome.RenderedMarkdown
	if m.session.Selection().Right == preview.TabRawMarkdown {
		return md
	}
	text, err := markdown.PlainText(md)
	if err != nil {
		return md
	}
	if m.output.Width > 0 {
		return lipgloss.NewStyle().Width(m.output.Width).Render(text)
	}
	return text
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sel := m.session.Selection()

	var left string
	if sel.Left == preview.TabSampleInput {
		left = m.payload.View()
	} else {
		left = m.template.View()
	}

	leftPane := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		renderTabs(preview.LeftTabs, sel.Left),
		left,
	))
	rightPane := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		renderTabs(preview.RightTabs, sel.Right),
		m.output.View(),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.loaderLine(),
		lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane),
		m.help.View(keys),
	)
}

type tab interface {
	comparable
	Label() string
}

func renderTabs[T tab](tabs []T, active T) string {
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		style := tabStyle
		if t == active {
			style = activeTabStyle
		}
		rendered[i] = style.Render(t.Label())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// loaderLine shows the catalog cursor, the render phase and the failure
// warning.
func (m Model) loaderLine() string {
	var parts []string

	st := m.session.Catalog.State()
	switch {
	case st.Pending():
		parts = append(parts, loaderStyle.Render("Loading..."))
	case st.Phase == fetch.Failed:
		parts = append(parts, warningStyle.Render("Unable to load templates: "+st.ErrorMessage()))
	case len(m.names) > 0:
		parts = append(parts, loaderStyle.Render(fmt.Sprintf("Template %d/%d: %s", m.cursor+1, len(m.names), m.names[m.cursor])))
	}

	if m.snapshot.Phase != preview.Quiescent {
		parts = append(parts, hintStyle.Render("rendering…"))
	}
	if m.snapshot.Outcome.Failed() {
		parts = append(parts, warningStyle.Render("Unable to render template: "+m.snapshot.Outcome.ErrorMessage))
	}
	return strings.Join(parts, "  ")
}
