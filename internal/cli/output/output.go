// Package output renders command results as terminal tables, markdown,
// JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	// ModeAuto is text on a terminal and markdown otherwise.
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Modes lists the accepted --output values.
var Modes = []Mode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeYAML}

// ParseMode validates an --output value. Empty means ModeAuto.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want auto, text, markdown, json or yaml)", s)
}

// Styles colours text output. On a non-terminal writer every style
// renders plain text.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Success: r.NewStyle().Foreground(lipgloss.Color("42")),
		Failure: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Renderer writes command output in one mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   Mode
	Styles *Styles
}

// NewRenderer creates a Renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd())) //nolint:gosec
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a Renderer with an explicit terminal flag.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   mode,
		Styles: newStyles(out),
	}
}

// Mode returns the effective mode with ModeAuto resolved.
func (r *Renderer) Mode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Structured reports whether output is JSON or YAML.
func (r *Renderer) Structured() bool {
	m := r.Mode()
	return m == ModeJSON || m == ModeYAML
}

// Out returns the standard output writer.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// Err returns the error output writer.
func (r *Renderer) Err() io.Writer {
	return r.errOut
}

// Table renders a titled key/value or multi-column table. In structured
// modes use Data instead.
func (r *Renderer) Table(title string, header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	hr := make(table.Row, len(header))
	for i, h := range header {
		hr[i] = h
	}
	t.AppendHeader(hr)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		t.AppendRow(tr)
	}

	if r.Mode() == ModeMarkdown {
		if title != "" {
			_, _ = fmt.Fprintf(r.out, "## %s\n\n", title)
		}
		t.RenderMarkdown()
		_, _ = fmt.Fprintln(r.out)
		return
	}

	t.SetStyle(table.StyleLight)
	if title != "" {
		_, _ = fmt.Fprintln(r.out, r.Styles.Title.Render(title))
	}
	t.Render()
	_, _ = fmt.Fprintln(r.out)
}

// Data encodes v as JSON or YAML according to the mode. Text and
// markdown modes fall back to JSON.
func (r *Renderer) Data(v any) error {
	if r.Mode() == ModeYAML {
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Warn writes a styled warning to the error output.
func (r *Renderer) Warn(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.Styles.Failure.Render(msg))
}
