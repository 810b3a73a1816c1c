package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/relayui/internal/preview"
)

// Options configures Run.
type Options struct {
	Session *preview.Session
	// Edits feeds file changes into the editors; nil disables it.
	Edits  <-chan FileEdit
	Input  io.Reader
	Output io.Writer
}

// Run shows the terminal console until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	m := New(opts.Session, opts.Edits)
	defer m.Close()

	progOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	_, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
