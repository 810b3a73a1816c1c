package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/relayui/internal/preview"
)

// FileEdit is the new content of a watched file.
type FileEdit struct {
	Tab  preview.LeftTab
	Path string
	Text string
}

// Watcher turns writes to the template and payload files into edits.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]preview.LeftTab
	edits   chan FileEdit
	logger  *slog.Logger
}

// WatchFiles watches the files in files. Directories are watched rather
// than the files themselves so editors that save by rename keep working.
func WatchFiles(files map[preview.LeftTab]string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		files:   make(map[string]preview.LeftTab, len(files)),
		edits:   make(chan FileEdit, len(files)),
		logger:  logger,
	}

	dirs := make(map[string]bool)
	for tab, path := range files {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		w.files[abs] = tab
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Edits returns the channel edits are delivered on. It is closed when Run
// returns.
func (w *Watcher) Edits() <-chan FileEdit {
	return w.edits
}

// Run delivers edits until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.edits)
	defer func() { _ = w.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			tab, watched := w.files[filepath.Clean(event.Name)]
			if !watched {
				continue
			}

			b, err := os.ReadFile(event.Name)
			if err != nil {
				w.logger.Debug("reading watched file failed", "file", event.Name, "error", err)
				continue
			}
			w.logger.Debug("file changed", "file", event.Name)

			select {
			case w.edits <- FileEdit{Tab: tab, Path: event.Name, Text: string(b)}:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// ReadInput overrides in with the current content of any configured file.
func ReadInput(in preview.InputState, templateFile, payloadFile string) (preview.InputState, error) {
	if templateFile != "" {
		b, err := os.ReadFile(templateFile)
		if err != nil {
			return in, fmt.Errorf("reading template file: %w", err)
		}
		in.TemplateText = string(b)
	}
	if payloadFile != "" {
		b, err := os.ReadFile(payloadFile)
		if err != nil {
			return in, fmt.Errorf("reading payload file: %w", err)
		}
		in.SamplePayload = string(b)
	}
	return in, nil
}
