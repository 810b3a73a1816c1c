package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/relayui/internal/ui"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	Dev       bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web console",
		Long: `Start a local web server with the template playground and the relay
status pages.

The UI provides:
- Template playground with live markdown preview
- Runtime and build information
- Command-line flags
- Loaded configuration`,
		Example: `  # Start UI on default port
  relayui ui

  # Start on custom port
  relayui ui --port 3000

  # Start without auto-opening browser
  relayui ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().Duration("debounce", 0, "Quiet period after the last keystroke before rendering (default: 250ms)")
	cmd.Flags().String("session-secret", "", "Secret used to sign session cookies")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable live reload endpoints")
	_ = cmd.Flags().MarkHidden("dev")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cc.Cfg

	// --port is also bound to ui.port by the config loader.
	port := cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	server := ui.NewServer(ui.Config{
		Client:        cc.Client,
		Port:          port,
		SessionSecret: cfg.UI.SessionSecret,
		SessionTTL:    cfg.UI.SessionTTL,
		Debounce:      cfg.Preview.Debounce,
		Timeout:       cfg.Relay.Timeout,
		Initial:       cc.InitialInput(),
		Logger:        cc.Logger,
		Dev:           opts.Dev,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if cfg.UI.AutoOpen && !opts.NoBrowser {
		go openBrowser(url)
	}

	cc.Renderer.Println("Starting UI server on " + url)
	cc.Renderer.Println("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
