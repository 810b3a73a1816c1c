package status

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/status"
	"github.com/leapstack-labs/relayui/internal/ui/features/common"
	"github.com/leapstack-labs/relayui/internal/ui/features/status/components"
)

// Handlers provides HTTP handlers for the status feature. Every page view
// drives its own fetch controllers; nothing is cached between requests.
type Handlers struct {
	fetcher fetch.Fetcher
	paths   relay.Paths
	opts    fetch.Options
	fields  status.Fields
	isDev   bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(fetcher fetch.Fetcher, paths relay.Paths, timeout time.Duration, logger *slog.Logger, isDev bool) *Handlers {
	return &Handlers{
		fetcher: fetcher,
		paths:   paths,
		opts:    fetch.Options{Timeout: timeout, Logger: logger},
		fields:  status.DefaultFields(),
		isDev:   isDev,
	}
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request, title, path, source string) {
	data := common.PageData{Title: title, CurrentPath: path, IsDev: h.isDev}
	if err := components.Page(data, source).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StatusPage renders the runtime & build information shell.
func (h *Handlers) StatusPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Status", common.StatusPath, "/status/sse/runtime")
}

// FlagsPage renders the command-line flags shell.
func (h *Handlers) FlagsPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Command-Line Flags", common.FlagsPath, "/status/sse/flags")
}

// ConfigPage renders the configuration shell.
func (h *Handlers) ConfigPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Configuration", common.ConfigPath, "/status/sse/config")
}

// RuntimeSSE loads runtime and build information side by side and patches
// the page once both have settled. Either failure fails the page.
func (h *Handlers) RuntimeSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	runtime := fetch.NewResource(ctx, h.fetcher, h.paths.RuntimeInfo, relay.Decode[relay.Info](), h.opts)
	defer runtime.Close()
	build := fetch.NewResource(ctx, h.fetcher, h.paths.BuildInfo, relay.Decode[relay.Info](), h.opts)
	defer build.Close()

	rt, err := runtime.Wait(ctx)
	if err != nil {
		return
	}
	bi, err := build.Wait(ctx)
	if err != nil {
		return
	}

	if err := sse.PatchElementTempl(components.Runtime(fetch.Both(rt, bi), h.fields)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// FlagsSSE loads and patches the flags table.
func (h *Handlers) FlagsSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	flags := fetch.NewResource(ctx, h.fetcher, h.paths.Flags, relay.Decode[relay.Flags](), h.opts)
	defer flags.Close()

	st, err := flags.Wait(ctx)
	if err != nil {
		return
	}
	if err := sse.PatchElementTempl(components.Flags(st)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ConfigSSE loads and patches the configuration dump.
func (h *Handlers) ConfigSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	cfg := fetch.NewResource(ctx, h.fetcher, h.paths.Config, relay.Decode[relay.ConfigDump](), h.opts)
	defer cfg.Close()

	st, err := cfg.Wait(ctx)
	if err != nil {
		return
	}
	if err := sse.PatchElementTempl(components.Config(st)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
