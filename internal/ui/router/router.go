// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/ui/features/common"
	playgroundFeature "github.com/leapstack-labs/relayui/internal/ui/features/playground"
	statusFeature "github.com/leapstack-labs/relayui/internal/ui/features/status"
	"github.com/leapstack-labs/relayui/internal/ui/resources"
)

// Deps is what the feature routes are built from.
type Deps struct {
	Fetcher      fetch.Fetcher
	Paths        relay.Paths
	Timeout      time.Duration
	Sessions     *preview.Registry
	SessionStore sessions.Store
	Logger       *slog.Logger
	IsDev        bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	if deps.IsDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler())

	toPlayground := http.RedirectHandler(common.PlaygroundPath, http.StatusFound)
	router.Handle("/", toPlayground)
	router.Handle("/ui", toPlayground)
	router.Handle("/ui/", toPlayground)

	if err := playgroundFeature.SetupRoutes(router, deps.Sessions, deps.SessionStore, deps.Logger, deps.IsDev); err != nil {
		return err
	}

	if err := statusFeature.SetupRoutes(router, deps.Fetcher, deps.Paths, deps.Timeout, deps.Logger, deps.IsDev); err != nil {
		return err
	}

	return nil
}

// setupReload lets a dev build refresh open pages: a GET on /hotreload
// after a rebuild reloads every page holding /reload.
func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
