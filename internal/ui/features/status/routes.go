// Package status provides the relay status pages for the UI.
package status

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/ui/features/common"
)

// SetupRoutes configures routes for the status feature.
func SetupRoutes(
	router chi.Router,
	fetcher fetch.Fetcher,
	paths relay.Paths,
	timeout time.Duration,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(fetcher, paths, timeout, logger, isDev)

	router.Get(common.StatusPath, handlers.StatusPage)
	router.Get(common.FlagsPath, handlers.FlagsPage)
	router.Get(common.ConfigPath, handlers.ConfigPage)

	router.Route("/status/sse", func(r chi.Router) {
		r.Get("/runtime", handlers.RuntimeSSE)
		r.Get("/flags", handlers.FlagsSSE)
		r.Get("/config", handlers.ConfigSSE)
	})

	return nil
}
