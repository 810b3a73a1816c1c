package playground

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/ui/features/common"
)

// SetupRoutes configures routes for the playground feature.
func SetupRoutes(
	router chi.Router,
	registry *preview.Registry,
	sessionStore sessions.Store,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(registry, sessionStore, logger, isDev)

	router.Get(common.PlaygroundPath, handlers.PlaygroundPage)

	router.Route("/playground", func(r chi.Router) {
		r.Get("/updates", handlers.PlaygroundUpdates)
		r.Post("/edit", handlers.Edit)
		r.Post("/close", handlers.ClosePage)
		r.Post("/tab/{group}/{tab}", handlers.SelectTab)
		r.Post("/catalog/apply", handlers.ApplyCatalog)
	})

	return nil
}
