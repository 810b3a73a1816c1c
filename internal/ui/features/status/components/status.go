// Package components renders the relay status pages.
package components

import (
	"github.com/a-h/templ"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/status"
	commonComponents "github.com/leapstack-labs/relayui/internal/ui/features/common/components"
)

// ContentID is the element every status page patches.
const ContentID = "status-content"

// Runtime shows the runtime and build sections once both have loaded.
func Runtime(st fetch.State[fetch.Pair[relay.Info, relay.Info]], fields status.Fields) templ.Component {
	return content(commonComponents.WithStatusIndicator(st, "", func(p fetch.Pair[relay.Info, relay.Info]) templ.Component {
		return runtimeSections(fields.Resolve(p.First), fields.Resolve(p.Second))
	}))
}

// Flags lists the relay's command-line flags.
func Flags(st fetch.State[relay.Flags]) templ.Component {
	return content(commonComponents.WithStatusIndicator(st, "", func(f relay.Flags) templ.Component {
		return flagsSection(status.FlagRows(f))
	}))
}

// Config shows the relay's loaded configuration.
func Config(st fetch.State[relay.ConfigDump]) templ.Component {
	return content(commonComponents.WithStatusIndicator(st, "", func(c relay.ConfigDump) templ.Component {
		return configSection(c.YAML)
	}))
}
