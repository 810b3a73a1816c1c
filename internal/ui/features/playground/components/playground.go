package components

import (
	"github.com/a-h/templ"

	"github.com/leapstack-labs/relayui/internal/markdown"
	"github.com/leapstack-labs/relayui/internal/ui/features/common"
	commonComponents "github.com/leapstack-labs/relayui/internal/ui/features/common/components"
)

// Page is the full playground document.
func Page(page common.PageData, v View) templ.Component {
	return commonComponents.Layout(page, Playground(v))
}

func renderedMarkdown(md string) templ.Component {
	html, err := markdown.HTML(md)
	return templ.Raw(html, err)
}
