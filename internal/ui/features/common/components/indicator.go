package components

import (
	"github.com/a-h/templ"

	"github.com/leapstack-labs/relayui/internal/fetch"
)

// WithStatusIndicator picks the view for st. Idle and Loading both show
// the loading view, Failed shows errorText (or the load's own message
// when errorText is empty), and only Succeeded calls content.
func WithStatusIndicator[T any](st fetch.State[T], errorText string, content func(T) templ.Component) templ.Component {
	switch st.Phase {
	case fetch.Succeeded:
		return content(st.Data)
	case fetch.Failed:
		msg := errorText
		if msg == "" {
			msg = st.ErrorMessage()
		}
		return ErrorBanner(msg)
	default:
		return Loading()
	}
}
