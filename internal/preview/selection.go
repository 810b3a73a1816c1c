package preview

// LeftTab selects which input field the left tab group shows.
type LeftTab string

// RightTab selects how the right tab group shows the render result.
type RightTab string

const (
	TabTemplate    LeftTab = "template"
	TabSampleInput LeftTab = "payload"

	TabPreview     RightTab = "preview"
	TabRawMarkdown RightTab = "markdown"
)

// LeftTabs lists the left tabs in display order.
var LeftTabs = []LeftTab{TabTemplate, TabSampleInput}

// RightTabs lists the right tabs in display order.
var RightTabs = []RightTab{TabPreview, TabRawMarkdown}

// Label returns the tab caption.
func (t LeftTab) Label() string {
	if t == TabSampleInput {
		return "Alert JSON"
	}
	return "Template"
}

// Label returns the tab caption.
func (t RightTab) Label() string {
	if t == TabRawMarkdown {
		return "Markdown"
	}
	return "Preview"
}

// ParseLeftTab validates a left tab name.
func ParseLeftTab(s string) (LeftTab, bool) {
	for _, t := range LeftTabs {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ParseRightTab validates a right tab name.
func ParseRightTab(s string) (RightTab, bool) {
	for _, t := range RightTabs {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ViewSelection is the pair of independently selected tabs. It is
// presentation state only; changing it never triggers a render.
type ViewSelection struct {
	Left  LeftTab
	Right RightTab
}

// DefaultSelection shows the template editor and the rendered preview.
func DefaultSelection() ViewSelection {
	return ViewSelection{Left: TabTemplate, Right: TabPreview}
}

// Normalize replaces unknown tabs with the defaults.
func (v ViewSelection) Normalize() ViewSelection {
	d := DefaultSelection()
	if _, ok := ParseLeftTab(string(v.Left)); !ok {
		v.Left = d.Left
	}
	if _, ok := ParseRightTab(string(v.Right)); !ok {
		v.Right = d.Right
	}
	return v
}

// ToggleLeft switches to the other left tab.
func (v ViewSelection) ToggleLeft() ViewSelection {
	if v.Left == TabTemplate {
		v.Left = TabSampleInput
	} else {
		v.Left = TabTemplate
	}
	return v
}

// ToggleRight switches to the other right tab.
func (v ViewSelection) ToggleRight() ViewSelection {
	if v.Right == TabPreview {
		v.Right = TabRawMarkdown
	} else {
		v.Right = TabPreview
	}
	return v
}
