// Package relay is the HTTP client for the webhook relay's status API.
package relay

// Template is one named message template from the relay's catalog.
// Title is itself template text, rendered by the relay for the message
// title; it is not a display label.
type Template struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Catalog is the body of the templates endpoint.
type Catalog struct {
	Templates []Template `json:"templates"`
}

// RenderRequest is the body posted to the render endpoint.
type RenderRequest struct {
	TemplateText  string `json:"text"`
	SamplePayload string `json:"demoAlertJSON"`
}

// RenderResult is the data of a successful render.
type RenderResult struct {
	Markdown string `json:"markdown"`
}

// ConfigDump is the data of the config endpoint.
type ConfigDump struct {
	YAML string `json:"yaml"`
}

// Flags maps command-line flag names to their values.
type Flags map[string]string

// Paths locates each endpoint relative to the relay base URL.
type Paths struct {
	Templates   string `koanf:"templates"`
	Render      string `koanf:"render"`
	RuntimeInfo string `koanf:"runtimeinfo"`
	BuildInfo   string `koanf:"buildinfo"`
	Flags       string `koanf:"flags"`
	Config      string `koanf:"config"`
}

// DefaultPaths returns the relay's built-in API layout.
func DefaultPaths() Paths {
	return Paths{
		Templates:   "/api/v1/status/templates",
		Render:      "/api/v1/status/templates/render",
		RuntimeInfo: "/api/v1/status/runtimeinfo",
		BuildInfo:   "/api/v1/status/buildinfo",
		Flags:       "/api/v1/status/flags",
		Config:      "/api/v1/status/config",
	}
}

// withDefaults fills empty paths from DefaultPaths.
func (p Paths) withDefaults() Paths {
	d := DefaultPaths()
	if p.Templates == "" {
		p.Templates = d.Templates
	}
	if p.Render == "" {
		p.Render = d.Render
	}
	if p.RuntimeInfo == "" {
		p.RuntimeInfo = d.RuntimeInfo
	}
	if p.BuildInfo == "" {
		p.BuildInfo = d.BuildInfo
	}
	if p.Flags == "" {
		p.Flags = d.Flags
	}
	if p.Config == "" {
		p.Config = d.Config
	}
	return p
}
