// Package common provides shared types and utilities for UI features.
package common

// PageData is what every full page needs to render its shell.
type PageData struct {
	Title       string
	CurrentPath string
	IsDev       bool
}

// NavLink is one entry of the navbar.
type NavLink struct {
	Label string
	Path  string
}

// Route paths shared across features.
const (
	PlaygroundPath = "/ui/playground"
	StatusPath     = "/ui/status"
	FlagsPath      = "/ui/flags"
	ConfigPath     = "/ui/config"
)

// StatusLinks are the entries of the Status dropdown.
var StatusLinks = []NavLink{
	{Label: "Runtime & Build Information", Path: StatusPath},
	{Label: "Command-Line Flags", Path: FlagsPath},
	{Label: "Configuration", Path: ConfigPath},
}
