// Package playground provides the template playground feature for the UI.
package playground

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SessionSignals identifies the page's preview session.
type SessionSignals struct {
	SessionID string `json:"sid"`
}

// EditSignals is sent on every keystroke in either input.
type EditSignals struct {
	SessionID string `json:"sid"`
	Template  string `json:"template"`
	Payload   string `json:"payload"`
}

// CatalogSignals is sent by the Load button.
type CatalogSignals struct {
	SessionID    string `json:"sid"`
	CatalogIndex Index  `json:"catalogIndex"`
}

// Index is a catalog position. A bound select may send it as a number or
// as the option's string value.
type Index int

// UnmarshalJSON accepts 3, "3" and "".
func (i *Index) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		v, err := strconv.Atoi(n.String())
		if err != nil {
			return err
		}
		*i = Index(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*i = -1
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = Index(v)
	return nil
}
