// Package status turns the relay's key/value status sections into
// display rows.
package status

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/relayui/internal/relay"
)

// utcLayout matches how browsers print a date in UTC.
const utcLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Row is one resolved status line.
type Row struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
}

// Field describes how one status key is displayed.
type Field struct {
	// Title replaces the key as the row heading.
	Title string
	// Format renders the value. Nil means FormatValue.
	Format func(v any) string
	// Skip drops the key entirely.
	Skip bool
	// CustomRow builds the whole row itself. Returning false drops it.
	CustomRow func(key string, v any) (Row, bool)
}

// Fields maps status keys to their descriptors.
type Fields map[string]Field

// DefaultFields returns the descriptors for the relay's runtime section.
func DefaultFields() Fields {
	return Fields{
		"startTime": {Title: "Start time", Format: FormatUTC},
		"CWD":       {Title: "Working directory"},
		"reloadConfigSuccess": {
			Title: "Configuration reload",
			Format: func(v any) string {
				if b, ok := v.(bool); ok && b {
					return "Successful"
				}
				return "Unsuccessful"
			},
		},
		"lastConfigTime": {Title: "Last successful configuration reload"},
		"goroutineCount": {Title: "Goroutines"},
	}
}

// Section is a titled group of rows.
type Section struct {
	Title string
	Rows  []Row
}

// Resolve applies the descriptors to each entry once, in order.
func (f Fields) Resolve(info relay.Info) []Row {
	rows := make([]Row, 0, len(info))
	for _, e := range info {
		if row, ok := f.resolve(e.Key, e.Value); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func (f Fields) resolve(key string, v any) (Row, bool) {
	field, known := f[key]
	if field.Skip {
		return Row{}, false
	}
	if field.CustomRow != nil {
		return field.CustomRow(key, v)
	}

	title := field.Title
	if !known || title == "" {
		title = TitleFor(key)
	}
	format := field.Format
	if format == nil {
		format = FormatValue
	}
	return Row{Key: key, Title: title, Value: format(v)}, true
}

// FlagRows lists flags sorted by name.
func FlagRows(flags relay.Flags) []Row {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Row, len(names))
	for i, name := range names {
		rows[i] = Row{Key: name, Title: "--" + name, Value: flags[name]}
	}
	return rows
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// TitleFor capitalizes a raw status key for display.
func TitleFor(key string) string {
	return titleCaser.String(key)
}

// FormatValue renders a decoded JSON value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// FormatUTC renders an RFC 3339 timestamp in UTC. Values that do not
// parse are shown as is.
func FormatUTC(v any) string {
	s, ok := v.(string)
	if !ok {
		return FormatValue(v)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(utcLayout)
}
