// Package markdown converts rendered template output for display.
//
// Rendering is CommonMark only; GitHub extensions such as tables and
// strikethrough are left as literal text, which is what chat clients
// receiving the relay's messages show as well.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var md = goldmark.New()

// HTML renders source as HTML. Raw HTML in source is omitted.
func HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// PlainText renders source and flattens the result to text suitable for
// a terminal: block elements become lines, list items get a bullet and
// links keep their target.
func PlainText(source string) (string, error) {
	rendered, err := HTML(source)
	if err != nil {
		return "", err
	}
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return "", fmt.Errorf("parsing rendered markdown: %w", err)
	}

	var w textWriter
	w.walk(doc)
	return strings.TrimSpace(w.String()), nil
}

type textWriter struct {
	buf []byte
	pre int
}

func (w *textWriter) String() string {
	return string(w.buf)
}

func (w *textWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *textWriter) trimSpaces() {
	for len(w.buf) > 0 && w.buf[len(w.buf)-1] == ' ' {
		w.buf = w.buf[:len(w.buf)-1]
	}
}

func (w *textWriter) atLineStart() bool {
	return len(w.buf) == 0 || w.buf[len(w.buf)-1] == '\n'
}

func (w *textWriter) newline() {
	w.trimSpaces()
	if !w.atLineStart() {
		w.buf = append(w.buf, '\n')
	}
}

func (w *textWriter) blank() {
	w.newline()
	if len(w.buf) > 0 && !bytes.HasSuffix(w.buf, []byte("\n\n")) {
		w.buf = append(w.buf, '\n')
	}
}

func (w *textWriter) text(s string) {
	if w.pre > 0 {
		w.buf = append(w.buf, s...)
		return
	}
	s = collapse(s)
	if w.atLineStart() || bytes.HasSuffix(w.buf, []byte(" ")) {
		s = strings.TrimLeft(s, " ")
	}
	w.buf = append(w.buf, s...)
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			w.newline()
			return
		case atom.Hr:
			w.blank()
			w.buf = append(w.buf, "---"...)
			w.blank()
			return
		case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Ul, atom.Ol:
			w.blank()
		case atom.Li:
			w.newline()
			w.buf = append(w.buf, "• "...)
		case atom.Pre:
			w.blank()
			w.pre++
			defer func() { w.pre-- }()
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		if href := attr(n, "href"); href != "" {
			fmt.Fprintf(w, " (%s)", href)
		}
	}
}

// collapse folds each run of whitespace into a single space.
func collapse(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
