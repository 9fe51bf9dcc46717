package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements that start a new line in extracted text.
var blockText = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Ol: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Table: true, atom.Td: true,
	atom.Th: true, atom.Tr: true, atom.Ul: true,
}

// Elements whose content never reaches the reader.
var hiddenText = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
}

var selfClosingRawText = regexp.MustCompile(`(?is)<(script|style)\b([^>]*)/>`)

// expandSelfClosingRawText turns XHTML <script/> into <script></script>. An
// HTML parser would otherwise read the rest of the file as script text.
func expandSelfClosingRawText(data []byte) []byte {
	if !selfClosingRawText.Match(data) {
		return data
	}
	return selfClosingRawText.ReplaceAll(data, []byte(`<$1$2></$1>`))
}

// Text extracts the plain text of a markup document or fragment. Block
// elements break lines so words in neighbouring blocks never join.
func Text(data []byte) (string, error) {
	doc, err := Parse(string(expandSelfClosingRawText(data)))
	if err != nil {
		return "", err
	}
	return doc.BodyText(), nil
}

// Words splits text on runs of whitespace and drops empty entries.
func Words(text string) []string {
	return strings.Fields(text)
}

// textWriter accumulates words, emitting at most one separator between them.
type textWriter struct {
	buf   strings.Builder
	space bool
	line  bool
}

func plainText(n *html.Node) string {
	var w textWriter
	w.walk(n)
	return w.buf.String()
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if hiddenText[n.DataAtom] {
			return
		}
		if blockText[n.DataAtom] {
			w.line = true
			defer func() { w.line = true }()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) text(s string) {
	if s == "" {
		return
	}
	if isSpace(rune(s[0])) {
		w.space = true
	}
	for i, word := range strings.FieldsFunc(s, isSpace) {
		if i > 0 {
			w.space = true
		}
		w.word(word)
	}
	if isSpace(rune(s[len(s)-1])) {
		w.space = true
	}
}

func (w *textWriter) word(s string) {
	if w.buf.Len() > 0 {
		if w.line {
			w.buf.WriteByte('\n')
		} else if w.space {
			w.buf.WriteByte(' ')
		}
	}
	w.buf.WriteString(s)
	w.space, w.line = false, false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}
