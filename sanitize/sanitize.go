// Package sanitize strips non-content markup from chapter XHTML.
//
// Sanitize is pure and idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/simp-lee/epubreader/markup"
)

var (
	processingInstructionPattern = regexp.MustCompile(`(?s)<\?.*?\?>`)
	doctypePattern               = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`)
)

// removedTags are dropped with their content. title, base, template and
// noframes are included because the parser would hoist them into <head>
// when the sanitized output is parsed again.
var removedTags = []atom.Atom{
	atom.Script,
	atom.Style,
	atom.Meta,
	atom.Link,
	atom.Title,
	atom.Base,
	atom.Template,
	atom.Noframes,
}

// Sanitize returns the cleaned inner markup of raw's <body>, or "" if
// there is no body content.
func Sanitize(raw string) string {
	raw = stripDeclarations(raw)

	doc, err := markup.Parse(raw)
	if err != nil {
		return ""
	}
	body := doc.Body()
	if body == nil {
		return ""
	}

	for _, n := range doc.Find(removedTags...) {
		markup.Remove(n)
	}
	// Scripts are gone, so the <noscript> fallback is the content.
	for _, n := range doc.Find(atom.Noscript) {
		markup.Unwrap(n)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			stripUnsafeAttributes(n)
			hideInternalImage(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)

	return doc.BodyHTML()
}

// stripDeclarations removes processing instructions and doctypes until none
// remain, since removing one can join its neighbours into another.
func stripDeclarations(s string) string {
	for {
		out := processingInstructionPattern.ReplaceAllString(s, "")
		out = doctypePattern.ReplaceAllString(out, "")
		if out == s {
			return out
		}
		s = out
	}
}

// hideInternalImage suppresses the visibility of images that reference
// archive-internal resources. The element itself stays in the tree.
func hideInternalImage(n *html.Node) {
	var src string
	switch n.DataAtom {
	case atom.Img:
		src, _ = markup.Attr(n, "src")
	case atom.Image:
		var ok bool
		if src, ok = markup.Attr(n, "xlink:href"); !ok {
			src, _ = markup.Attr(n, "href")
		}
	default:
		return
	}
	if src == "" || isExternal(src) {
		return
	}
	style, _ := markup.Attr(n, "style")
	markup.SetAttr(n, "style", withDisplayNone(style))
}

// isExternal reports whether ref is an absolute http(s) reference.
func isExternal(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// withDisplayNone drops any display declaration from an inline style and
// appends "display: none".
func withDisplayNone(style string) string {
	var decls []string
	for _, d := range strings.Split(style, ";") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		prop, _, _ := strings.Cut(d, ":")
		if strings.EqualFold(strings.TrimSpace(prop), "display") {
			continue
		}
		decls = append(decls, d)
	}
	decls = append(decls, "display: none")
	return strings.Join(decls, "; ")
}

// stripUnsafeAttributes removes event handler attributes (on*) and URI
// attributes with a disallowed scheme.
func stripUnsafeAttributes(n *html.Node) {
	markup.FilterAttrs(n, func(a html.Attribute) bool {
		if strings.HasPrefix(strings.ToLower(a.Key), "on") {
			return false
		}
		if isURIAttribute(a) && !isSafeURI(a.Val) {
			return false
		}
		return true
	})
}

func isURIAttribute(a html.Attribute) bool {
	switch markup.QualifiedKey(a) {
	case "href", "src", "xlink:href":
		return true
	}
	return false
}

// isSafeURI allows relative references, fragments, http, https, mailto and
// data:image/* values.
func isSafeURI(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" || strings.HasPrefix(v, "#") || strings.HasPrefix(v, "/") ||
		strings.HasPrefix(v, "./") || strings.HasPrefix(v, "../") || strings.HasPrefix(v, "?") {
		return true
	}

	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "":
		return true
	case "http", "https", "mailto":
		return true
	case "data":
		return strings.HasPrefix(strings.ToLower(v), "data:image/")
	default:
		return false
	}
}
