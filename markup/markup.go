// Package markup is the narrow document capability the content pipeline is
// built on: parse XHTML, query elements by tag, remove nodes, read and write
// attributes, serialize back to markup, and extract plain text.
//
// It wraps golang.org/x/net/html so that callers never depend on a
// particular tree implementation beyond *html.Node handles.
package markup

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed markup tree.
type Document struct {
	root *html.Node
}

// Parse parses s as an HTML document. Scripting is disabled so that
// <noscript> content is parsed as markup rather than raw text.
func Parse(s string) (*Document, error) {
	root, err := html.ParseWithOptions(strings.NewReader(s), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// Body returns the <body> element, or nil if the tree has none.
func (d *Document) Body() *html.Node {
	return findElement(d.root, atom.Body)
}

// First returns the first element with tag a in document order, or nil.
func (d *Document) First(a atom.Atom) *html.Node {
	return findElement(d.root, a)
}

// Find returns all elements whose tag is one of tags, in document order.
func (d *Document) Find(tags ...atom.Atom) []*html.Node {
	want := make(map[atom.Atom]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && want[n.DataAtom] {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

// BodyHTML renders the children of <body> and trims surrounding whitespace.
// It returns "" when there is no body.
func (d *Document) BodyHTML() string {
	body := d.Body()
	if body == nil {
		return ""
	}
	return strings.TrimSpace(InnerHTML(body))
}

// BodyText returns the block-aware plain text of the body.
func (d *Document) BodyText() string {
	body := d.Body()
	if body == nil {
		return ""
	}
	return plainText(body)
}

// Elements returns the element children of n, skipping text and comments.
func Elements(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Remove detaches n from its parent. Detached nodes are ignored.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		n.Parent.InsertBefore(c, n)
	}
	n.Parent.RemoveChild(n)
}

// Render serializes n including its own tag.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// TextContent concatenates every text node below n.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}

// findElement performs a depth-first search for a node with the given atom tag.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, a); result != nil {
			return result
		}
	}
	return nil
}
