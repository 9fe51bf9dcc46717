package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the attribute key on n. A key of the form
// "ns:name" also matches an attribute stored with Namespace "ns".
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if matchAttr(a, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if matchAttr(a, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// FilterAttrs keeps only the attributes for which keep returns true.
func FilterAttrs(n *html.Node, keep func(html.Attribute) bool) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if keep(a) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// QualifiedKey returns the attribute key including its namespace prefix,
// e.g. "xlink:href".
func QualifiedKey(a html.Attribute) string {
	if a.Namespace == "" {
		return a.Key
	}
	return a.Namespace + ":" + a.Key
}

// matchAttr checks an attribute against a possibly prefixed key.
// x/net/html stores foreign attributes either with a Namespace field or
// with the prefix folded into Key, so both forms are accepted.
func matchAttr(a html.Attribute, key string) bool {
	if a.Key == key && a.Namespace == "" {
		return true
	}
	if ns, name, ok := strings.Cut(key, ":"); ok {
		return a.Namespace == ns && a.Key == name
	}
	return false
}
