package epub

import (
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/simp-lee/epubreader/markup"
)

// navigationLabels returns the labels of the book's navigation document in
// document order (nested entries included), and whether a navigation
// document was found and parsed. ePub 3 packages prefer the nav document and
// fall back to NCX; ePub 2 packages use NCX only.
func (p *parser) navigationLabels() ([]string, bool) {
	if strings.HasPrefix(p.pkg.Version, "3") {
		if labels, ok := p.navDocumentLabels(); ok {
			return labels, true
		}
	}
	return p.ncxLabels()
}

// navDocumentLabels locates the manifest item with the "nav" property and
// reads the labels of its <nav epub:type="toc"> list.
func (p *parser) navDocumentLabels() ([]string, bool) {
	var item *manifestItem
	for _, raw := range p.pkg.Manifest.Items {
		if mi := p.manifest[raw.ID]; mi.hasProperty("nav") {
			item = &mi
			break
		}
	}
	if item == nil || item.Path == "" {
		return nil, false
	}

	text, err := p.archive.ReadText(item.Path)
	if err != nil {
		p.warn(fmt.Sprintf("failed to read nav document: %v", err))
		return nil, false
	}
	labels, err := parseNavDocument(text)
	if err != nil {
		p.warn(fmt.Sprintf("failed to parse nav document: %v", err))
		return nil, false
	}
	return labels, true
}

// ncxLabels locates the NCX through the spine toc attribute, or the first
// manifest item with the NCX media type, and reads its navPoint labels.
func (p *parser) ncxLabels() ([]string, bool) {
	item, ok := p.manifest[p.pkg.Spine.Toc]
	if !ok {
		for _, raw := range p.pkg.Manifest.Items {
			if strings.EqualFold(strings.TrimSpace(raw.MediaType), mediaTypeNCX) {
				item, ok = p.manifest[raw.ID], true
				break
			}
		}
	}
	if !ok || item.Path == "" || !p.archive.Has(item.Path) {
		return nil, false
	}

	data, err := p.archive.ReadFile(item.Path)
	if err != nil {
		p.warn(fmt.Sprintf("failed to read NCX file: %v", err))
		return nil, false
	}
	labels, err := parseNCX(data)
	if err != nil {
		p.warn(fmt.Sprintf("failed to parse NCX file: %v", err))
		return nil, false
	}
	return labels, true
}

// ncxDocument represents the root <ncx> element of an NCX file.
type ncxDocument struct {
	XMLName xml.Name      `xml:"ncx"`
	Points  []ncxNavPoint `xml:"navMap>navPoint"`
}

// ncxNavPoint represents a <navPoint>, which may nest further navPoints.
type ncxNavPoint struct {
	Label    string        `xml:"navLabel>text"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// parseNCX decodes an NCX file and returns its labels in document order.
func parseNCX(data []byte) ([]string, error) {
	data = preprocessHTMLEntities(trimBOM(data))

	var doc ncxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("epub: parse NCX: %w", err)
	}

	var labels []string
	var walk func([]ncxNavPoint)
	walk = func(points []ncxNavPoint) {
		for _, np := range points {
			labels = append(labels, normalizeLabel(np.Label))
			walk(np.Children)
		}
	}
	walk(doc.Points)
	return labels, nil
}

// parseNavDocument returns the labels of the <nav epub:type="toc"> list of
// an ePub 3 navigation document, in document order.
func parseNavDocument(text string) ([]string, error) {
	doc, err := markup.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("epub: parse nav document: %w", err)
	}

	for _, nav := range doc.Find(atom.Nav) {
		if !hasEpubType(nav, "toc") {
			continue
		}
		ol := firstDescendant(nav, atom.Ol)
		if ol == nil {
			return nil, nil
		}
		var labels []string
		collectNavLabels(ol, &labels)
		return labels, nil
	}
	return nil, fmt.Errorf("epub: nav document has no toc nav")
}

// collectNavLabels appends the label of every <li> under ol, depth first.
// A <li> is labelled by its first <a>, or by a <span> heading when it has
// no link.
func collectNavLabels(ol *html.Node, labels *[]string) {
	for _, li := range markup.Elements(ol) {
		if li.DataAtom != atom.Li {
			continue
		}
		var label string
		var nested []*html.Node
		for _, c := range markup.Elements(li) {
			switch c.DataAtom {
			case atom.A, atom.Span:
				if label == "" {
					label = normalizeLabel(markup.TextContent(c))
				}
			case atom.Ol:
				nested = append(nested, c)
			}
		}
		*labels = append(*labels, label)
		for _, n := range nested {
			collectNavLabels(n, labels)
		}
	}
}

// hasEpubType checks whether n has an epub:type attribute containing the
// given space-separated token.
func hasEpubType(n *html.Node, typeName string) bool {
	val, _ := markup.Attr(n, "epub:type")
	for _, t := range strings.Fields(val) {
		if t == typeName {
			return true
		}
	}
	return false
}

// firstDescendant performs a depth-first search below n for the first
// element with tag a.
func firstDescendant(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := firstDescendant(c, a); found != nil {
			return found
		}
	}
	return nil
}

// normalizeLabel trims s and collapses inner whitespace runs to one space.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
