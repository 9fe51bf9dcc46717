package epub

import (
	"encoding/xml"
	"fmt"
	"mime"
	"strings"
)

// opfPackage represents the root <package> element of an OPF file.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

// opfMetadata holds the raw metadata elements from the OPF file.
type opfMetadata struct {
	Titles       []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators     []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages    []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifiers  []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publishers   []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Dates        []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ date"`
	Descriptions []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ description"`
	Subjects     []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ subject"`
	Rights       []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ rights"`
	Metas        []opfMeta      `xml:"meta"`
}

// opfDCElement holds a Dublin Core element. Only the id attribute is kept;
// ePub 3 refinements point at it.
type opfDCElement struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr"`
}

// opfMeta represents an ePub 3 <meta property="..." refines="#id"> element.
type opfMeta struct {
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Value    string `xml:",chardata"`
}

// opfManifest wraps the <manifest> element.
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem represents a single <item> in the manifest.
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// opfSpine wraps the <spine> element.
type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

// opfSpineItemRef represents a single <itemref> in the spine.
type opfSpineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// manifestItem is a manifest entry resolved against the OPF directory.
type manifestItem struct {
	ID         string
	Path       string // ZIP-internal path
	MediaType  string
	Properties []string
}

// Media types of the documents the parser cares about.
const (
	mediaTypeXHTML = "application/xhtml+xml"
	mediaTypeHTML  = "text/html"
	mediaTypeNCX   = "application/x-dtbncx+xml"
)

// parseOPF decodes the OPF package document. HTML named entities are
// rewritten first because encoding/xml only knows the five XML entities.
func parseOPF(data []byte) (*opfPackage, error) {
	data = preprocessHTMLEntities(trimBOM(data))

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w", err)
	}
	if pkg.Version == "" {
		pkg.Version = "2.0"
	}
	return &pkg, nil
}

// buildManifest maps manifest id to item, resolving each href relative to
// opfPath. Items whose href escapes the archive root get an empty Path.
func buildManifest(items []opfManifestItem, opfPath string) map[string]manifestItem {
	out := make(map[string]manifestItem, len(items))
	for _, it := range items {
		p, _ := resolveHref(opfPath, it.Href)
		out[it.ID] = manifestItem{
			ID:         it.ID,
			Path:       p,
			MediaType:  it.MediaType,
			Properties: strings.Fields(it.Properties),
		}
	}
	return out
}

// isDocumentMediaType reports whether mt names an XHTML-compatible content
// document. Parameters such as "; charset=utf-8" are ignored.
func isDocumentMediaType(mt string) bool {
	base, _, err := mime.ParseMediaType(mt)
	if err != nil {
		base = strings.ToLower(strings.TrimSpace(mt))
	}
	return base == mediaTypeXHTML || base == mediaTypeHTML
}

func (m manifestItem) hasProperty(p string) bool {
	for _, v := range m.Properties {
		if v == p {
			return true
		}
	}
	return false
}
