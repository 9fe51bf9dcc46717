package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	containerPath    = "META-INF/container.xml"
	packageMediaType = "application/oebps-package+xml"
)

type containerDoc struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// parseContainer returns the package document path named by container.xml.
//
// A missing or undecodable container.xml is ErrMalformedArchive. A container
// that names no usable rootfile is ErrMissingManifest.
func parseContainer(a *Archive) (string, error) {
	if !a.Has(containerPath) {
		return "", fmt.Errorf("epub: %s not found: %w", containerPath, ErrMalformedArchive)
	}
	data, err := a.ReadFile(containerPath)
	if err != nil {
		return "", fmt.Errorf("epub: read container.xml: %v: %w", err, ErrMalformedArchive)
	}

	var doc containerDoc
	if err := xml.Unmarshal(trimBOM(data), &doc); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %v: %w", err, ErrMalformedArchive)
	}
	p, ok := pickRootfile(doc.RootFiles)
	if !ok {
		return "", fmt.Errorf("epub: container.xml names no rootfile: %w", ErrMissingManifest)
	}
	return p, nil
}

// pickRootfile prefers the first rootfile typed as a package document and
// falls back to the first one with any path.
func pickRootfile(files []rootFile) (string, bool) {
	first := ""
	for _, rf := range files {
		p := strings.TrimSpace(rf.FullPath)
		switch {
		case p == "":
			continue
		case strings.EqualFold(strings.TrimSpace(rf.MediaType), packageMediaType):
			return p, true
		case first == "":
			first = p
		}
	}
	return first, first != ""
}
