package epub

import (
	"bytes"
	"net/url"
	"path"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// resolveHref turns a manifest or navigation href into an archive path.
// Any query or fragment is dropped, then the href is taken relative to the
// directory of from, percent-decoded, and cleaned. Absolute hrefs and results outside the archive root are rejected.
func resolveHref(from, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "/") {
		return "", false
	}
	href, _, _ = strings.Cut(href, "#")
	href, _, _ = strings.Cut(href, "?")
	if href == "" {
		return "", false
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	p := path.Join(path.Dir(from), href)
	if !insideArchive(p) {
		return "", false
	}
	return p, true
}

// insideArchive reports whether name stays under the archive root once
// cleaned.
func insideArchive(name string) bool {
	switch p := path.Clean(name); {
	case strings.HasPrefix(p, "/"), p == "..", strings.HasPrefix(p, "../"):
		return false
	}
	return true
}

func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}
