package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// buildTestZipBytes creates an in-memory ZIP archive from the provided files
// map (path → content). A "mimetype" entry is written first; the rest follow
// in lexical order so that archives are reproducible.
func buildTestZipBytes(t testing.TB, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		if name != "mimetype" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := files["mimetype"]; ok {
		names = append([]string{"mimetype"}, names...)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildTestZipBytes: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, files[name]); err != nil {
			t.Fatalf("buildTestZipBytes: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestZipBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// buildTestZip returns an *Archive over an in-memory ZIP built from files.
// It calls t.Fatal on any error.
func buildTestZip(t testing.TB, files map[string]string) *Archive {
	t.Helper()
	data := buildTestZipBytes(t, files)
	a, err := OpenArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestZip: open archive: %v", err)
	}
	return a
}

// buildTestEPubFile writes an ePub (ZIP) archive to a temporary file and returns
// the file path. This variant is useful for testing Open() which requires a file path.
func buildTestEPubFile(t testing.TB, files map[string]string) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(fp, buildTestZipBytes(t, files), 0644); err != nil {
		t.Fatalf("buildTestEPubFile: write file: %v", err)
	}
	return fp
}

// validContainerXML is a well-formed META-INF/container.xml pointing to an OPF.
const validContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// threeChapterOPF declares three XHTML spine items and no navigation document.
const threeChapterOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package version="2.0" xmlns="http://www.idpf.org/2007/opf" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Three Chapters</dc:title>
    <dc:creator>Jane Roe</dc:creator>
    <dc:language>fr</dc:language>
    <dc:identifier id="bookid">urn:isbn:9780000000001</dc:identifier>
  </metadata>
  <manifest>
    <item id="c1" href="text/one.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/two.xhtml" media-type="application/xhtml+xml"/>
    <item id="c3" href="text/three.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="c3"/>
  </spine>
</package>`

// xhtmlDoc wraps body in a minimal XHTML document titled title.
func xhtmlDoc(title, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>` + title + `</title></head>
<body>` + body + `</body></html>`
}

// threeChapterFiles is a minimal ePub 2 book with heading-titled chapters.
func threeChapterFiles() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": validContainerXML,
		"OEBPS/content.opf":      threeChapterOPF,
		"OEBPS/style.css":        "p { margin: 0 }",
		"OEBPS/text/one.xhtml":   xhtmlDoc("One", "<h1>The Beginning</h1><p>First words.</p>"),
		"OEBPS/text/two.xhtml":   xhtmlDoc("Two", "<h2>  The   Middle </h2><p>More words.</p>"),
		"OEBPS/text/three.xhtml": xhtmlDoc("The End", "<p>No heading here.</p>"),
	}
}

// packageDoc wraps Dublin Core metadata and manifest/spine markup in a
// package document of the given version ("" omits the attribute).
func packageDoc(version, metadata, manifest, spine string) string {
	attr := ""
	if version != "" {
		attr = ` version="` + version + `"`
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<package` + attr + ` xmlns="http://www.idpf.org/2007/opf" xmlns:opf="http://www.idpf.org/2007/opf">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">` + metadata + `</metadata>
  <manifest>` + manifest + `</manifest>
  ` + spine + `
</package>`
}
