package epub

import (
	"reflect"
	"strings"
	"testing"
)

// navPoint renders an NCX navPoint with the given label and children.
func navPoint(label string, children ...string) string {
	return "<navPoint><navLabel><text>" + label + "</text></navLabel><content src=\"x.xhtml\"/>" +
		strings.Join(children, "") + "</navPoint>"
}

func ncxDoc(points ...string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"><navMap>` +
		strings.Join(points, "") + `</navMap></ncx>`)
}

func TestParseNCX(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{
			name: "flat",
			data: ncxDoc(navPoint("One"), navPoint("Two"), navPoint("Three")),
			want: []string{"One", "Two", "Three"},
		},
		{
			name: "nested points follow their parent",
			data: ncxDoc(
				navPoint("Book I", navPoint("Prologue", navPoint("Scene")), navPoint("Exile")),
				navPoint("Book II"),
			),
			want: []string{"Book I", "Prologue", "Scene", "Exile", "Book II"},
		},
		{
			name: "entities and blank labels",
			data: ncxDoc(navPoint("Caf&eacute; &mdash; Intro"), navPoint("  \n ")),
			want: []string{"Café — Intro", ""},
		},
		{
			name: "labels are whitespace-normalized",
			data: ncxDoc(navPoint("  A\n   long\ttitle ")),
			want: []string{"A long title"},
		},
		{
			name: "empty navMap",
			data: []byte(`<ncx><navMap/></ncx>`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNCX(tt.data)
			if err != nil {
				t.Fatalf("parseNCX: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseNCX() = %q; want %q", got, tt.want)
			}
		})
	}

	if _, err := parseNCX([]byte(`<ncx><navMap>`)); err == nil {
		t.Error("parseNCX(truncated) succeeded; want error")
	}
}

// --- Nav Document (ePub 3) tests ---

func TestParseNavDocument(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr bool
	}{
		{
			name: "flat",
			body: `<nav epub:type="toc"><h1>Contents</h1><ol>
  <li><a href="chapter1.xhtml">Chapter 1</a></li>
  <li><a href="chapter2.xhtml"> Chapter
    2 </a></li>
</ol></nav>`,
			want: []string{"Chapter 1", "Chapter 2"},
		},
		{
			name: "nested",
			body: `<nav epub:type="toc"><ol>
  <li><a href="part1.xhtml">Part I</a>
    <ol>
      <li><a href="chapter1.xhtml">Chapter 1</a></li>
      <li><a href="chapter2.xhtml">Chapter 2</a>
        <ol><li><a href="chapter2.xhtml#sec1">Section 2.1</a></li></ol>
      </li>
    </ol>
  </li>
  <li><a href="part2.xhtml">Part II</a></li>
</ol></nav>`,
			want: []string{"Part I", "Chapter 1", "Chapter 2", "Section 2.1", "Part II"},
		},
		{
			name: "span heading",
			body: `<nav epub:type="toc"><ol>
  <li><span>Part I: Introduction</span>
    <ol><li><a href="chapter1.xhtml">Chapter 1</a></li></ol>
  </li>
</ol></nav>`,
			want: []string{"Part I: Introduction", "Chapter 1"},
		},
		{
			name: "landmarks ignored",
			body: `<nav epub:type="landmarks"><ol>
  <li><a epub:type="toc" href="toc.xhtml">Table of Contents</a></li>
</ol></nav>
<nav epub:type="toc"><ol><li><a href="chapter1.xhtml">Chapter 1</a></li></ol></nav>`,
			want: []string{"Chapter 1"},
		},
		{
			name: "toc nav without list",
			body: `<nav epub:type="toc"><h1>Table of Contents</h1></nav>`,
			want: nil,
		},
		{
			name:    "no toc nav",
			body:    `<div>No nav here</div>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops"><body>` +
				tt.body + `</body></html>`
			got, err := parseNavDocument(doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseNavDocument() err = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseNavDocument() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- title resolution through Parse ---

// navBookFiles builds a three-chapter book whose package version and
// navigation files are supplied by the caller.
func navBookFiles(version, manifestExtra, spineAttr string, extra map[string]string) map[string]string {
	opf := `<?xml version="1.0" encoding="UTF-8"?>
<package version="` + version + `" xmlns="http://www.idpf.org/2007/opf">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Nav Book</dc:title></metadata>
  <manifest>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="c2.xhtml" media-type="application/xhtml+xml"/>
    <item id="c3" href="c3.xhtml" media-type="application/xhtml+xml"/>
    ` + manifestExtra + `
  </manifest>
  <spine` + spineAttr + `>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="c3"/>
  </spine>
</package>`
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": validContainerXML,
		"OEBPS/content.opf":      opf,
		"OEBPS/c1.xhtml":         xhtmlDoc("t1", "<h1>Heading One</h1>"),
		"OEBPS/c2.xhtml":         xhtmlDoc("t2", "<h1>Heading Two</h1>"),
		"OEBPS/c3.xhtml":         xhtmlDoc("t3", "<h1>Heading Three</h1>"),
	}
	for k, v := range extra {
		files[k] = v
	}
	return files
}

func ncxWithLabels(labels ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"><navMap>`)
	for _, l := range labels {
		sb.WriteString(`<navPoint><navLabel><text>` + l + `</text></navLabel><content src="c1.xhtml"/></navPoint>`)
	}
	sb.WriteString(`</navMap></ncx>`)
	return sb.String()
}

func navWithLabels(labels ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops"><body><nav epub:type="toc"><ol>`)
	for _, l := range labels {
		sb.WriteString(`<li><a href="c1.xhtml">` + l + `</a></li>`)
	}
	sb.WriteString(`</ol></nav></body></html>`)
	return sb.String()
}

func chapterTitles(b *Book) []string {
	out := make([]string, len(b.Chapters))
	for i, ch := range b.Chapters {
		out[i] = ch.Title
	}
	return out
}

func TestParse_ChapterTitles(t *testing.T) {
	const (
		ncxItem = `<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>`
		navItem = `<item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>`
	)

	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{
			name: "epub2 NCX via spine toc",
			files: navBookFiles("2.0", ncxItem, ` toc="ncx"`, map[string]string{
				"OEBPS/toc.ncx": ncxWithLabels("N1", "N2", "N3"),
			}),
			want: []string{"N1", "N2", "N3"},
		},
		{
			name: "NCX located by media type",
			files: navBookFiles("2.0", ncxItem, "", map[string]string{
				"OEBPS/toc.ncx": ncxWithLabels("N1", "N2", "N3"),
			}),
			want: []string{"N1", "N2", "N3"},
		},
		{
			name: "leftover chapters keep placeholder",
			files: navBookFiles("2.0", ncxItem, ` toc="ncx"`, map[string]string{
				"OEBPS/toc.ncx": ncxWithLabels("Only One"),
			}),
			want: []string{"Only One", "Chapter 2", "Chapter 3"},
		},
		{
			name: "empty label keeps placeholder",
			files: navBookFiles("2.0", ncxItem, ` toc="ncx"`, map[string]string{
				"OEBPS/toc.ncx": ncxWithLabels("A", "", "C"),
			}),
			want: []string{"A", "Chapter 2", "C"},
		},
		{
			name: "extra labels ignored",
			files: navBookFiles("2.0", ncxItem, ` toc="ncx"`, map[string]string{
				"OEBPS/toc.ncx": ncxWithLabels("A", "B", "C", "D", "E"),
			}),
			want: []string{"A", "B", "C"},
		},
		{
			name: "epub3 prefers nav",
			files: navBookFiles("3.0", navItem+ncxItem, ` toc="ncx"`, map[string]string{
				"OEBPS/nav.xhtml": navWithLabels("V1", "V2", "V3"),
				"OEBPS/toc.ncx":   ncxWithLabels("N1", "N2", "N3"),
			}),
			want: []string{"V1", "V2", "V3"},
		},
		{
			name: "epub3 falls back to NCX",
			files: navBookFiles("3.0", navItem+ncxItem, ` toc="ncx"`, map[string]string{
				"OEBPS/toc.ncx": ncxWithLabels("N1", "N2", "N3"),
			}),
			want: []string{"N1", "N2", "N3"},
		},
		{
			name:  "epub2 ignores nav document",
			files: navBookFiles("2.0", navItem, "", map[string]string{"OEBPS/nav.xhtml": navWithLabels("V1", "V2", "V3")}),
			want:  []string{"Heading One", "Heading Two", "Heading Three"},
		},
		{
			name:  "no navigation uses headings",
			files: navBookFiles("2.0", "", "", nil),
			want:  []string{"Heading One", "Heading Two", "Heading Three"},
		},
		{
			name: "unparseable NCX uses headings",
			files: navBookFiles("2.0", ncxItem, ` toc="ncx"`, map[string]string{
				"OEBPS/toc.ncx": `<ncx><navMap>`,
			}),
			want: []string{"Heading One", "Heading Two", "Heading Three"},
		},
		{
			name:  "NCX listed but missing uses headings",
			files: navBookFiles("2.0", ncxItem, ` toc="ncx"`, nil),
			want:  []string{"Heading One", "Heading Two", "Heading Three"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := Parse(buildTestZip(t, tt.files), "nav.epub", "book_test")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := chapterTitles(book); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chapter titles = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadingTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"h1 wins", xhtmlDoc("T", "<h2>Second</h2><h1>First</h1>"), "First"},
		{"h2 when no h1", xhtmlDoc("T", "<h2>Second</h2>"), "Second"},
		{"title when no headings", xhtmlDoc("Doc Title", "<p>x</p>"), "Doc Title"},
		{"blank h1 skipped", xhtmlDoc("T", "<h1>  </h1><h2>Real</h2>"), "Real"},
		{"whitespace collapsed", xhtmlDoc("T", "<h1> A\n  <em>B</em> </h1>"), "A B"},
		{"nothing", "<p>plain</p>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headingTitle(tt.content); got != tt.want {
				t.Errorf("headingTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
