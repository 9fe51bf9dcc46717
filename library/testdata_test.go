package library

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/epubreader/annotation"
	"github.com/simp-lee/epubreader/config"
	"github.com/simp-lee/epubreader/store"
)

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// testBook builds an ePub whose chapter i holds paragraphs[i] paragraphs of
// wordsPerParagraph words each.
func testBook(t *testing.T, title string, wordsPerParagraph int, paragraphs ...int) []byte {
	t.Helper()

	var manifest, spine strings.Builder
	files := map[string]string{}
	for i, n := range paragraphs {
		id := fmt.Sprintf("c%d", i+1)
		fmt.Fprintf(&manifest, `<item id="%s" href="%s.xhtml" media-type="application/xhtml+xml"/>`, id, id)
		fmt.Fprintf(&spine, `<itemref idref="%s"/>`, id)

		var body strings.Builder
		fmt.Fprintf(&body, "<h1>%s chapter %d</h1>", title, i+1)
		for p := 0; p < n; p++ {
			body.WriteString("<p>" + strings.TrimSpace(strings.Repeat("word ", wordsPerParagraph)) + "</p>")
		}
		files["OEBPS/"+id+".xhtml"] = `<html xmlns="http://www.w3.org/1999/xhtml"><head><title>t</title></head><body>` +
			body.String() + `</body></html>`
	}
	files["OEBPS/content.opf"] = `<?xml version="1.0" encoding="UTF-8"?>
<package version="2.0" xmlns="http://www.idpf.org/2007/opf">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>` + title + `</dc:title><dc:creator>Tester</dc:creator></metadata>
  <manifest>` + manifest.String() + `</manifest>
  <spine>` + spine.String() + `</spine>
</package>`
	files["META-INF/container.xml"] = testContainerXML

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	w, err := zw.Create("mimetype")
	require.NoError(t, err)
	_, err = w.Write([]byte("application/epub+zip"))
	require.NoError(t, err)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// writeTestBook stores data as name in a temp dir and returns the path.
func writeTestBook(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

// newTestLibrary returns a Library over st with deterministic ids and time.
func newTestLibrary(t *testing.T, st store.Store) *Library {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	clock := fixedClock()
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(testWriter{t})
	return New(Config{
		Reader:      config.Default(),
		Store:       st,
		Logger:      logger,
		Annotations: annotation.NewStore(annotation.WithClock(clock), annotation.WithIDGenerator(sequentialIDs("highlight_"))),
		Now:         clock,
		NewBookID:   sequentialIDs("book_"),
	})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
