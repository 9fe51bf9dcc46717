package epub

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html/atom"

	"github.com/simp-lee/epubreader/annotation"
	"github.com/simp-lee/epubreader/markup"
)

// NewBookID returns a fresh, process-unique book id.
func NewBookID() string {
	return "book_" + uuid.NewString()
}

// Open parses the ePub file at path into a Book with a new id. The file is
// fully read and closed before Open returns.
func Open(path string) (*Book, error) {
	a, err := OpenArchiveFile(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return Parse(a, filepath.Base(path), NewBookID())
}

// NewReader parses an ePub read from r into a Book with a new id.
func NewReader(r io.ReaderAt, size int64, displayName string) (*Book, error) {
	a, err := OpenArchive(r, size)
	if err != nil {
		return nil, err
	}
	return Parse(a, displayName, NewBookID())
}

// parser carries the state of a single Parse call.
type parser struct {
	archive  *Archive
	opfPath  string
	pkg      *opfPackage
	manifest map[string]manifestItem
	warnings []string
}

func (p *parser) warn(msg string) {
	p.warnings = append(p.warnings, msg)
}

// Parse turns an opened archive into a Book named displayName with id
// bookID. Chapter content is read eagerly, so the archive may be closed
// once Parse returns.
//
// Parse fails with ErrMalformedArchive when META-INF/container.xml is
// missing, ErrMissingManifest when the package document cannot be located
// or decoded, and ErrDRMProtected for encrypted books. Unreadable or
// non-document spine entries are skipped.
func Parse(a *Archive, displayName, bookID string) (*Book, error) {
	p := &parser{archive: a}
	p.warnings = append(p.warnings, a.Warnings()...)

	opfPath, err := parseContainer(a)
	if err != nil {
		return nil, err
	}
	p.opfPath = opfPath

	if !a.Has(opfPath) {
		return nil, fmt.Errorf("epub: package document %s: %w", opfPath, ErrMissingManifest)
	}
	data, err := a.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("epub: read package document: %v: %w", err, ErrMissingManifest)
	}
	p.pkg, err = parseOPF(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrMissingManifest)
	}

	fontObfuscation, err := checkDRM(a)
	if err != nil {
		if errors.Is(err, ErrDRMProtected) {
			return nil, err
		}
		p.warn(fmt.Sprintf("cannot inspect encryption.xml: %v", err))
	}
	if fontObfuscation {
		p.warn("embedded fonts are obfuscated")
	}

	p.manifest = buildManifest(p.pkg.Manifest.Items, opfPath)

	now := time.Now().UTC()
	book := &Book{
		ID:         bookID,
		Filename:   displayName,
		Metadata:   extractMetadata(p.pkg),
		Chapters:   p.readChapters(),
		Highlights: annotation.Set{},
		DateAdded:  now,
		LastRead:   now,
	}
	p.resolveTitles(book.Chapters)
	book.Warnings = p.warnings
	return book, nil
}

// readChapters walks the spine and reads every document item in order.
func (p *parser) readChapters() []Chapter {
	var chapters []Chapter
	for _, ref := range p.pkg.Spine.ItemRefs {
		item, ok := p.manifest[ref.IDRef]
		if !ok {
			p.warn(fmt.Sprintf("spine itemref %q not in manifest", ref.IDRef))
			continue
		}
		if !isDocumentMediaType(item.MediaType) {
			continue
		}
		if item.Path == "" {
			p.warn(fmt.Sprintf("spine item %q has an unsafe href", item.ID))
			continue
		}
		content, err := p.archive.ReadText(item.Path)
		if err != nil {
			p.warn(fmt.Sprintf("skipping spine item %q: %v", item.ID, err))
			continue
		}
		index := len(chapters)
		chapters = append(chapters, Chapter{
			ID:      item.ID,
			Title:   placeholderTitle(index),
			Content: content,
			Path:    item.Path,
			Index:   index,
		})
	}
	return chapters
}

// resolveTitles applies navigation labels positionally. Without a usable
// navigation document, or with one that lists nothing, every chapter falls
// back to its own headings.
func (p *parser) resolveTitles(chapters []Chapter) {
	if labels, ok := p.navigationLabels(); ok && len(labels) > 0 {
		for i := range chapters {
			if i < len(labels) && labels[i] != "" {
				chapters[i].Title = labels[i]
			}
		}
		return
	}
	for i := range chapters {
		if title := headingTitle(chapters[i].Content); title != "" {
			chapters[i].Title = title
		}
	}
}

// headingTitle returns the trimmed text of the first <h1>, else the first
// <h2>, else <title>, or "" when none has text.
func headingTitle(content string) string {
	doc, err := markup.Parse(content)
	if err != nil {
		return ""
	}
	for _, a := range []atom.Atom{atom.H1, atom.H2, atom.Title} {
		if n := doc.First(a); n != nil {
			if t := normalizeLabel(markup.TextContent(n)); t != "" {
				return t
			}
		}
	}
	return ""
}

func placeholderTitle(index int) string {
	return "Chapter " + strconv.Itoa(index+1)
}
