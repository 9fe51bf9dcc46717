package epub

import (
	"time"

	"github.com/simp-lee/epubreader/annotation"
)

// Metadata holds the Dublin Core fields of a book. Title, Creator and
// Language carry placeholders when the package document omits them.
type Metadata struct {
	Title       string   `json:"title"`
	Creator     string   `json:"creator"`
	Language    string   `json:"language"`
	Identifier  string   `json:"identifier"`
	Description string   `json:"description"`
	Publisher   string   `json:"publisher"`
	Date        string   `json:"date"`
	Subjects    []string `json:"subjects,omitempty"`
	Rights      string   `json:"rights,omitempty"`

	// Version is the ePub package version (e.g., "2.0", "3.0").
	Version string `json:"version,omitempty"`
}

// Chapter is one spine document of a book.
type Chapter struct {
	// ID is the manifest item ID.
	ID string `json:"id"`

	// Title comes from the navigation document, a heading, or the
	// "Chapter N" placeholder.
	Title string `json:"title"`

	// Content is the raw markup of the document.
	Content string `json:"content"`

	// Path is the ZIP-internal path of the document.
	Path string `json:"path"`

	// Index is the dense position in reading order, starting at 0.
	Index int `json:"index"`
}

// Book is an imported ePub together with its reading state.
type Book struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename"`
	Metadata Metadata  `json:"metadata"`
	Chapters []Chapter `json:"chapters"`

	// TOCOverride replaces chapter titles positionally in TOC when an
	// entry is non-empty.
	TOCOverride []string `json:"tocOverride,omitempty"`

	CurrentChapter int `json:"currentChapter"`
	CurrentPage    int `json:"currentPage"`

	// ScrollPosition is the continuous-view offset, if one was saved.
	ScrollPosition *int `json:"scrollPosition,omitempty"`

	Highlights annotation.Set `json:"highlights"`
	DateAdded  time.Time      `json:"dateAdded"`
	LastRead   time.Time      `json:"lastRead"`

	// Warnings lists non-fatal problems seen during import. Not persisted.
	Warnings []string `json:"-"`
}

// TOCEntry is one line of a book's table of contents.
type TOCEntry struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// TOC returns one entry per chapter, applying TOCOverride.
func (b *Book) TOC() []TOCEntry {
	out := make([]TOCEntry, len(b.Chapters))
	for i, ch := range b.Chapters {
		title := ch.Title
		if i < len(b.TOCOverride) && b.TOCOverride[i] != "" {
			title = b.TOCOverride[i]
		}
		out[i] = TOCEntry{Index: i, Title: title}
	}
	return out
}

// ValidChapter reports whether i indexes b.Chapters.
func (b *Book) ValidChapter(i int) bool {
	return i >= 0 && i < len(b.Chapters)
}
