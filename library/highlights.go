package library

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/simp-lee/epubreader/annotation"
)

// CreateHighlight records text at the cursor of the active book.
func (l *Library) CreateHighlight(text string, color annotation.Color) (annotation.Highlight, bool) {
	c, ok := l.Cursor()
	if !ok {
		return annotation.Highlight{}, false
	}
	return l.CreateHighlightAt(c.BookID, c.Chapter, c.Page, text, color)
}

// CreateHighlightAt records text at (chapter, page) of a book. Blank text,
// an unknown book or color, and an invalid chapter are rejected.
func (l *Library) CreateHighlightAt(bookID string, chapter, page int, text string, color annotation.Color) (annotation.Highlight, bool) {
	b, ok := l.books[bookID]
	if !ok || !b.ValidChapter(chapter) || strings.TrimSpace(text) == "" || page < 0 {
		return annotation.Highlight{}, false
	}
	if _, err := annotation.ParseColor(string(color)); err != nil {
		return annotation.Highlight{}, false
	}
	if b.Highlights == nil {
		b.Highlights = annotation.Set{}
	}
	h := l.notes.Create(b.Highlights, bookID, chapter, page, text, color)
	l.log.WithFields(logrus.Fields{
		"book":    bookID,
		"chapter": chapter,
		"page":    page,
	}).Infof("Highlight %s created (%s)", h.ID, color)
	l.persist()
	return h, true
}

// DeleteHighlight removes a highlight from a book.
func (l *Library) DeleteHighlight(bookID, id string) bool {
	b, ok := l.books[bookID]
	if !ok || !b.Highlights.Delete(id) {
		return false
	}
	l.log.WithFields(logrus.Fields{"book": bookID}).Infof("Highlight %s deleted", id)
	l.persist()
	return true
}

// Highlights lists a book's highlights, newest first.
func (l *Library) Highlights(bookID string) []annotation.Highlight {
	b, ok := l.books[bookID]
	if !ok {
		return nil
	}
	return b.Highlights.List()
}

// ResolveHighlight looks up a highlight of a book.
func (l *Library) ResolveHighlight(bookID, id string) (annotation.Highlight, bool) {
	b, ok := l.books[bookID]
	if !ok {
		return annotation.Highlight{}, false
	}
	return b.Highlights.Resolve(id)
}

// GotoHighlight moves the cursor of the active book to a highlight's
// chapter and page. The recorded page is clamped to the chapter's current
// pagination.
func (l *Library) GotoHighlight(id string) bool {
	b := l.Current()
	if b == nil {
		return false
	}
	h, ok := b.Highlights.Resolve(id)
	if !ok || !b.ValidChapter(h.Chapter) {
		return false
	}
	page := 0
	if l.viewMode == Paginated {
		page = clamp(h.Page, 0, l.pages(b, h.Chapter).Count()-1)
	}
	l.moveTo(b, h.Chapter, page)
	return true
}
