// Package library owns the set of imported books, the reading cursor, and
// the persisted reader state. It composes the epub parser, the sanitizer,
// the paginator, and the annotation store.
//
// A Library is not safe for concurrent use; the presentation shell drives
// it from a single goroutine.
package library

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	epub "github.com/simp-lee/epubreader"
	"github.com/simp-lee/epubreader/annotation"
	"github.com/simp-lee/epubreader/config"
	"github.com/simp-lee/epubreader/paginate"
	"github.com/simp-lee/epubreader/store"
)

// ViewMode selects how chapters are presented.
type ViewMode string

const (
	Paginated  ViewMode = "paginated"
	Continuous ViewMode = "continuous"
)

// ParseViewMode validates s as a view mode.
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Paginated, Continuous:
		return m, nil
	}
	return "", fmt.Errorf("library: unknown view mode %q", s)
}

// Config wires a Library to its collaborators. Zero fields get defaults.
type Config struct {
	// Reader holds the user settings. Zero fields take the config defaults.
	Reader config.Config

	// Store persists the state blob. Defaults to an in-memory store.
	Store store.Store

	// Logger defaults to logrus.New() at Reader.LogLevel.
	Logger *logrus.Logger

	// Annotations creates highlights. Defaults to annotation.NewStore().
	Annotations *annotation.Store

	// Now and NewBookID default to UTC wall time and epub.NewBookID.
	Now       func() time.Time
	NewBookID func() string
}

// Library is the reader state machine.
type Library struct {
	cfg   config.Config
	store store.Store
	log   *logrus.Logger
	debug *DebugLog
	cache *cache.Cache
	notes *annotation.Store
	now   func() time.Time
	newID func() string

	books     map[string]*epub.Book
	order     []string
	currentID string
	viewMode  ViewMode
	budget    int
}

// New builds an empty Library. Call Restore to load persisted state.
func New(cfg Config) *Library {
	cfg.Reader.ApplyDefaults()
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		if lvl, err := logrus.ParseLevel(cfg.Reader.LogLevel); err == nil {
			cfg.Logger.SetLevel(lvl)
		}
	}
	if cfg.Annotations == nil {
		cfg.Annotations = annotation.NewStore()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.NewBookID == nil {
		cfg.NewBookID = epub.NewBookID
	}

	ttl := cfg.Reader.CacheTTL
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}

	l := &Library{
		cfg:      cfg.Reader,
		store:    cfg.Store,
		log:      cfg.Logger,
		debug:    NewDebugLog(cfg.Reader.DebugLogSize),
		cache:    cache.New(ttl, 2*ttl),
		notes:    cfg.Annotations,
		now:      cfg.Now,
		newID:    cfg.NewBookID,
		books:    make(map[string]*epub.Book),
		viewMode: Paginated,
		budget:   cfg.Reader.PageWordBudget,
	}
	if m, err := ParseViewMode(cfg.Reader.ViewMode); err == nil {
		l.viewMode = m
	}
	if l.budget <= 0 {
		l.budget = paginate.DefaultWordBudget
	}
	l.log.AddHook(l.debug)
	return l
}

// ClearDebug drops the retained log entries.
func (l *Library) ClearDebug() {
	l.debug.Clear()
}

// Debug returns the most recent log entries, oldest first.
func (l *Library) Debug() []DebugEntry {
	return l.debug.Entries()
}

// ImportArchive parses an opened archive and inserts the book. The first
// book imported into a library without an active book becomes active.
func (l *Library) ImportArchive(a *epub.Archive, name string) (*epub.Book, error) {
	book, err := epub.Parse(a, name, l.newID())
	if err != nil {
		l.log.WithFields(logrus.Fields{"file": name}).Errorf("Import failed: %v", err)
		return nil, &ImportError{Name: name, Cause: err}
	}

	for _, w := range book.Warnings {
		l.log.WithFields(logrus.Fields{"file": name}).Warn(w)
	}
	l.books[book.ID] = book
	l.order = append(l.order, book.ID)
	l.log.WithFields(logrus.Fields{
		"book":     book.ID,
		"file":     name,
		"chapters": len(book.Chapters),
	}).Infof("Imported %q", book.Metadata.Title)

	if l.currentID == "" {
		l.switchTo(book)
	}
	l.persist()
	return book, nil
}

// ImportFile imports the ePub at path under its base name.
func (l *Library) ImportFile(path string) (*epub.Book, error) {
	name := filepath.Base(path)
	a, err := epub.OpenArchiveFile(path)
	if err != nil {
		l.log.WithFields(logrus.Fields{"file": name}).Errorf("Import failed: %v", err)
		return nil, &ImportError{Name: name, Cause: err}
	}
	defer a.Close()
	return l.ImportArchive(a, name)
}

// ImportBytes imports an ePub held in memory.
func (l *Library) ImportBytes(name string, data []byte) (*epub.Book, error) {
	a, err := epub.OpenArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		l.log.WithFields(logrus.Fields{"file": name}).Errorf("Import failed: %v", err)
		return nil, &ImportError{Name: name, Cause: err}
	}
	return l.ImportArchive(a, name)
}

// ProgressFunc observes a batch import. current is 1-based.
type ProgressFunc func(current, total int, name string)

// ImportFiles imports paths one at a time. A failure does not undo earlier
// imports; each failed file is reported as an *ImportError.
func (l *Library) ImportFiles(paths []string, onProgress ProgressFunc) ([]*epub.Book, []error) {
	var (
		books []*epub.Book
		errs  []error
	)
	for i, p := range paths {
		if onProgress != nil {
			onProgress(i+1, len(paths), filepath.Base(p))
		}
		book, err := l.ImportFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		books = append(books, book)
	}
	l.log.Infof("Imported %d of %d files", len(books), len(paths))
	return books, errs
}

// Books returns the books in insertion order.
func (l *Library) Books() []*epub.Book {
	out := make([]*epub.Book, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.books[id])
	}
	return out
}

// Book looks up a book by id.
func (l *Library) Book(id string) (*epub.Book, bool) {
	b, ok := l.books[id]
	return b, ok
}

// Current returns the active book, or nil.
func (l *Library) Current() *epub.Book {
	return l.books[l.currentID]
}

// Activate switches to the book with the given id and restores its saved
// position. Unknown ids are ignored.
func (l *Library) Activate(id string) bool {
	book, ok := l.books[id]
	if !ok {
		return false
	}
	if prev := l.Current(); prev != nil && prev.ID != id {
		prev.LastRead = l.now()
	}
	l.switchTo(book)
	l.persist()
	return true
}

// switchTo makes book active, clamps its stored cursor, and stamps LastRead.
func (l *Library) switchTo(book *epub.Book) {
	l.currentID = book.ID
	l.clampCursor(book)
	book.LastRead = l.now()
	l.log.WithFields(logrus.Fields{
		"book":    book.ID,
		"chapter": book.CurrentChapter,
		"page":    book.CurrentPage,
	}).Debugf("Switched to %q", book.Metadata.Title)
}

// RemoveBook deletes a book and its cached derivatives. Removing the active
// book activates the first remaining book, if any.
func (l *Library) RemoveBook(id string) bool {
	book, ok := l.books[id]
	if !ok {
		return false
	}
	delete(l.books, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.evict(id)
	l.log.WithFields(logrus.Fields{"book": id}).Infof("Removed %q", book.Metadata.Title)

	if l.currentID == id {
		l.currentID = ""
		if len(l.order) > 0 {
			l.switchTo(l.books[l.order[0]])
		}
	}
	l.persist()
	return true
}

// NextBook activates the book after the current one, wrapping around.
func (l *Library) NextBook() bool {
	return l.cycleBook(1)
}

// PreviousBook activates the book before the current one, wrapping around.
func (l *Library) PreviousBook() bool {
	return l.cycleBook(-1)
}

func (l *Library) cycleBook(dir int) bool {
	if len(l.order) < 2 || l.currentID == "" {
		return false
	}
	for i, id := range l.order {
		if id == l.currentID {
			next := (i + dir + len(l.order)) % len(l.order)
			return l.Activate(l.order[next])
		}
	}
	return false
}

// SetTOCOverride replaces the displayed chapter titles of a book. Empty
// entries keep the parsed title.
func (l *Library) SetTOCOverride(bookID string, titles []string) bool {
	book, ok := l.books[bookID]
	if !ok {
		return false
	}
	book.TOCOverride = append([]string(nil), titles...)
	l.persist()
	return true
}

// TOC returns the active book's table of contents.
func (l *Library) TOC() []epub.TOCEntry {
	if b := l.Current(); b != nil {
		return b.TOC()
	}
	return nil
}

// ViewMode returns the current view mode.
func (l *Library) ViewMode() ViewMode {
	return l.viewMode
}

// SetViewMode switches between paginated and continuous presentation and
// reports whether the mode changed.
func (l *Library) SetViewMode(m ViewMode) bool {
	if (m != Paginated && m != Continuous) || m == l.viewMode {
		return false
	}
	l.viewMode = m
	if b := l.Current(); b != nil {
		l.clampCursor(b)
	}
	l.log.Infof("View mode changed to: %s", m)
	l.persist()
	return true
}

// PageWordBudget returns the pagination budget in words.
func (l *Library) PageWordBudget() int {
	return l.budget
}

// SetPageWordBudget changes the pagination budget. Values below one select
// the default. Cached pages are dropped and the cursor is clamped.
func (l *Library) SetPageWordBudget(n int) {
	if n <= 0 {
		n = paginate.DefaultWordBudget
	}
	if n == l.budget {
		return
	}
	b := l.Current()
	word := 0
	if b != nil && b.ValidChapter(b.CurrentChapter) {
		if pages := l.pages(b, b.CurrentChapter); b.CurrentPage >= 0 && b.CurrentPage < pages.Count() {
			word = pages[b.CurrentPage].WordStart
		}
	}
	l.budget = n
	l.evictPages()
	if b != nil {
		l.clampCursor(b)
		if b.ValidChapter(b.CurrentChapter) {
			b.CurrentPage = l.pages(b, b.CurrentChapter).Locate(word)
		}
	}
	l.persist()
}

// evict drops cached derivatives of one book.
func (l *Library) evict(bookID string) {
	for key := range l.cache.Items() {
		if strings.HasPrefix(key, "content/"+bookID+"/") || strings.HasPrefix(key, "pages/"+bookID+"/") {
			l.cache.Delete(key)
		}
	}
}

func (l *Library) evictPages() {
	for key := range l.cache.Items() {
		if strings.HasPrefix(key, "pages/") {
			l.cache.Delete(key)
		}
	}
}
