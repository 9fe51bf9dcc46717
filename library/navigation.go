package library

import (
	"math"
	"strconv"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	epub "github.com/simp-lee/epubreader"
	"github.com/simp-lee/epubreader/paginate"
	"github.com/simp-lee/epubreader/sanitize"
)

// Cursor is the reading position of the active book.
type Cursor struct {
	BookID  string
	Chapter int
	Page    int
}

// Cursor returns the active position, or false when no book is active.
func (l *Library) Cursor() (Cursor, bool) {
	b := l.Current()
	if b == nil {
		return Cursor{}, false
	}
	return Cursor{BookID: b.ID, Chapter: b.CurrentChapter, Page: b.CurrentPage}, true
}

// Content returns the sanitized markup of a chapter of the active book.
// Results are cached per book and chapter.
func (l *Library) Content(chapter int) (string, bool) {
	b := l.Current()
	if b == nil || !b.ValidChapter(chapter) {
		return "", false
	}
	return l.content(b, chapter), true
}

func (l *Library) content(b *epub.Book, chapter int) string {
	key := "content/" + b.ID + "/" + strconv.Itoa(chapter)
	if v, ok := l.cache.Get(key); ok {
		return v.(string)
	}
	clean := sanitize.Sanitize(b.Chapters[chapter].Content)
	l.cache.Set(key, clean, cache.DefaultExpiration)
	return clean
}

// pages paginates a chapter at the current budget. Results are cached per
// book, chapter, and budget.
func (l *Library) pages(b *epub.Book, chapter int) paginate.Pages {
	if !b.ValidChapter(chapter) {
		return paginate.Paginate("", l.budget)
	}
	key := "pages/" + b.ID + "/" + strconv.Itoa(chapter) + "/" + strconv.Itoa(l.budget)
	if v, ok := l.cache.Get(key); ok {
		return v.(paginate.Pages)
	}
	p := paginate.Paginate(l.content(b, chapter), l.budget)
	l.cache.Set(key, p, cache.DefaultExpiration)
	l.log.WithFields(logrus.Fields{
		"book":    b.ID,
		"chapter": chapter,
	}).Debugf("Paginated into %d pages", p.Count())
	return p
}

// Pages returns the page sequence of the active chapter.
func (l *Library) Pages() paginate.Pages {
	b := l.Current()
	if b == nil {
		return nil
	}
	return l.pages(b, b.CurrentChapter)
}

// CurrentPage returns the page under the cursor.
func (l *Library) CurrentPage() (paginate.Page, bool) {
	b := l.Current()
	if b == nil || len(b.Chapters) == 0 {
		return paginate.Page{}, false
	}
	p := l.pages(b, b.CurrentChapter)
	return p[b.CurrentPage], true
}

// clampCursor forces the stored cursor of b into range.
func (l *Library) clampCursor(b *epub.Book) {
	if len(b.Chapters) == 0 {
		b.CurrentChapter, b.CurrentPage = 0, 0
		return
	}
	b.CurrentChapter = clamp(b.CurrentChapter, 0, len(b.Chapters)-1)
	b.CurrentPage = clamp(b.CurrentPage, 0, l.pages(b, b.CurrentChapter).Count()-1)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// GotoChapter moves the cursor to the first page of chapter. Out-of-range
// indices and a missing active book leave the cursor unchanged.
func (l *Library) GotoChapter(chapter int) bool {
	b := l.Current()
	if b == nil || !b.ValidChapter(chapter) {
		return false
	}
	l.moveTo(b, chapter, 0)
	return true
}

// NextChapter moves to the following chapter.
func (l *Library) NextChapter() bool {
	b := l.Current()
	return b != nil && l.GotoChapter(b.CurrentChapter+1)
}

// PreviousChapter moves to the preceding chapter.
func (l *Library) PreviousChapter() bool {
	b := l.Current()
	return b != nil && l.GotoChapter(b.CurrentChapter-1)
}

// AdvancePage moves one page forward (dir > 0) or back (dir < 0). At a
// chapter boundary it rolls into the first page of the next chapter or the
// last page of the previous one. In continuous mode it moves whole
// chapters. It reports whether the cursor moved.
func (l *Library) AdvancePage(dir int) bool {
	b := l.Current()
	if b == nil || dir == 0 || len(b.Chapters) == 0 {
		return false
	}
	if l.viewMode == Continuous {
		if dir > 0 {
			return l.NextChapter()
		}
		return l.PreviousChapter()
	}

	count := l.pages(b, b.CurrentChapter).Count()
	switch {
	case dir > 0 && b.CurrentPage < count-1:
		l.moveTo(b, b.CurrentChapter, b.CurrentPage+1)
	case dir > 0 && b.CurrentChapter < len(b.Chapters)-1:
		l.moveTo(b, b.CurrentChapter+1, 0)
	case dir < 0 && b.CurrentPage > 0:
		l.moveTo(b, b.CurrentChapter, b.CurrentPage-1)
	case dir < 0 && b.CurrentChapter > 0:
		prev := b.CurrentChapter - 1
		l.moveTo(b, prev, l.pages(b, prev).Count()-1)
	default:
		return false
	}
	return true
}

// NextPage is AdvancePage(1).
func (l *Library) NextPage() bool { return l.AdvancePage(1) }

// PreviousPage is AdvancePage(-1).
func (l *Library) PreviousPage() bool { return l.AdvancePage(-1) }

func (l *Library) moveTo(b *epub.Book, chapter, page int) {
	if chapter != b.CurrentChapter {
		b.ScrollPosition = nil
	}
	b.CurrentChapter, b.CurrentPage = chapter, page
	b.LastRead = l.now()
	l.log.WithFields(logrus.Fields{
		"book":    b.ID,
		"chapter": chapter,
		"page":    page,
	}).Debug("Cursor moved")
	l.persist()
}

// SetScrollPosition records the continuous-view offset of the active book.
// It is ignored in paginated mode.
func (l *Library) SetScrollPosition(px int) bool {
	b := l.Current()
	if b == nil || l.viewMode != Continuous || px < 0 {
		return false
	}
	b.ScrollPosition = &px
	l.persist()
	return true
}

// Progress returns ComputeProgress for the active book, or 0.
func (l *Library) Progress() int {
	b := l.Current()
	if b == nil {
		return 0
	}
	return l.ComputeProgress(b)
}

// ComputeProgress returns the reading progress of b in percent. In
// paginated mode it is round(100 * (chapter + page/max(1, pages-1)) / N);
// in continuous mode round(100 * chapter / max(1, N-1)).
func (l *Library) ComputeProgress(b *epub.Book) int {
	n := len(b.Chapters)
	if n == 0 {
		return 0
	}
	var pct float64
	if l.viewMode == Continuous {
		pct = 100 * float64(b.CurrentChapter) / float64(max(1, n-1))
	} else {
		count := l.pages(b, b.CurrentChapter).Count()
		frac := float64(b.CurrentPage) / float64(max(1, count-1))
		pct = 100 * (float64(b.CurrentChapter) + frac) / float64(n)
	}
	return clamp(int(math.Round(pct)), 0, 100)
}

// Navigation reports which moves are available from the cursor.
type Navigation struct {
	PreviousPage    bool
	NextPage        bool
	PreviousChapter bool
	NextChapter     bool
}

// Navigation returns the moves available in the current view mode.
func (l *Library) Navigation() Navigation {
	b := l.Current()
	if b == nil || len(b.Chapters) == 0 {
		return Navigation{}
	}
	nav := Navigation{
		PreviousChapter: b.CurrentChapter > 0,
		NextChapter:     b.CurrentChapter < len(b.Chapters)-1,
	}
	if l.viewMode == Continuous {
		nav.PreviousPage, nav.NextPage = nav.PreviousChapter, nav.NextChapter
		return nav
	}
	count := l.pages(b, b.CurrentChapter).Count()
	nav.PreviousPage = b.CurrentPage > 0 || nav.PreviousChapter
	nav.NextPage = b.CurrentPage < count-1 || nav.NextChapter
	return nav
}
