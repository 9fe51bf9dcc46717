package library

import (
	"encoding/json"
	"errors"
	"fmt"

	epub "github.com/simp-lee/epubreader"
	"github.com/simp-lee/epubreader/annotation"
	"github.com/simp-lee/epubreader/store"
)

// state is the persisted blob.
type state struct {
	Books         []bookEntry `json:"books"`
	CurrentBookID *string     `json:"currentBookId"`
	ViewMode      ViewMode    `json:"viewMode"`
	Settings      settings    `json:"settings"`
}

type settings struct {
	PageWordBudget int `json:"pageWordBudget,omitempty"`
}

// bookEntry encodes as the pair [id, book].
type bookEntry struct {
	ID   string
	Book *epub.Book
}

func (e bookEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Book})
}

func (e *bookEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("library: book entry has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.ID); err != nil {
		return fmt.Errorf("library: decode book id: %w", err)
	}
	e.Book = new(epub.Book)
	if err := json.Unmarshal(pair[1], e.Book); err != nil {
		return fmt.Errorf("library: decode book %s: %w", e.ID, err)
	}
	return nil
}

// Save writes the whole library to the store. Failures wrap
// ErrPersistence and leave the in-memory state untouched.
func (l *Library) Save() error {
	s := state{
		Books:    make([]bookEntry, 0, len(l.order)),
		ViewMode: l.viewMode,
		Settings: settings{PageWordBudget: l.budget},
	}
	for _, id := range l.order {
		s.Books = append(s.Books, bookEntry{ID: id, Book: l.books[id]})
	}
	if l.currentID != "" {
		id := l.currentID
		s.CurrentBookID = &id
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: encode state: %v", ErrPersistence, err)
	}
	if err := l.store.Save(l.cfg.Storage.Key, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	l.log.Debugf("Saved %d books (%d bytes)", len(s.Books), len(data))
	return nil
}

// persist saves and logs a failure instead of returning it.
func (l *Library) persist() {
	if err := l.Save(); err != nil {
		l.log.Errorf("Failed to save data: %v", err)
	}
}

// Restore replaces the library with the persisted state. Nothing stored is
// not an error. The stored active book is re-activated with its cursor
// clamped to the current pagination.
func (l *Library) Restore() error {
	data, err := l.store.Load(l.cfg.Storage.Key)
	if errors.Is(err, store.ErrNotFound) {
		l.log.Debug("No saved data")
		return nil
	}
	if err != nil {
		l.log.Errorf("Failed to load saved data: %v", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		l.log.Errorf("Failed to load saved data: %v", err)
		return fmt.Errorf("%w: decode state: %v", ErrPersistence, err)
	}

	l.books = make(map[string]*epub.Book, len(s.Books))
	l.order = l.order[:0]
	l.currentID = ""
	l.cache.Flush()
	for _, e := range s.Books {
		if e.Book == nil || e.ID == "" {
			continue
		}
		if _, dup := l.books[e.ID]; dup {
			continue
		}
		e.Book.ID = e.ID
		if e.Book.Highlights == nil {
			e.Book.Highlights = annotation.Set{}
		}
		l.books[e.ID] = e.Book
		l.order = append(l.order, e.ID)
	}
	if m, err := ParseViewMode(string(s.ViewMode)); err == nil {
		l.viewMode = m
	}
	if s.Settings.PageWordBudget > 0 {
		l.budget = s.Settings.PageWordBudget
	}
	if s.CurrentBookID != nil {
		if b, ok := l.books[*s.CurrentBookID]; ok {
			l.switchTo(b)
		}
	}
	l.log.Infof("Loaded %d books from storage", len(l.order))
	return nil
}
