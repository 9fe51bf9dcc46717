// Package annotation stores text highlights anchored to a book chapter and
// page.
//
// Highlights keep only chapter/page coordinates and the selected text, not
// offsets into the sanitized markup, so the recorded page is advisory once
// the chapter is paginated with a different word budget.
package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownColor is returned by ParseColor for unsupported colors.
var ErrUnknownColor = errors.New("annotation: unknown highlight color")

// Color is a highlight color.
type Color string

const (
	Yellow Color = "yellow"
	Blue   Color = "blue"
	Green  Color = "green"
)

// ParseColor validates s as a highlight color (case-insensitive).
func ParseColor(s string) (Color, error) {
	switch c := Color(strings.ToLower(strings.TrimSpace(s))); c {
	case Yellow, Blue, Green:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// Highlight is a persisted text selection.
type Highlight struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Color       Color     `json:"color"`
	BookID      string    `json:"bookId"`
	Chapter     int       `json:"chapter"`
	Page        int       `json:"page"`
	DateCreated time.Time `json:"dateCreated"`
}

// Set maps highlight id to highlight for one book.
type Set map[string]Highlight

// Delete removes id and reports whether it was present.
func (s Set) Delete(id string) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

// Resolve looks up a highlight by id.
func (s Set) Resolve(id string) (Highlight, bool) {
	h, ok := s[id]
	return h, ok
}

// List returns the highlights newest first. Equal timestamps fall back to
// descending id so the order is deterministic.
func (s Set) List() []Highlight {
	out := make([]Highlight, 0, len(s))
	for _, h := range s {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].DateCreated.After(out[j].DateCreated)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// MarshalJSON encodes the set as [[id, highlight], ...], oldest first.
func (s Set) MarshalJSON() ([]byte, error) {
	list := s.List()
	pairs := make([][2]any, len(list))
	for i := range list {
		h := list[len(list)-1-i]
		pairs[i] = [2]any{h.ID, h}
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes the [[id, highlight], ...] form. A null value
// yields an empty set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("annotation: decode highlights: %w", err)
	}
	out := make(Set, len(pairs))
	for _, raw := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return fmt.Errorf("annotation: malformed highlight entry %s", raw)
		}
		var id string
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return fmt.Errorf("annotation: decode highlight id: %w", err)
		}
		var h Highlight
		if err := json.Unmarshal(pair[1], &h); err != nil {
			return fmt.Errorf("annotation: decode highlight %s: %w", id, err)
		}
		if h.ID == "" {
			h.ID = id
		}
		out[id] = h
	}
	*s = out
	return nil
}

// Store creates highlights. The zero value is not usable; call NewStore.
type Store struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides highlight id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore returns a Store that stamps UTC times and random 128-bit ids.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   func() time.Time { return time.Now().UTC() },
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh highlight id.
func NewID() string {
	return "highlight_" + uuid.NewString()
}

// Create records a highlight of text at (chapter, page) of bookID in set.
// The caller guarantees text is non-empty and chapter is a valid index.
func (st *Store) Create(set Set, bookID string, chapter, page int, text string, color Color) Highlight {
	h := Highlight{
		ID:          st.newID(),
		Text:        text,
		Color:       color,
		BookID:      bookID,
		Chapter:     chapter,
		Page:        page,
		DateCreated: st.now(),
	}
	set[h.ID] = h
	return h
}
