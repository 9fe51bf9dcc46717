// Package paginate splits sanitized chapter markup into fixed-capacity pages.
//
// Page boundaries follow top-level body elements, so no page ever holds a
// fragment of an element. The page count comes from a word budget; the word
// range recorded on each page is nominal and only meant for progress display.
package paginate

import (
	"html"
	"strings"

	"github.com/simp-lee/epubreader/markup"
)

// DefaultWordBudget is the number of words per page when no budget is given.
const DefaultWordBudget = 400

// Page is one page of a chapter.
type Page struct {
	// Content is the serialized markup of the elements assigned to the page.
	Content string `json:"content"`

	// WordStart and WordEnd are the nominal word offsets [WordStart, WordEnd).
	WordStart int `json:"wordStart"`
	WordEnd   int `json:"wordEnd"`
}

// Pages is an ordered page sequence. Its index is the page identity.
type Pages []Page

// Paginate splits clean markup into pages of roughly budget words.
// A budget <= 0 selects DefaultWordBudget. The result always holds at least
// one page.
func Paginate(clean string, budget int) Pages {
	if budget <= 0 {
		budget = DefaultWordBudget
	}

	doc, err := markup.Parse(clean)
	if err != nil || doc.Body() == nil {
		return Pages{{Content: clean}}
	}

	words := markup.Words(doc.BodyText())
	total := len(words)
	count := max(1, ceilDiv(total, budget))

	elements := markup.Elements(doc.Body())
	perPage := ceilDiv(len(elements), count)

	pages := make(Pages, count)
	for i := range pages {
		start := min(i*budget, total)
		end := min((i+1)*budget, total)
		pages[i].WordStart = start
		pages[i].WordEnd = end

		if len(elements) == 0 {
			if end > start {
				pages[i].Content = "<p>" + html.EscapeString(strings.Join(words[start:end], " ")) + "</p>"
			}
			continue
		}

		from := min(i*perPage, len(elements))
		to := min((i+1)*perPage, len(elements))
		var sb strings.Builder
		for _, el := range elements[from:to] {
			sb.WriteString(markup.Render(el))
		}
		pages[i].Content = sb.String()
	}
	return pages
}

// Count returns the number of pages, never less than one for a sequence
// produced by Paginate.
func (p Pages) Count() int {
	return len(p)
}

// Locate returns the index of the page whose word range holds word. Offsets
// past the end map to the last page.
func (p Pages) Locate(word int) int {
	if len(p) == 0 || word <= 0 {
		return 0
	}
	for i, pg := range p {
		if word < pg.WordEnd {
			return i
		}
	}
	return len(p) - 1
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
