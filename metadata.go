package epub

import (
	"sort"
	"strconv"
	"strings"
)

// Placeholders used when the package document omits a field.
const (
	DefaultTitle    = "Unknown Title"
	DefaultCreator  = "Unknown Author"
	DefaultLanguage = "en"
)

// extractMetadata converts the raw OPF metadata into Metadata. Missing
// fields fall back to placeholders; it never fails.
func extractMetadata(pkg *opfPackage) Metadata {
	om := &pkg.Metadata
	refines := buildRefinesMap(om.Metas)

	md := Metadata{
		Title:       DefaultTitle,
		Creator:     DefaultCreator,
		Language:    firstValue(om.Languages, DefaultLanguage),
		Identifier:  firstValue(om.Identifiers, ""),
		Description: firstValue(om.Descriptions, ""),
		Publisher:   firstValue(om.Publishers, ""),
		Date:        firstValue(om.Dates, ""),
		Rights:      firstValue(om.Rights, ""),
		Version:     pkg.Version,
	}
	if titles := orderedTitles(om.Titles, refines); len(titles) > 0 {
		md.Title = titles[0]
	}
	md.Creator = firstValue(om.Creators, DefaultCreator)

	for _, s := range om.Subjects {
		if v := strings.TrimSpace(s.Value); v != "" {
			md.Subjects = append(md.Subjects, v)
		}
	}
	return md
}

// firstValue returns the first non-blank trimmed value, or def.
func firstValue(elems []opfDCElement, def string) string {
	for _, e := range elems {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return def
}

// buildRefinesMap builds a map from element ID (without "#") to the list of
// <meta refines="#id" ...> elements that refine it.
func buildRefinesMap(metas []opfMeta) map[string][]opfMeta {
	m := make(map[string][]opfMeta)
	for _, meta := range metas {
		if id, ok := strings.CutPrefix(meta.Refines, "#"); ok && id != "" {
			m[id] = append(m[id], meta)
		}
	}
	return m
}

// findRefine looks up a single refining property value for the given element ID.
func findRefine(refines map[string][]opfMeta, id, property string) (string, bool) {
	for _, m := range refines[id] {
		if m.Property == property {
			if v := strings.TrimSpace(m.Value); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// orderedTitles returns the non-blank dc:title values. When any title has
// an ePub 3 display-seq refinement, titles are ordered by it and titles
// without one go last in document order.
func orderedTitles(titles []opfDCElement, refines map[string][]opfMeta) []string {
	type entry struct {
		value string
		seq   int
	}

	entries := make([]entry, 0, len(titles))
	hasSeq := false
	for _, t := range titles {
		v := strings.TrimSpace(t.Value)
		if v == "" {
			continue
		}
		e := entry{value: v}
		if t.ID != "" {
			if s, ok := findRefine(refines, t.ID, "display-seq"); ok {
				if n, err := strconv.Atoi(s); err == nil && n > 0 {
					e.seq = n
					hasSeq = true
				}
			}
		}
		entries = append(entries, e)
	}

	if hasSeq {
		sort.SliceStable(entries, func(i, j int) bool {
			si, sj := entries[i].seq, entries[j].seq
			switch {
			case si == 0:
				return false
			case sj == 0:
				return true
			default:
				return si < sj
			}
		})
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}
