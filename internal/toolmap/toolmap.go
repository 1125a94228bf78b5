// Package toolmap maps the many spellings of tool names found in news text
// to the canonical names used by the catalogue.
package toolmap

import "strings"

// Mapper normalizes tool names. The zero value is not usable; use New.
type Mapper struct {
	known   []string
	isKnown map[string]bool
}

// New returns a Mapper over the built-in catalogue extended with extra names,
// typically the tool names currently stored.
func New(extra ...string) *Mapper {
	m := &Mapper{isKnown: make(map[string]bool, len(knownTools)+len(extra))}
	for _, name := range append(append([]string{}, knownTools...), extra...) {
		if name == "" || m.isKnown[name] {
			continue
		}
		m.isKnown[name] = true
		m.known = append(m.known, name)
	}

	return m
}

// Normalize returns the canonical name for name. Unknown names are
// returned unchanged since they may be new tools.
func (m *Mapper) Normalize(name string) string {
	if name == "" || m.isKnown[name] {
		return name
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[lower]; ok {
		return canonical
	}
	if match, ok := m.fuzzy(lower); ok {
		return match
	}

	return name
}

func (m *Mapper) fuzzy(lower string) (string, bool) {
	if lower == "" {
		return "", false
	}

	inputWords := strings.Fields(lower)
	var significant []string
	for _, w := range inputWords {
		if len(w) > 3 {
			significant = append(significant, w)
		}
	}

	for _, known := range m.known {
		lk := strings.ToLower(known)
		if strings.Contains(lk, lower) || strings.Contains(lower, lk) {
			return known, true
		}
		if len(significant) == 0 {
			continue
		}

		knownWords := strings.Fields(lk)
		matching := 0
		for _, w := range significant {
			for _, kw := range knownWords {
				if strings.Contains(kw, w) || strings.Contains(w, kw) {
					matching++
					break
				}
			}
		}
		if float64(matching) >= float64(len(significant))/2 {
			return known, true
		}
	}

	return "", false
}

// InferCategory guesses the category of an unknown tool from its name and
// the context it was mentioned in.
func InferCategory(name, context string) string {
	name = strings.ToLower(name)
	context = strings.ToLower(context)
	for _, row := range categoryKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(name, kw) || strings.Contains(context, kw) {
				return row.category
			}
		}
	}

	return "other"
}
