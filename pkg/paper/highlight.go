package paper

import (
	"slices"
	"strings"
)

// HighlightSet is the set of ids matched by the current search.
// The zero value is an empty set and means "no filter active".
type HighlightSet struct {
	ids map[ID]struct{}
}

// NewHighlightSet builds a set from ids. Duplicates collapse.
func NewHighlightSet(ids ...ID) HighlightSet {
	if len(ids) == 0 {
		return HighlightSet{}
	}
	m := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return HighlightSet{ids: m}
}

// Has reports whether id is highlighted.
func (h HighlightSet) Has(id ID) bool {
	_, ok := h.ids[id]
	return ok
}

// Len returns the number of highlighted ids.
func (h HighlightSet) Len() int { return len(h.ids) }

// Active reports whether a filter is in effect.
func (h HighlightSet) Active() bool { return len(h.ids) > 0 }

// IDs returns the members in sorted order.
func (h HighlightSet) IDs() []ID {
	out := make([]ID, 0, len(h.ids))
	for id := range h.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same ids.
func (h HighlightSet) Equal(o HighlightSet) bool {
	if len(h.ids) != len(o.ids) {
		return false
	}
	for id := range h.ids {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Search returns the ids of records whose title or authors contain term,
// case-insensitively. A blank term yields the empty set.
func Search(records []Record, term string) HighlightSet {
	term = strings.ToLower(term)
	if strings.TrimSpace(term) == "" {
		return HighlightSet{}
	}
	var ids []ID
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), term) ||
			strings.Contains(strings.ToLower(r.Authors), term) {
			ids = append(ids, r.ID)
		}
	}
	return NewHighlightSet(ids...)
}
