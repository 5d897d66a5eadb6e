// Package selection tracks which tab IDs are selected in the active view.
// The set holds IDs only, never tab objects, so a selected tab that is
// deleted underneath simply becomes a stale ID with no effect. Selection
// never carries across a view or filter switch; callers Reset on every
// navigation.
package selection

// Set is the selection state machine for one view.
type Set struct {
	ids map[string]bool
}

// New returns an empty selection.
func New() *Set {
	return &Set{ids: make(map[string]bool)}
}

// Toggle flips membership of id.
func (s *Set) Toggle(id string) {
	if s.ids[id] {
		delete(s.ids, id)
		return
	}
	s.ids[id] = true
}

// SelectAll replaces the selection with exactly ids.
func (s *Set) SelectAll(ids []string) {
	s.ids = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.ids[id] = true
	}
}

// DeselectAll empties the selection.
func (s *Set) DeselectAll() {
	s.ids = make(map[string]bool)
}

// Reset clears the selection on a view or filter switch.
func (s *Set) Reset() {
	s.DeselectAll()
}

// Has reports whether id is selected.
func (s *Set) Has(id string) bool {
	return s.ids[id]
}

// Len returns the number of selected IDs.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the selected IDs as a set for bulk operations.
func (s *Set) IDs() map[string]bool {
	out := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		out[id] = true
	}
	return out
}

// IsAllSelected reports whether ids is non-empty and every member is
// currently selected. An empty ids slice is never "all selected".
func (s *Set) IsAllSelected(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s.ids[id] {
			return false
		}
	}
	return true
}
