package selection

import "testing"

func TestTogglePairRestoresOriginal(t *testing.T) {
	s := New()
	s.Toggle("a")

	s.Toggle("b")
	s.Toggle("b")

	if !s.Has("a") || s.Has("b") || s.Len() != 1 {
		t.Errorf("toggle pair must restore original set; len=%d", s.Len())
	}
}

func TestSelectAllReplaces(t *testing.T) {
	s := New()
	s.Toggle("old")

	s.SelectAll([]string{"a", "b"})

	if s.Has("old") {
		t.Error("SelectAll must replace, not merge")
	}
	if !s.Has("a") || !s.Has("b") || s.Len() != 2 {
		t.Errorf("unexpected selection: len=%d", s.Len())
	}
}

func TestDeselectAll(t *testing.T) {
	s := New()
	s.SelectAll([]string{"a", "b", "c"})
	s.DeselectAll()
	if s.Len() != 0 {
		t.Errorf("expected empty selection, len=%d", s.Len())
	}
}

func TestIsAllSelected(t *testing.T) {
	s := New()
	s.SelectAll([]string{"a", "b"})

	if !s.IsAllSelected([]string{"a", "b"}) {
		t.Error("expected all selected")
	}
	if s.IsAllSelected([]string{"a", "b", "c"}) {
		t.Error("c is not selected")
	}
	if s.IsAllSelected(nil) || s.IsAllSelected([]string{}) {
		t.Error("empty ids must never be all-selected")
	}
}

func TestStaleIDHasNoEffect(t *testing.T) {
	s := New()
	s.Toggle("deleted-tab")
	// The underlying tab is gone; the ID just sits in the set.
	if !s.Has("deleted-tab") {
		t.Error("selection holds IDs, not object references")
	}
	ids := s.IDs()
	if !ids["deleted-tab"] || len(ids) != 1 {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestResetOnViewSwitch(t *testing.T) {
	s := New()
	s.SelectAll([]string{"a", "b"})
	s.Reset()
	if s.Len() != 0 {
		t.Error("selection must not carry across a view switch")
	}
}
