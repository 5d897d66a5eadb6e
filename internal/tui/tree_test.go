package tui

import (
	"testing"

	"github.com/lotas/tabclue/internal/types"
)

func sidebarTags() types.Collection {
	return types.Collection{
		{
			ID:   types.StagingAreaID,
			Name: "Staging Area",
			Groups: []types.Group{
				{ID: "g1", Name: "Session 2026-08-01 09:00", Tabs: []types.Tab{{ID: "t1"}, {ID: "t2"}}},
			},
		},
		{
			ID:          "work",
			Name:        "Work",
			IsCollapsed: true,
			Groups: []types.Group{
				{ID: "g2", Name: "Session 2026-08-02 10:00", Tabs: []types.Tab{{ID: "t3"}}},
			},
		},
	}
}

func TestSetTagsOnFreshTree(t *testing.T) {
	var tree TreeModel
	tree.SetTags(sidebarTags())

	if !tree.Expanded[types.StagingAreaID] {
		t.Error("expanded tag should start open")
	}
	if tree.Expanded["work"] {
		t.Error("collapsed tag should start closed")
	}

	nodes := tree.VisibleNodes()
	if len(nodes) != 3 {
		t.Fatalf("nodes = %d, want 3 (2 tags + 1 open session)", len(nodes))
	}
}

func TestSetTagsKeepsExpandedState(t *testing.T) {
	tree := NewTreeModel(sidebarTags())
	tree.Expanded["work"] = true

	tree.SetTags(sidebarTags())
	if !tree.Expanded["work"] {
		t.Error("manual expand lost on refresh")
	}
}

func TestSetTagsClampsCursor(t *testing.T) {
	tree := NewTreeModel(sidebarTags())
	tree.Cursor = 2

	tree.SetTags(types.Collection{{ID: types.StagingAreaID, Name: "Staging Area", IsCollapsed: true}})
	if tree.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", tree.Cursor)
	}
}
