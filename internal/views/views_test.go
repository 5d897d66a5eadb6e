package views

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/lotas/tabclue/internal/types"
)

// fixture builds one staging-area tag with a single group holding the
// given tabs.
func fixture(tabs ...types.Tab) types.Collection {
	return types.Collection{
		{
			ID:       types.StagingAreaID,
			Name:     "Staging Area",
			IsSystem: true,
			Groups: []types.Group{
				{ID: "g1", Name: "Session 2026-08-28 09:00", Tabs: tabs},
			},
		},
	}
}

func tab(id, url, domain, savedAt string) types.Tab {
	return types.Tab{ID: id, Title: "T " + id, URL: url, Domain: domain, SavedAt: savedAt}
}

func TestMostVisitedCountsAndOrder(t *testing.T) {
	tags := fixture(
		tab("t1", "https://example.com/a", "example.com", "2026-08-01T10:00:00Z"),
		tab("t2", "https://other.com/", "other.com", "2026-08-02T10:00:00Z"),
		tab("t3", "https://example.com/a", "example.com", "2026-08-03T10:00:00Z"),
	)

	items := MostVisited(tags)
	if len(items) != 2 {
		t.Fatalf("expected one entry per distinct URL, got %d", len(items))
	}
	if items[0].URL != "https://example.com/a" || items[0].Count != 2 {
		t.Errorf("top entry = %+v, want example.com/a count 2", items[0])
	}
	if items[1].URL != "https://other.com/" || items[1].Count != 1 {
		t.Errorf("second entry = %+v, want other.com count 1", items[1])
	}
	// Latest occurrence wins title and lastSavedAt.
	if items[0].Title != "T t3" || items[0].LastSavedAt != "2026-08-03T10:00:00Z" {
		t.Errorf("latest occurrence must win: %+v", items[0])
	}
}

func TestMostVisitedSumEqualsTotalTabs(t *testing.T) {
	var tabs []types.Tab
	for i := 0; i < 20; i++ {
		u := fmt.Sprintf("https://site%d.com/", i%7)
		tabs = append(tabs, tab(fmt.Sprintf("t%d", i), u, fmt.Sprintf("site%d.com", i%7), "2026-08-01T10:00:00Z"))
	}
	tags := fixture(tabs...)

	items := MostVisited(tags)
	sum := 0
	for _, it := range items {
		sum += it.Count
	}
	if sum != len(tabs) {
		t.Errorf("sum(count) = %d, want %d", sum, len(tabs))
	}
	if len(items) != 7 {
		t.Errorf("expected 7 distinct URLs, got %d", len(items))
	}
}

func TestMostVisitedTieKeepsFirstSeenValue(t *testing.T) {
	// Identical SavedAt: strict greater-than comparison keeps the first.
	tags := fixture(
		types.Tab{ID: "a", Title: "First", URL: "https://x.com", Domain: "x.com", SavedAt: "2026-08-01T10:00:00Z"},
		types.Tab{ID: "b", Title: "Second", URL: "https://x.com", Domain: "x.com", SavedAt: "2026-08-01T10:00:00Z"},
	)
	items := MostVisited(tags)
	if items[0].Title != "First" {
		t.Errorf("tie must keep first-seen title, got %q", items[0].Title)
	}
}

func TestMostVisitedIdempotent(t *testing.T) {
	tags := fixture(
		tab("t1", "https://a.com", "a.com", "2026-08-01T10:00:00Z"),
		tab("t2", "https://b.com", "b.com", "2026-08-01T11:00:00Z"),
		tab("t3", "https://a.com", "a.com", "2026-08-01T12:00:00Z"),
	)
	first := MostVisited(tags)
	second := MostVisited(tags)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated derivation diverged")
	}
	// Input untouched.
	if len(tags[0].Groups[0].Tabs) != 3 {
		t.Error("derivation mutated input")
	}
}

func TestGroupedBySitePartition(t *testing.T) {
	tags := fixture(
		tab("t1", "https://example.com/a", "example.com", "2026-08-01T10:00:00Z"),
		tab("t2", "https://example.com/b", "example.com", "2026-08-01T10:00:00Z"),
		tab("t3", "https://other.com/", "other.com", "2026-08-01T10:00:00Z"),
	)

	groups := GroupedBySite(tags)
	if len(groups) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(groups))
	}
	if groups[0].Domain != "example.com" || groups[0].TotalCount != 2 {
		t.Errorf("first group = %+v", groups[0])
	}
	if groups[1].Domain != "other.com" || groups[1].TotalCount != 1 {
		t.Errorf("second group = %+v", groups[1])
	}

	// Partition law: every tab appears exactly once.
	sum := 0
	seen := make(map[string]bool)
	for _, g := range groups {
		sum += g.TotalCount
		if len(g.Tabs) != g.TotalCount {
			t.Errorf("domain %q: %d tabs vs totalCount %d", g.Domain, len(g.Tabs), g.TotalCount)
		}
		for _, tb := range g.Tabs {
			if seen[tb.ID] {
				t.Errorf("tab %q in two domains", tb.ID)
			}
			seen[tb.ID] = true
		}
	}
	if sum != 3 {
		t.Errorf("sum(totalCount) = %d, want 3", sum)
	}
}

func TestGroupedBySiteFaviconFromFirstTab(t *testing.T) {
	tags := fixture(
		types.Tab{ID: "a", URL: "https://x.com/1", Domain: "x.com", FavIconURL: "first.ico", SavedAt: "2026-08-01T10:00:00Z"},
		types.Tab{ID: "b", URL: "https://x.com/2", Domain: "x.com", FavIconURL: "second.ico", SavedAt: "2026-08-02T10:00:00Z"},
	)
	groups := GroupedBySite(tags)
	if groups[0].FavIconURL != "first.ico" {
		t.Errorf("favicon = %q, want first.ico", groups[0].FavIconURL)
	}
}

func TestDeleteThenMostVisited(t *testing.T) {
	tags := fixture(
		tab("t1", "https://example.com/a", "example.com", "2026-08-01T10:00:00Z"),
		tab("t2", "https://example.com/a", "example.com", "2026-08-02T10:00:00Z"),
	)
	// Simulate a delete of t2.
	tags[0].Groups[0].Tabs = tags[0].Groups[0].Tabs[:1]

	items := MostVisited(tags)
	if len(items) != 1 || items[0].Count != 1 {
		t.Errorf("count must not include deleted occurrence: %+v", items)
	}
}

func TestRankTiers(t *testing.T) {
	tests := []struct {
		n    int
		want []types.RankTier
	}{
		{0, nil},
		{5, []types.RankTier{
			{ID: "top-10", Label: "Top 10", From: 0, To: 5, Count: 5},
		}},
		{10, []types.RankTier{
			{ID: "top-10", Label: "Top 10", From: 0, To: 10, Count: 10},
		}},
		{12, []types.RankTier{
			{ID: "top-10", Label: "Top 10", From: 0, To: 10, Count: 10},
			{ID: "top-11-25", Label: "Top 11–25", From: 10, To: 12, Count: 2},
		}},
		{60, []types.RankTier{
			{ID: "top-10", Label: "Top 10", From: 0, To: 10, Count: 10},
			{ID: "top-11-25", Label: "Top 11–25", From: 10, To: 25, Count: 15},
			{ID: "top-26-50", Label: "Top 26–50", From: 25, To: 50, Count: 25},
			{ID: "rest", Label: "Rest", From: 50, To: 60, Count: 10},
		}},
	}
	for _, tt := range tests {
		got := RankTiers(tt.n)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("RankTiers(%d) = %+v, want %+v", tt.n, got, tt.want)
		}
	}
}

func TestSessionsAcrossTags(t *testing.T) {
	tags := types.Collection{
		{ID: types.StagingAreaID, Name: "Staging Area", Groups: []types.Group{
			{ID: "g2", Name: "Session B", Tabs: []types.Tab{{ID: "t1"}, {ID: "t2"}}},
			{ID: "g1", Name: "Session A", Tabs: []types.Tab{{ID: "t3"}}},
		}},
		{ID: "work", Name: "Work", Groups: []types.Group{
			{ID: "g3", Name: "Session C", Tabs: nil},
		}},
	}

	entries := Sessions(tags)
	if len(entries) != 3 {
		t.Fatalf("expected one entry per group, got %d", len(entries))
	}
	if entries[0].GroupID != "g2" || entries[0].TabCount != 2 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[2].TagID != "work" || entries[2].TabCount != 0 {
		t.Errorf("cross-tag entry = %+v", entries[2])
	}
}

func TestCounts(t *testing.T) {
	tags := fixture(
		tab("t1", "https://a.com", "a.com", "2026-08-01T10:00:00Z"),
		tab("t2", "https://b.com", "b.com", "2026-08-01T10:00:00Z"),
	)
	info := Counts(tags)
	want := types.CountInfo{TagCount: 1, GroupCount: 1, TabCount: 2}
	if info != want {
		t.Errorf("Counts = %+v, want %+v", info, want)
	}
}

func TestTabsForFilter(t *testing.T) {
	tags := types.Collection{
		{ID: types.StagingAreaID, Name: "Staging Area", Groups: []types.Group{
			{ID: "g1", Name: "A", Tabs: []types.Tab{{ID: "t1"}, {ID: "t2"}}},
		}},
		{ID: "work", Name: "Work", Groups: []types.Group{
			{ID: "g2", Name: "B", Tabs: []types.Tab{{ID: "t3"}}},
		}},
	}

	if got := TabsForFilter(tags, "", "g2"); len(got) != 1 || got[0].ID != "t3" {
		t.Errorf("group filter = %+v", got)
	}
	if got := TabsForFilter(tags, types.StagingAreaID, ""); len(got) != 2 {
		t.Errorf("tag filter = %+v", got)
	}
	if got := TabsForFilter(tags, "", ""); len(got) != 3 {
		t.Errorf("no filter = %+v", got)
	}
	// Dangling references resolve to an empty set, not an error.
	if got := TabsForFilter(tags, "", "gone"); got != nil {
		t.Errorf("missing group = %+v, want nil", got)
	}
	if got := TabsForFilter(tags, "gone", ""); got != nil {
		t.Errorf("missing tag = %+v, want nil", got)
	}
}

func TestFilterLabel(t *testing.T) {
	tags := types.Collection{
		{ID: "work", Name: "Work", Groups: []types.Group{{ID: "g1", Name: "Session A"}}},
	}
	if got := FilterLabel(tags, "", "g1"); got != "Session A" {
		t.Errorf("group label = %q", got)
	}
	if got := FilterLabel(tags, "work", ""); got != "Work" {
		t.Errorf("tag label = %q", got)
	}
	if got := FilterLabel(tags, "gone", "also-gone"); got != "Complete List" {
		t.Errorf("fallback label = %q", got)
	}
}

func TestSearchTags(t *testing.T) {
	tags := types.Collection{
		{ID: "work", Name: "Work", Groups: []types.Group{
			{ID: "g1", Name: "Session A", Tabs: []types.Tab{{ID: "t1", Title: "Go blog", URL: "https://go.dev/blog"}}},
			{ID: "g2", Name: "Session B", Tabs: []types.Tab{{ID: "t2", Title: "News", URL: "https://news.example.com"}}},
		}},
		{ID: "misc", Name: "Misc", Groups: nil},
	}

	got := SearchTags(tags, "go blog")
	if len(got) != 1 || len(got[0].Groups) != 1 || got[0].Groups[0].ID != "g1" {
		t.Errorf("tab-title search = %+v", got)
	}

	got = SearchTags(tags, "misc")
	if len(got) != 1 || got[0].ID != "misc" {
		t.Errorf("tag-name search = %+v", got)
	}

	got = SearchTags(tags, "  ")
	if len(got) != 2 {
		t.Errorf("blank query must return everything, got %+v", got)
	}
}
