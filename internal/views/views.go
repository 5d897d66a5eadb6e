// Package views computes the read-only projections of the collection:
// most-visited ranking, per-domain grouping, rank tiers, and the sidebar
// session listing. Every function is pure: it walks the full collection,
// never mutates it, and returns the same output for the same input.
// Aggregations keep a map for lookup plus an order slice so tie-breaking
// follows first-seen insertion order deterministically.
package views

import (
	"sort"
	"strings"

	"github.com/lotas/tabclue/internal/types"
)

// MostVisited groups all tabs by exact URL string. Count is the number of
// saved occurrences; title and favicon come from the occurrence with the
// latest SavedAt (strict greater-than, so ties keep the first-seen value).
// The result is sorted by count descending; equal counts keep first-seen
// URL order.
func MostVisited(tags types.Collection) []types.MostVisitedItem {
	byURL := make(map[string]*types.MostVisitedItem)
	var order []string

	for _, tag := range tags {
		for _, group := range tag.Groups {
			for _, tab := range group.Tabs {
				if item, ok := byURL[tab.URL]; ok {
					item.Count++
					if tab.SavedAt > item.LastSavedAt {
						item.LastSavedAt = tab.SavedAt
						item.Title = tab.Title
						item.FavIconURL = tab.FavIconURL
					}
					continue
				}
				byURL[tab.URL] = &types.MostVisitedItem{
					URL:         tab.URL,
					Title:       tab.Title,
					Domain:      tab.Domain,
					FavIconURL:  tab.FavIconURL,
					Count:       1,
					LastSavedAt: tab.SavedAt,
				}
				order = append(order, tab.URL)
			}
		}
	}

	items := make([]types.MostVisitedItem, 0, len(order))
	for _, u := range order {
		items = append(items, *byURL[u])
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Count > items[j].Count
	})
	return items
}

// GroupedBySite partitions all tabs by domain. The favicon is taken from
// the first tab encountered for the domain. Domains are sorted by tab
// count descending; equal counts keep first-seen domain order.
func GroupedBySite(tags types.Collection) []types.DomainGroup {
	byDomain := make(map[string]*types.DomainGroup)
	var order []string

	for _, tag := range tags {
		for _, group := range tag.Groups {
			for _, tab := range group.Tabs {
				if dg, ok := byDomain[tab.Domain]; ok {
					dg.Tabs = append(dg.Tabs, tab)
					dg.TotalCount++
					continue
				}
				byDomain[tab.Domain] = &types.DomainGroup{
					Domain:     tab.Domain,
					FavIconURL: tab.FavIconURL,
					Tabs:       []types.Tab{tab},
					TotalCount: 1,
				}
				order = append(order, tab.Domain)
			}
		}
	}

	groups := make([]types.DomainGroup, 0, len(order))
	for _, d := range order {
		groups = append(groups, *byDomain[d])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalCount > groups[j].TotalCount
	})
	return groups
}

// tierBounds are the fixed rank bands over the most-visited list.
var tierBounds = []struct {
	id    string
	label string
	from  int
	to    int
}{
	{"top-10", "Top 10", 0, 10},
	{"top-11-25", "Top 11–25", 10, 25},
	{"top-26-50", "Top 26–50", 25, 50},
	{"rest", "Rest", 50, -1}, // open-ended
}

// RankTiers buckets a most-visited ranking of length n into the fixed
// bands [0,10), [10,25), [25,50), [50,n). Empty bands are omitted.
func RankTiers(n int) []types.RankTier {
	var tiers []types.RankTier
	for _, b := range tierBounds {
		if n <= b.from {
			break
		}
		to := b.to
		if to < 0 || to > n {
			to = n
		}
		tiers = append(tiers, types.RankTier{
			ID:    b.id,
			Label: b.label,
			From:  b.from,
			To:    to,
			Count: to - b.from,
		})
	}
	return tiers
}

// Sessions lists one entry per group across all tags, in collection order
// (tags in order, each tag's groups newest-first).
func Sessions(tags types.Collection) []types.SessionEntry {
	var entries []types.SessionEntry
	for _, tag := range tags {
		for _, group := range tag.Groups {
			entries = append(entries, types.SessionEntry{
				TagID:    tag.ID,
				GroupID:  group.ID,
				Label:    group.Name,
				TabCount: len(group.Tabs),
			})
		}
	}
	return entries
}

// Counts returns the aggregate totals for the header.
func Counts(tags types.Collection) types.CountInfo {
	info := types.CountInfo{TagCount: len(tags)}
	for _, tag := range tags {
		info.GroupCount += len(tag.Groups)
		for _, group := range tag.Groups {
			info.TabCount += len(group.Tabs)
		}
	}
	return info
}

// TabsForFilter returns the tabs visible under the active sidebar filter.
// A group ID scopes to that single group; otherwise a tag ID scopes to all
// of the tag's groups; with neither, every tab in the collection is
// returned. IDs that no longer resolve (deleted concurrently) yield an
// empty result rather than an error.
func TabsForFilter(tags types.Collection, tagID, groupID string) []types.Tab {
	if groupID != "" {
		for _, tag := range tags {
			for _, group := range tag.Groups {
				if group.ID == groupID {
					return append([]types.Tab(nil), group.Tabs...)
				}
			}
		}
		return nil
	}
	if tagID != "" {
		for _, tag := range tags {
			if tag.ID != tagID {
				continue
			}
			var out []types.Tab
			for _, group := range tag.Groups {
				out = append(out, group.Tabs...)
			}
			return out
		}
		return nil
	}
	var out []types.Tab
	for _, tag := range tags {
		for _, group := range tag.Groups {
			out = append(out, group.Tabs...)
		}
	}
	return out
}

// FilterLabel names the active filter for the header: the group name, the
// tag name, or "Complete List". Unresolvable IDs fall back to the default
// label.
func FilterLabel(tags types.Collection, tagID, groupID string) string {
	if groupID != "" {
		for _, tag := range tags {
			for _, group := range tag.Groups {
				if group.ID == groupID {
					return group.Name
				}
			}
		}
	}
	if tagID != "" {
		for _, tag := range tags {
			if tag.ID == tagID {
				return tag.Name
			}
		}
	}
	return "Complete List"
}

// SearchTags filters the sidebar tree by a case-insensitive query over tag
// names, group names, and tab titles/URLs. Tags keep only matching groups
// unless the tag name itself matches.
func SearchTags(tags types.Collection, query string) types.Collection {
	q := normalize(query)
	if q == "" {
		return tags
	}
	var out types.Collection
	for _, tag := range tags {
		tagMatch := contains(tag.Name, q)
		var groups []types.Group
		for _, group := range tag.Groups {
			if contains(group.Name, q) || groupHasMatch(group, q) {
				groups = append(groups, group)
			}
		}
		if tagMatch || len(groups) > 0 {
			filtered := tag
			if !tagMatch {
				filtered.Groups = groups
			}
			out = append(out, filtered)
		}
	}
	return out
}

func groupHasMatch(group types.Group, q string) bool {
	for _, tab := range group.Tabs {
		if contains(tab.Title, q) || contains(tab.URL, q) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(s, q string) bool {
	return strings.Contains(strings.ToLower(s), q)
}
