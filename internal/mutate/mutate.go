// Package mutate implements the write side of the tab collection: saving
// snapshots of open tabs, deleting and editing saved tabs, collapsing tags,
// and import/export. Every operation is a full read-modify-write of the
// persisted document; the storage layer applies each write as one atomic
// replace, so concurrent writers race at document granularity and the
// later write wins.
package mutate

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lotas/tabclue/internal/applog"
	"github.com/lotas/tabclue/internal/collection"
	"github.com/lotas/tabclue/internal/export"
	"github.com/lotas/tabclue/internal/ident"
	"github.com/lotas/tabclue/internal/types"
)

// privilegedPrefixes are URL schemes of the browser's own UI pages. Tabs
// with these URLs are never persisted.
var privilegedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"moz-extension://",
	"about:",
}

// IsPrivilegedURL reports whether url points at a browser-internal page.
func IsPrivilegedURL(rawURL string) bool {
	for _, p := range privilegedPrefixes {
		if strings.HasPrefix(rawURL, p) {
			return true
		}
	}
	return rawURL == ""
}

// ExtractDomain derives the domain shown for a tab: the hostname of the
// parsed URL, or the "unknown" sentinel when the URL does not parse.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return types.UnknownDomain
	}
	return u.Hostname()
}

// SessionName returns the generated group name for a save at the given
// local time, e.g. "Session 2026-08-28 14:05".
func SessionName(t time.Time) string {
	return "Session " + t.Format("2006-01-02 15:04")
}

// Engine binds the mutation operations to the persisted stores.
type Engine struct {
	Tags     *collection.CollectionStore
	Settings *collection.SettingsStore
}

func NewEngine(tags *collection.CollectionStore, settings *collection.SettingsStore) *Engine {
	return &Engine{Tags: tags, Settings: settings}
}

// SaveSnapshot archives the given open tabs as one new group prepended to
// the target tag (the staging area when targetTagID is empty or missing).
// Browser-internal pages are filtered out first; if nothing remains, no
// group is created and the result reports zero saved. Handles in the
// result are the browser tab handles actually archived, for the caller to
// optionally close.
func (e *Engine) SaveSnapshot(open []types.OpenTab, targetTagID string) (types.SaveResult, error) {
	now := time.Now()

	var eligible []types.OpenTab
	for _, t := range open {
		if IsPrivilegedURL(t.URL) {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return types.SaveResult{SavedCount: 0}, nil
	}

	savedAt := now.UTC().Format(time.RFC3339)
	tabs := make([]types.Tab, 0, len(eligible))
	handles := make([]int, 0, len(eligible))
	for _, t := range eligible {
		title := t.Title
		if title == "" {
			title = "Untitled"
		}
		tabs = append(tabs, types.Tab{
			ID:         ident.New(),
			Title:      title,
			URL:        t.URL,
			FavIconURL: t.FavIconURL,
			Domain:     ExtractDomain(t.URL),
			SavedAt:    savedAt,
		})
		if t.Handle != 0 {
			handles = append(handles, t.Handle)
		}
	}

	group := types.Group{
		ID:        ident.New(),
		Name:      SessionName(now),
		CreatedAt: savedAt,
		Tabs:      tabs,
	}

	tags, err := e.Tags.Get()
	if err != nil {
		return types.SaveResult{}, fmt.Errorf("read collection: %w", err)
	}
	tags = PrependGroup(tags, group, targetTagID)
	if err := e.Tags.Set(tags); err != nil {
		return types.SaveResult{}, fmt.Errorf("write collection: %w", err)
	}

	applog.Info("save.snapshot", "group", group.ID, "tabs", len(tabs))
	return types.SaveResult{
		Success:    true,
		SavedCount: len(tabs),
		GroupID:    group.ID,
		Handles:    handles,
	}, nil
}

// PrependGroup adds group to the front of the target tag's group list,
// falling back to the staging area when the target is missing. If even the
// staging area is gone the fallback tag is recreated first, keeping the
// system-tag invariant.
func PrependGroup(tags types.Collection, group types.Group, targetTagID string) types.Collection {
	if targetTagID == "" {
		targetTagID = types.StagingAreaID
	}
	idx := findTag(tags, targetTagID)
	if idx < 0 {
		idx = findTag(tags, types.StagingAreaID)
	}
	if idx < 0 {
		tags = append(collection.FallbackCollection(), tags...)
		idx = 0
	}
	groups := make([]types.Group, 0, len(tags[idx].Groups)+1)
	groups = append(groups, group)
	groups = append(groups, tags[idx].Groups...)
	tags[idx].Groups = groups
	return tags
}

func findTag(tags types.Collection, id string) int {
	for i := range tags {
		if tags[i].ID == id {
			return i
		}
	}
	return -1
}

// DeleteTab removes the tab with the given ID wherever it occurs. Removing
// the last tab of a group leaves the group in place; groups are not
// auto-pruned.
func (e *Engine) DeleteTab(id string) error {
	return e.DeleteSelected(map[string]bool{id: true})
}

// DeleteSelected removes every tab whose ID is in ids, in one pass.
// IDs with no matching tab have no effect.
func (e *Engine) DeleteSelected(ids map[string]bool) error {
	tags, err := e.Tags.Get()
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
	}
	tags, removed := RemoveTabs(tags, ids)
	if err := e.Tags.Set(tags); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	applog.Info("delete.tabs", "requested", len(ids), "removed", removed)
	return nil
}

// RemoveTabs filters out all tabs whose ID is in ids and returns the new
// collection plus the number of tabs removed.
func RemoveTabs(tags types.Collection, ids map[string]bool) (types.Collection, int) {
	removed := 0
	for ti := range tags {
		for gi := range tags[ti].Groups {
			src := tags[ti].Groups[gi].Tabs
			kept := src[:0:0]
			for _, tab := range src {
				if ids[tab.ID] {
					removed++
					continue
				}
				kept = append(kept, tab)
			}
			tags[ti].Groups[gi].Tabs = kept
		}
	}
	return tags, removed
}

// EditTab replaces the title and URL of the tab with the given ID and
// stamps UpdatedAt. Domain is intentionally left at its save-time value:
// an edited URL shows a stale domain until the tab is re-saved. Editing a
// missing ID is a no-op.
func (e *Engine) EditTab(id, newTitle, newURL string) error {
	tags, err := e.Tags.Get()
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for ti := range tags {
		for gi := range tags[ti].Groups {
			for xi := range tags[ti].Groups[gi].Tabs {
				tab := &tags[ti].Groups[gi].Tabs[xi]
				if tab.ID != id {
					continue
				}
				tab.Title = newTitle
				tab.URL = newURL
				tab.UpdatedAt = now
			}
		}
	}
	if err := e.Tags.Set(tags); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

// ToggleTagCollapse flips IsCollapsed on the matching tag. Groups and tabs
// are untouched; a missing ID is a no-op.
func (e *Engine) ToggleTagCollapse(id string) error {
	tags, err := e.Tags.Get()
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
	}
	for i := range tags {
		if tags[i].ID == id {
			tags[i].IsCollapsed = !tags[i].IsCollapsed
		}
	}
	if err := e.Tags.Set(tags); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

// Export produces the versioned snapshot of the current collection and
// settings.
func (e *Engine) Export() (types.ExportData, error) {
	tags, err := e.Tags.Get()
	if err != nil {
		return types.ExportData{}, fmt.Errorf("read collection: %w", err)
	}
	settings, err := e.Settings.Get()
	if err != nil {
		return types.ExportData{}, fmt.Errorf("read settings: %w", err)
	}
	return types.ExportData{
		Version:    export.FormatVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Tags:       tags,
		Settings:   &settings,
	}, nil
}

// Import parses an exported payload and fully replaces the collection
// (and settings, when present). A malformed payload is rejected before
// anything is written, so a failed import leaves prior state untouched.
// Import is destructive, not a merge.
func (e *Engine) Import(payload []byte) error {
	data, err := export.ParsePayload(payload)
	if err != nil {
		return err
	}
	if err := e.Tags.Set(data.Tags); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	if data.Settings != nil {
		if err := e.Settings.Set(*data.Settings); err != nil {
			return fmt.Errorf("write settings: %w", err)
		}
	}
	applog.Info("import.replace", "tags", len(data.Tags))
	return nil
}
