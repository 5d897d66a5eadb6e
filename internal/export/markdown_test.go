package export

import (
	"strings"
	"testing"
	"time"

	"github.com/lotas/tabclue/internal/types"
)

func TestMarkdown(t *testing.T) {
	now := time.Now()
	tags := types.Collection{
		{
			ID:   types.StagingAreaID,
			Name: "Staging Area",
			Groups: []types.Group{
				{
					ID:   "g1",
					Name: "Session 2026-08-28 09:00",
					Tabs: []types.Tab{
						{Title: "Go docs", URL: "https://go.dev/doc", SavedAt: now.Add(-3 * 24 * time.Hour).Format(time.RFC3339)},
						{Title: "", URL: "https://example.com", SavedAt: now.Add(-5 * time.Hour).Format(time.RFC3339)},
					},
				},
			},
		},
		{
			ID:   "work",
			Name: "Work",
			Groups: []types.Group{
				{
					ID:   "g2",
					Name: "Session 2026-08-27 18:30",
					Tabs: []types.Tab{
						{Title: "Tracker", URL: "https://tracker.example.com", SavedAt: now.Add(-20 * time.Minute).Format(time.RFC3339)},
					},
				},
			},
		},
	}

	result := Markdown(tags)

	if !strings.Contains(result, "# Saved Tabs") {
		t.Errorf("missing header, got:\n%s", result)
	}
	if !strings.Contains(result, "## Staging Area") {
		t.Errorf("missing tag heading, got:\n%s", result)
	}
	if !strings.Contains(result, "### Session 2026-08-28 09:00 (2 tabs)") {
		t.Errorf("missing session heading with count, got:\n%s", result)
	}
	if !strings.Contains(result, "### Session 2026-08-27 18:30 (1 tab)") {
		t.Errorf("singular noun expected for single tab, got:\n%s", result)
	}
	// Empty titles fall back to the URL.
	if !strings.Contains(result, "[https://example.com](https://example.com)") {
		t.Errorf("missing URL-titled entry, got:\n%s", result)
	}
	if !strings.Contains(result, "3d ago") {
		t.Errorf("missing relative time, got:\n%s", result)
	}
}

func TestRelativeTimeUnparseable(t *testing.T) {
	if got := relativeTime("not-a-time"); got != "not-a-time" {
		t.Errorf("relativeTime fallback = %q", got)
	}
}
