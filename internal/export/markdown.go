package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotas/tabclue/internal/types"
)

// Markdown formats the collection as a markdown document, one section per
// tag with its sessions nested underneath.
func Markdown(tags types.Collection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Saved Tabs\n")
	fmt.Fprintf(&b, "> Exported %s\n", time.Now().Format("2006-01-02 15:04"))

	for _, tag := range tags {
		fmt.Fprintf(&b, "\n## %s\n", tag.Name)

		for _, g := range tag.Groups {
			n := len(g.Tabs)
			noun := "tabs"
			if n == 1 {
				noun = "tab"
			}
			fmt.Fprintf(&b, "\n### %s (%d %s)\n\n", g.Name, n, noun)

			for _, tab := range g.Tabs {
				title := tab.Title
				if title == "" {
					title = tab.URL
				}
				fmt.Fprintf(&b, "- [%s](%s) — %s\n", title, tab.URL, relativeTime(tab.SavedAt))
			}
		}
	}

	return b.String()
}

func relativeTime(savedAt string) string {
	t, err := time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return savedAt
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
