package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabclue/internal/types"
	"github.com/lotas/tabclue/internal/views"
)

// ListRow is one renderable row in the tab list pane. Header rows group
// the rows beneath them (domain or rank-tier headers) and carry no tab.
type ListRow struct {
	TabID    string // empty for header rows
	URL      string
	Title    string
	Header   string // non-empty for header rows
	Note     string // right-hand annotation (visit count, domain)
	Selected bool
}

// ListModel renders the right pane for the active dashboard view.
type ListModel struct {
	Rows    []ListRow
	Title   string
	Cursor  int
	Offset  int
	Width   int
	Height  int
	Limited int // tabs hidden by the display limit
}

// SetTabs fills the list with the complete-list view: tabs for the
// current sidebar filter, newest session first, capped at limit.
func (m *ListModel) SetTabs(tabs []types.Tab, limit int) {
	rows := make([]ListRow, 0, len(tabs))
	m.Limited = 0
	for _, t := range tabs {
		if limit > 0 && len(rows) >= limit {
			m.Limited = len(tabs) - limit
			break
		}
		rows = append(rows, ListRow{
			TabID: t.ID,
			URL:   t.URL,
			Title: t.Title,
			Note:  t.Domain,
		})
	}
	m.Rows = rows
	m.clampCursor()
}

// SetMostVisited fills the list with ranked URL entries under their
// rank-tier headers.
func (m *ListModel) SetMostVisited(items []types.MostVisitedItem, limit int) {
	m.Limited = 0
	if limit > 0 && len(items) > limit {
		m.Limited = len(items) - limit
		items = items[:limit]
	}

	tiers := views.RankTiers(len(items))
	var rows []ListRow
	for _, tier := range tiers {
		rows = append(rows, ListRow{Header: fmt.Sprintf("%s (%d)", tier.Label, tier.Count)})
		for i := tier.From; i < tier.From+tier.Count && i < len(items); i++ {
			item := items[i]
			rows = append(rows, ListRow{
				TabID: item.URL, // most-visited rows key on URL
				URL:   item.URL,
				Title: item.Title,
				Note:  fmt.Sprintf("×%d", item.Count),
			})
		}
	}
	m.Rows = rows
	m.clampCursor()
}

// SetBySite fills the list with tabs grouped under domain headers.
func (m *ListModel) SetBySite(groups []types.DomainGroup, limit int) {
	var rows []ListRow
	m.Limited = 0
	shown := 0
	for _, g := range groups {
		rows = append(rows, ListRow{Header: fmt.Sprintf("%s (%d)", g.Domain, len(g.Tabs))})
		for _, t := range g.Tabs {
			if limit > 0 && shown >= limit {
				m.Limited++
				continue
			}
			rows = append(rows, ListRow{
				TabID: t.ID,
				URL:   t.URL,
				Title: t.Title,
			})
			shown++
		}
	}
	m.Rows = rows
	m.clampCursor()
}

func (m *ListModel) clampCursor() {
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

// ResetCursor moves selection back to the top, skipping a leading header.
func (m *ListModel) ResetCursor() {
	m.Cursor = 0
	m.Offset = 0
	if len(m.Rows) > 0 && m.Rows[0].Header != "" && len(m.Rows) > 1 {
		m.Cursor = 1
	}
}

// SelectedRow returns the row under the cursor, or nil.
func (m ListModel) SelectedRow() *ListRow {
	if m.Cursor >= 0 && m.Cursor < len(m.Rows) {
		return &m.Rows[m.Cursor]
	}
	return nil
}

// TabIDs returns the IDs of all tab rows in display order.
func (m ListModel) TabIDs() []string {
	var ids []string
	for _, r := range m.Rows {
		if r.TabID != "" {
			ids = append(ids, r.TabID)
		}
	}
	return ids
}

// URLs returns the URLs of all tab rows in display order.
func (m ListModel) URLs() []string {
	var urls []string
	for _, r := range m.Rows {
		if r.TabID != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

func (m *ListModel) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	// Skip header rows when possible.
	if m.Cursor > 0 && m.Rows[m.Cursor].Header != "" {
		m.Cursor--
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
}

func (m *ListModel) MoveDown() {
	if m.Cursor < len(m.Rows)-1 {
		m.Cursor++
	}
	if m.Cursor < len(m.Rows)-1 && m.Rows[m.Cursor].Header != "" {
		m.Cursor++
	}
	visibleRows := m.Height - 2
	if visibleRows < 1 {
		visibleRows = 1
	}
	if m.Cursor >= m.Offset+visibleRows {
		m.Offset = m.Cursor - visibleRows + 1
	}
}

// View renders the list. selected marks multi-selected tab IDs and
// bookmarked marks URLs known to be bookmarked in the browser.
func (m ListModel) View(selected map[string]bool, bookmarked map[string]bool) string {
	if len(m.Rows) == 0 {
		return "No tabs here yet."
	}

	visibleRows := m.Height
	if visibleRows < 1 {
		visibleRows = 20
	}

	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	headerStyle := lipgloss.NewStyle().Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bookmarkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var b strings.Builder
	if m.Title != "" {
		b.WriteString(headerStyle.Render(m.Title) + "\n")
	}

	end := m.Offset + visibleRows
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]
		var line string

		if row.Header != "" {
			line = headerStyle.Render("▸ " + row.Header)
		} else {
			prefix := "  "
			if selected[row.TabID] {
				prefix = "✔ "
			}
			badge := ""
			if bookmarked[row.URL] {
				badge = bookmarkStyle.Render("★") + " "
			}
			title := row.Title
			if title == "" {
				title = row.URL
			}
			note := ""
			if row.Note != "" {
				note = "  " + noteStyle.Render(row.Note)
			}
			maxLen := m.Width - lipgloss.Width(prefix) - lipgloss.Width(badge) - lipgloss.Width(note) - 2
			if maxLen < 10 {
				maxLen = 10
			}
			if len(title) > maxLen {
				title = title[:maxLen-1] + "…"
			}
			line = prefix + badge + title + note
		}

		if i == m.Cursor {
			for lipgloss.Width(line) < m.Width {
				line += " "
			}
			line = cursorStyle.Render(line)
		}

		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if m.Limited > 0 {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("  … %d more hidden by display limit", m.Limited)))
	}

	return b.String()
}
