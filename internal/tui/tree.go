package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabclue/internal/types"
	"github.com/lotas/tabclue/internal/views"
)

// TreeNode represents a visible row in the sidebar tree.
type TreeNode struct {
	Tag     *types.Tag   // non-nil for collection headers
	Session *types.Group // non-nil for session rows
	TagID   string       // owning tag for session rows
}

// TreeModel manages the collapsible sidebar: collections with their
// sessions nested underneath.
type TreeModel struct {
	Tags     types.Collection
	Expanded map[string]bool // tag ID -> expanded
	Query    string          // sidebar search filter
	Cursor   int
	Offset   int
	Width    int
	Height   int
}

func NewTreeModel(tags types.Collection) TreeModel {
	expanded := make(map[string]bool)
	for _, t := range tags {
		expanded[t.ID] = !t.IsCollapsed
	}
	return TreeModel{
		Tags:     tags,
		Expanded: expanded,
	}
}

// SetTags replaces the tree contents, keeping cursor and expanded state
// where possible.
func (m *TreeModel) SetTags(tags types.Collection) {
	m.Tags = tags
	if m.Expanded == nil {
		m.Expanded = make(map[string]bool)
	}
	for _, t := range tags {
		if _, ok := m.Expanded[t.ID]; !ok {
			m.Expanded[t.ID] = !t.IsCollapsed
		}
	}
	nodes := m.VisibleNodes()
	if m.Cursor >= len(nodes) {
		m.Cursor = len(nodes) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// SetQuery changes the search filter. A non-empty query shows only
// matching branches and forces them expanded.
func (m *TreeModel) SetQuery(q string) {
	m.Query = q
	m.Cursor = 0
	m.Offset = 0
}

// visibleTags applies the search filter.
func (m TreeModel) visibleTags() types.Collection {
	if strings.TrimSpace(m.Query) == "" {
		return m.Tags
	}
	return views.SearchTags(m.Tags, m.Query)
}

// VisibleNodes returns the flat list of currently visible rows.
func (m TreeModel) VisibleNodes() []TreeNode {
	searching := strings.TrimSpace(m.Query) != ""
	var nodes []TreeNode
	tags := m.visibleTags()
	for ti := range tags {
		tag := &tags[ti]
		nodes = append(nodes, TreeNode{Tag: tag})
		if m.Expanded[tag.ID] || searching {
			for gi := range tag.Groups {
				nodes = append(nodes, TreeNode{Session: &tag.Groups[gi], TagID: tag.ID})
			}
		}
	}
	return nodes
}

// SelectedNode returns the node under the cursor, or nil.
func (m TreeModel) SelectedNode() *TreeNode {
	nodes := m.VisibleNodes()
	if m.Cursor >= 0 && m.Cursor < len(nodes) {
		return &nodes[m.Cursor]
	}
	return nil
}

func (m *TreeModel) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
}

func (m *TreeModel) MoveDown() {
	nodes := m.VisibleNodes()
	if m.Cursor < len(nodes)-1 {
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

// Toggle expands/collapses the selected collection. Returns the tag ID
// whose collapsed state changed, or "".
func (m *TreeModel) Toggle() string {
	node := m.SelectedNode()
	if node == nil || node.Tag == nil {
		return ""
	}
	m.Expanded[node.Tag.ID] = !m.Expanded[node.Tag.ID]
	return node.Tag.ID
}

// CollapseOrParent collapses the selected collection if expanded, or
// jumps to the parent header if the cursor is on a session row.
func (m *TreeModel) CollapseOrParent() {
	node := m.SelectedNode()
	if node == nil {
		return
	}
	if node.Tag != nil {
		if m.Expanded[node.Tag.ID] {
			m.Expanded[node.Tag.ID] = false
		}
		return
	}
	nodes := m.VisibleNodes()
	for i := m.Cursor - 1; i >= 0; i-- {
		if nodes[i].Tag != nil {
			m.Cursor = i
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
			return
		}
	}
}

// ExpandOrEnter expands the selected collection if collapsed, or moves
// into the first session row if already expanded.
func (m *TreeModel) ExpandOrEnter() {
	node := m.SelectedNode()
	if node == nil || node.Tag == nil {
		return
	}
	if !m.Expanded[node.Tag.ID] {
		m.Expanded[node.Tag.ID] = true
		return
	}
	nodes := m.VisibleNodes()
	if m.Cursor+1 < len(nodes) && nodes[m.Cursor+1].Session != nil {
		m.Cursor++
		visibleRows := m.Height - 2
		if visibleRows < 1 {
			visibleRows = 1
		}
		if m.Cursor >= m.Offset+visibleRows {
			m.Offset = m.Cursor - visibleRows + 1
		}
	}
}

func tagTabCount(tag *types.Tag) int {
	n := 0
	for _, g := range tag.Groups {
		n += len(g.Tabs)
	}
	return n
}

// View renders the sidebar.
func (m TreeModel) View() string {
	nodes := m.VisibleNodes()

	var header string
	if strings.TrimSpace(m.Query) != "" {
		header = fmt.Sprintf("/%s", m.Query)
	}

	if len(nodes) == 0 {
		if header != "" {
			return header + "\n  No matches."
		}
		return "No saved collections."
	}

	visibleRows := m.Height
	if visibleRows < 1 {
		visibleRows = 20
	}

	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	tagStyle := lipgloss.NewStyle().Bold(true)
	lockStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sessionStyle := lipgloss.NewStyle()

	var b strings.Builder
	if header != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(header) + "\n")
	}

	end := m.Offset + visibleRows
	if end > len(nodes) {
		end = len(nodes)
	}

	for i := m.Offset; i < end; i++ {
		node := nodes[i]
		var line string

		if node.Tag != nil {
			icon := "▶"
			if m.Expanded[node.Tag.ID] || strings.TrimSpace(m.Query) != "" {
				icon = "▼"
			}
			label := fmt.Sprintf("%s %s (%d tabs)", icon, node.Tag.Name, tagTabCount(node.Tag))
			line = tagStyle.Render(label)
			if node.Tag.IsLocked {
				line += lockStyle.Render(" 🔒")
			}
		} else if node.Session != nil {
			label := fmt.Sprintf("    %s (%d)", node.Session.Name, len(node.Session.Tabs))
			line = sessionStyle.Render(label)
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

	return b.String()
}
