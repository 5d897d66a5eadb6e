package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabclue/internal/bookmarks"
	"github.com/lotas/tabclue/internal/bridge"
	"github.com/lotas/tabclue/internal/collection"
	"github.com/lotas/tabclue/internal/firefox"
	"github.com/lotas/tabclue/internal/mutate"
	"github.com/lotas/tabclue/internal/selection"
	"github.com/lotas/tabclue/internal/types"
	"github.com/lotas/tabclue/internal/views"
)

// --- Messages ---

type collectionMsg struct {
	tags types.Collection
	err  error
}

type settingsMsg struct {
	settings types.Settings
	err      error
}

type collectionChangedMsg struct {
	tags types.Collection
	ok   bool
}

type bookmarksMsg struct {
	status map[string]bool
}

type savedMsg struct {
	result types.SaveResult
	err    error
}

type mutationDoneMsg struct {
	err error
}

type bridgeStatusMsg struct{ connected bool }

// focusPane identifies which pane receives navigation keys.
type focusPane int

const (
	focusSidebar focusPane = iota
	focusList
)

// --- Model ---

type Model struct {
	// Dependencies
	tags     *collection.CollectionStore
	settings *collection.SettingsStore
	engine   *mutate.Engine
	server   *bridge.Server
	cache    *bookmarks.Cache

	// Data
	collection types.Collection
	prefs      types.Settings
	counts     types.CountInfo

	// UI state
	view        types.ViewType
	tree        TreeModel
	list        ListModel
	focus       focusPane
	filterTag   string
	filterGroup string
	selected    *selection.Set
	bookmarked  map[string]bool
	searching   bool
	editDialog  *EditDialog
	confirm     *ConfirmDialog
	status      string
	err         error
	loading     bool
	connected   bool
	width       int
	height      int

	unsubscribe func()
	changes     <-chan types.Collection
}

// Deps carries the collaborators the dashboard needs.
type Deps struct {
	Tags     *collection.CollectionStore
	Settings *collection.SettingsStore
	Engine   *mutate.Engine
	Server   *bridge.Server // may be nil (offline only)
	Cache    *bookmarks.Cache
}

func NewModel(d Deps) Model {
	m := Model{
		tags:       d.Tags,
		settings:   d.Settings,
		engine:     d.Engine,
		server:     d.Server,
		cache:      d.Cache,
		view:       types.ViewCompleteList,
		tree:       NewTreeModel(nil),
		selected:   selection.New(),
		bookmarked: make(map[string]bool),
		loading:    true,
	}
	if m.cache == nil {
		m.cache = bookmarks.NewCache(bookmarks.NoopChecker{})
	}
	m.changes, m.unsubscribe = d.Tags.Subscribe()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCollection(), m.loadSettings(), m.listenChanges()}
	if m.server != nil {
		cmds = append(cmds, startBridge(m.server), m.pollBridge())
	}
	return tea.Batch(cmds...)
}

// --- Commands ---

func (m Model) loadCollection() tea.Cmd {
	store := m.tags
	return func() tea.Msg {
		tags, err := store.Get()
		return collectionMsg{tags: tags, err: err}
	}
}

func (m Model) loadSettings() tea.Cmd {
	store := m.settings
	return func() tea.Msg {
		s, err := store.Get()
		return settingsMsg{settings: s, err: err}
	}
}

func (m Model) listenChanges() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		tags, ok := <-ch
		return collectionChangedMsg{tags: tags, ok: ok}
	}
}

func startBridge(srv *bridge.Server) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		srv.ListenAndServe(ctx)
		return bridgeStatusMsg{connected: false}
	}
}

func (m Model) pollBridge() tea.Cmd {
	srv := m.server
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return bridgeStatusMsg{connected: srv.Connected()}
	})
}

func (m Model) fetchBookmarks() tea.Cmd {
	cache := m.cache
	urls := m.list.URLs()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return bookmarksMsg{status: cache.Status(ctx, urls)}
	}
}

func (m Model) saveSnapshot() tea.Cmd {
	srv := m.server
	engine := m.engine
	targetTag := m.prefs.DefaultTagID
	closeAfter := m.prefs.CloseTabsAfterSave
	connected := m.connected && srv != nil
	return func() tea.Msg {
		var open []types.OpenTab
		var err error
		if connected {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			open, err = srv.WaitSnapshot(ctx, 15*time.Second)
		} else {
			open, err = firefox.DefaultProfileTabs()
		}
		if err != nil {
			return savedMsg{err: err}
		}
		result, err := engine.SaveSnapshot(open, targetTag)
		if err != nil {
			return savedMsg{err: err}
		}
		if result.Success && closeAfter && connected && len(result.Handles) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if cerr := srv.CloseTabs(ctx, result.Handles); cerr != nil {
				return savedMsg{result: result, err: fmt.Errorf("saved, but closing tabs failed: %w", cerr)}
			}
		}
		return savedMsg{result: result}
	}
}

func (m Model) deleteSelected() tea.Cmd {
	engine := m.engine
	ids := m.selected.IDs()
	if len(ids) == 0 {
		if row := m.list.SelectedRow(); row != nil && row.TabID != "" {
			ids[row.TabID] = true
		}
	}
	return func() tea.Msg {
		return mutationDoneMsg{err: engine.DeleteSelected(ids)}
	}
}

func (m Model) commitEdit(d EditDialog) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return mutationDoneMsg{err: engine.EditTab(d.TabID, d.Title, d.URL)}
	}
}

func (m Model) toggleCollapse(tagID string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return mutationDoneMsg{err: engine.ToggleTagCollapse(tagID)}
	}
}

func (m Model) openSelected() tea.Cmd {
	if m.server == nil || !m.connected {
		return nil
	}
	srv := m.server
	var urls []string
	if m.selected.Len() > 0 {
		for _, row := range m.list.Rows {
			if row.TabID != "" && m.selected.Has(row.TabID) {
				urls = append(urls, row.URL)
			}
		}
	} else if row := m.list.SelectedRow(); row != nil && row.TabID != "" {
		urls = append(urls, row.URL)
	}
	if len(urls) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return mutationDoneMsg{err: srv.OpenTabs(ctx, urls)}
	}
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		sidebarWidth := m.width * SidebarWidthPct / 100
		listWidth := m.width - sidebarWidth - 3
		paneHeight := m.height - 5
		m.tree.Width = sidebarWidth
		m.tree.Height = paneHeight
		m.list.Width = listWidth
		m.list.Height = paneHeight
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case collectionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m.applyCollection(msg.tags)

	case collectionChangedMsg:
		if !msg.ok {
			return m, nil
		}
		mm, cmd := m.applyCollection(msg.tags)
		return mm, tea.Batch(cmd, m.listenChanges())

	case settingsMsg:
		if msg.err == nil {
			m.prefs = msg.settings
		}
		return m, nil

	case bookmarksMsg:
		for url, on := range msg.status {
			m.bookmarked[url] = on
		}
		return m, nil

	case bridgeStatusMsg:
		m.connected = msg.connected
		if m.server != nil {
			return m, m.pollBridge()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
			return m, nil
		}
		if !msg.result.Success {
			m.status = "Nothing to save (no eligible tabs)"
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %d tabs", msg.result.SavedCount)
		return m, m.loadCollection()

	case mutationDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.selected.Reset()
		return m, m.loadCollection()
	}

	return m, nil
}

// applyCollection installs a fresh collection and rebuilds both panes.
func (m Model) applyCollection(tags types.Collection) (Model, tea.Cmd) {
	m.collection = tags
	m.counts = views.Counts(tags)
	m.tree.SetTags(tags)

	// Drop a filter that no longer resolves to anything.
	if m.filterTag != "" && views.FilterLabel(tags, m.filterTag, m.filterGroup) == "Complete List" {
		m.filterTag = ""
		m.filterGroup = ""
	}

	m.rebuildList()
	return m, m.fetchBookmarks()
}

// rebuildList recomputes the right pane rows for the active view.
func (m *Model) rebuildList() {
	limit := m.prefs.DisplayLimit
	switch m.view {
	case types.ViewMostVisited:
		m.list.Title = "Most Visited"
		m.list.SetMostVisited(views.MostVisited(m.collection), limit)
	case types.ViewGroupedBySite:
		m.list.Title = "By Site"
		m.list.SetBySite(views.GroupedBySite(m.collection), limit)
	default:
		m.list.Title = views.FilterLabel(m.collection, m.filterTag, m.filterGroup)
		m.list.SetTabs(views.TabsForFilter(m.collection, m.filterTag, m.filterGroup), limit)
	}
}

// switchView changes the active view and resets transient state.
func (m *Model) switchView(v types.ViewType) {
	if m.view == v {
		return
	}
	m.view = v
	m.selected.Reset()
	if v != types.ViewCompleteList {
		m.filterTag = ""
		m.filterGroup = ""
	}
	m.rebuildList()
	m.list.ResetCursor()
	m.focus = focusList
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal: confirm delete
	if m.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			m.confirm = nil
			return m, m.deleteSelected()
		case "n", "esc", "q":
			m.confirm = nil
		}
		return m, nil
	}

	// Modal: edit dialog
	if m.editDialog != nil {
		done, commit := m.editDialog.HandleKey(msg)
		if !done {
			return m, nil
		}
		d := *m.editDialog
		m.editDialog = nil
		if commit {
			return m, m.commitEdit(d)
		}
		return m, nil
	}

	// Sidebar search input
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc:
			m.searching = false
			m.tree.SetQuery("")
		case tea.KeyEnter:
			m.searching = false
		case tea.KeyBackspace:
			if len(m.tree.Query) > 0 {
				r := []rune(m.tree.Query)
				m.tree.SetQuery(string(r[:len(r)-1]))
			}
		case tea.KeyRunes:
			m.tree.SetQuery(m.tree.Query + string(msg.Runes))
		case tea.KeySpace:
			m.tree.SetQuery(m.tree.Query + " ")
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit

	case "1":
		m.switchView(types.ViewCompleteList)
		return m, m.fetchBookmarks()
	case "2":
		m.switchView(types.ViewMostVisited)
		return m, m.fetchBookmarks()
	case "3":
		m.switchView(types.ViewGroupedBySite)
		return m, m.fetchBookmarks()

	case "tab":
		if m.focus == focusSidebar {
			m.focus = focusList
		} else {
			m.focus = focusSidebar
		}

	case "up", "k":
		if m.focus == focusSidebar {
			m.tree.MoveUp()
		} else {
			m.list.MoveUp()
		}
	case "down", "j":
		if m.focus == focusSidebar {
			m.tree.MoveDown()
		} else {
			m.list.MoveDown()
		}
	case "h":
		if m.focus == focusSidebar {
			m.tree.CollapseOrParent()
		}
	case "l":
		if m.focus == focusSidebar {
			m.tree.ExpandOrEnter()
		}

	case "enter":
		if m.focus == focusSidebar {
			node := m.tree.SelectedNode()
			if node == nil {
				return m, nil
			}
			if node.Tag != nil {
				m.filterTag = node.Tag.ID
				m.filterGroup = ""
			} else if node.Session != nil {
				m.filterTag = node.TagID
				m.filterGroup = node.Session.ID
			}
			m.view = types.ViewCompleteList
			m.selected.Reset()
			m.rebuildList()
			m.list.ResetCursor()
			return m, m.fetchBookmarks()
		}
		return m, m.openSelected()

	case "c":
		if m.focus == focusSidebar {
			if tagID := m.tree.Toggle(); tagID != "" {
				return m, m.toggleCollapse(tagID)
			}
		}

	case " ":
		if m.focus == focusList && m.view == types.ViewCompleteList {
			if row := m.list.SelectedRow(); row != nil && row.TabID != "" {
				m.selected.Toggle(row.TabID)
			}
			m.list.MoveDown()
		}

	case "a":
		if m.focus == focusList && m.view == types.ViewCompleteList {
			ids := m.list.TabIDs()
			if m.selected.IsAllSelected(ids) {
				m.selected.DeselectAll()
			} else {
				m.selected.SelectAll(ids)
			}
		}

	case "esc":
		m.selected.DeselectAll()
		m.filterTag = ""
		m.filterGroup = ""
		m.status = ""
		m.rebuildList()

	case "d", "x":
		if m.view != types.ViewCompleteList {
			return m, nil
		}
		n := m.selected.Len()
		if n == 0 {
			if row := m.list.SelectedRow(); row == nil || row.TabID == "" {
				return m, nil
			}
			n = 1
		}
		if m.prefs.ShowCloseConfirmation {
			m.confirm = &ConfirmDialog{Message: fmt.Sprintf("Delete %d tab(s)?", n)}
			return m, nil
		}
		return m, m.deleteSelected()

	case "e":
		if m.view == types.ViewCompleteList {
			if row := m.list.SelectedRow(); row != nil && row.TabID != "" {
				d := NewEditDialog(row.TabID, row.Title, row.URL)
				m.editDialog = &d
			}
		}

	case "s":
		m.status = "Saving snapshot..."
		return m, m.saveSnapshot()

	case "o":
		return m, m.openSelected()

	case "/":
		m.searching = true
		m.focus = focusSidebar

	case "r":
		return m, tea.Batch(m.loadCollection(), m.loadSettings())
	}

	return m, nil
}

// --- View ---

func (m Model) View() string {
	if m.loading {
		return "\n  Loading saved tabs...\n"
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press 'r' to retry, 'q' to quit.\n", m.err)
	}

	if m.editDialog != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.editDialog.View())
	}
	if m.confirm != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	navbar := renderNavbar(m.view, m.counts, m.connected, m.width)

	sidebarBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.paneColor(focusSidebar)).
		Width(m.tree.Width).
		Height(m.tree.Height)

	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.paneColor(focusList)).
		Width(m.list.Width).
		Height(m.list.Height)

	left := sidebarBorder.Render(m.tree.View())
	right := listBorder.Render(m.list.View(m.selected.IDs(), m.bookmarked))
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	bottomStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	var bottomText string
	if m.searching {
		bottomText = "type to search · enter done · esc clear"
	} else {
		if m.selected.Len() > 0 {
			bottomText = fmt.Sprintf("%d selected · d delete · o open · esc clear · ", m.selected.Len())
		}
		bottomText += "↑↓/jk navigate · tab pane · 1-3 view · space select · a all · e edit · s save · / search · q quit"
	}
	if m.status != "" {
		bottomText += "   " + m.status
	}
	bottomBar := bottomStyle.Render(bottomText)

	return lipgloss.JoinVertical(lipgloss.Left, navbar, panes, bottomBar)
}

func (m Model) paneColor(pane focusPane) lipgloss.Color {
	if m.focus == pane {
		return lipgloss.Color("62")
	}
	return lipgloss.Color("240")
}
