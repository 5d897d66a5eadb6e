package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EditDialog is a modal for editing a saved tab's title and URL.
type EditDialog struct {
	TabID  string
	Title  string
	URL    string
	Focus  int // 0 = title, 1 = url
	Width  int
	Height int
}

func NewEditDialog(tabID, title, url string) EditDialog {
	return EditDialog{TabID: tabID, Title: title, URL: url}
}

// HandleKey applies a key press to the focused field. Returns true when
// the dialog is done (committed or cancelled) along with the commit flag.
func (d *EditDialog) HandleKey(msg tea.KeyMsg) (done, commit bool) {
	switch msg.Type {
	case tea.KeyEsc:
		return true, false
	case tea.KeyEnter:
		return true, true
	case tea.KeyTab, tea.KeyDown, tea.KeyUp:
		d.Focus = 1 - d.Focus
		return false, false
	case tea.KeyBackspace:
		field := d.field()
		if len(*field) > 0 {
			r := []rune(*field)
			*field = string(r[:len(r)-1])
		}
		return false, false
	case tea.KeyRunes, tea.KeySpace:
		*d.field() += string(msg.Runes)
		if msg.Type == tea.KeySpace {
			*d.field() += " "
		}
		return false, false
	}
	return false, false
}

func (d *EditDialog) field() *string {
	if d.Focus == 0 {
		return &d.Title
	}
	return &d.URL
}

func (d EditDialog) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	renderField := func(label, value string, focused bool) string {
		cursor := ""
		if focused {
			cursor = focusStyle.Render("▎")
		}
		return labelStyle.Render(label) + "\n  " + value + cursor
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Edit tab") + "\n\n")
	b.WriteString(renderField("Title", d.Title, d.Focus == 0) + "\n\n")
	b.WriteString(renderField("URL", d.URL, d.Focus == 1) + "\n\n")
	b.WriteString(normalStyle.Render("tab switch field · enter save · esc cancel"))

	return boxStyle.Render(b.String())
}

// ConfirmDialog asks before a destructive action.
type ConfirmDialog struct {
	Message string
	Width   int
	Height  int
}

func (d ConfirmDialog) View() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return boxStyle.Render(
		lipgloss.NewStyle().Bold(true).Render(d.Message) +
			"\n\n" + dimStyle.Render("y confirm · n/esc cancel"))
}
