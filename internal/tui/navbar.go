package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabclue/internal/types"
)

// SidebarWidthPct is the percentage of terminal width used for the left (sidebar) pane.
const SidebarWidthPct = 35

var viewOrder = []types.ViewType{types.ViewCompleteList, types.ViewMostVisited, types.ViewGroupedBySite}
var viewNames = []string{"Complete List", "Most Visited", "By Site"}

func renderNavbar(active types.ViewType, counts types.CountInfo, connected bool, width int) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Underline(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	var tabs string
	for i, vt := range viewOrder {
		if i > 0 {
			tabs += inactiveStyle.Render(" │ ")
		}
		name := fmt.Sprintf("%d %s", i+1, viewNames[i])
		if vt == active {
			tabs += activeStyle.Render(name)
		} else {
			tabs += inactiveStyle.Render(name)
		}
	}

	stats := fmt.Sprintf("%d tabs · %d sessions · %d collections",
		counts.TabCount, counts.GroupCount, counts.TagCount)
	left := " " + tabs + "   " + countStyle.Render(stats)

	status := "browser ○ offline"
	if connected {
		status = "browser ● connected"
	}
	right := statusStyle.Render(status)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	padding := lipgloss.NewStyle().Width(gap)

	return left + padding.Render("") + right + " "
}
