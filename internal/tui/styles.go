package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lectopus/internal/book"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#ab8bff"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ab8bff"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("114"))
)

func renderTabs(active screenKind) string {
	tabs := []struct {
		kind  screenKind
		label string
	}{
		{kindHome, "Home (h)"},
		{kindSearch, "Search (/)"},
		{kindSaved, "Saved (v)"},
		{kindProfile, "Profile (p)"},
	}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.kind == active {
			parts = append(parts, activeTab.Render(t.label))
		} else {
			parts = append(parts, tabStyle.Render(t.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderBooks lists books; selected is an index into books or -1.
func renderBooks(books []book.Book, selected int) string {
	var b strings.Builder
	for i, bk := range books {
		line := bk.Title
		if a := bk.FirstAuthor(); a != "" {
			line += dimStyle.Render(" · " + a)
		}
		if bk.PublishedYear != "" {
			line += dimStyle.Render(fmt.Sprintf(" (%s)", bk.PublishedYear))
		}
		if i == selected {
			b.WriteString(selectedStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderError(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}

func help(keys string) string {
	return dimStyle.Render(keys)
}

func clamp(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
