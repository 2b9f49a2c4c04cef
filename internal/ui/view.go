package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/retrotodo/internal/theme"
	"github.com/nibzard/retrotodo/internal/todoclient"
)

const (
	appTitle   = "Retro Todo"
	listTitle  = "Your Tasks"
	emptyText  = "No tasks yet. Add your first one!"
	loadText   = "Loading tasks..."
	footerText = "Made with <3 in 8-bit style"
)

func (m *tuiModel) View() string {
	s := m.styles
	view := m.state.View()

	var b strings.Builder
	writeHeader(&b, s, view.Theme)
	b.WriteString(m.renderInput(view) + "\n")
	if view.Banner != "" {
		b.WriteString(s.Banner.Render("! "+view.Banner) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderListHeader(view) + "\n")
	b.WriteString(m.renderBody(view) + "\n")
	b.WriteString(s.Footer.Render(footerText) + "\n")
	b.WriteString(m.help.View(m.keys))

	return s.App.Render(b.String())
}

func writeHeader(b *strings.Builder, s theme.Styles, t theme.Theme) {
	title := s.Title.Render(appTitle)
	toggle := s.ThemeToggle.Render("ctrl+t " + theme.ToggleLabel(t))
	b.WriteString(s.Header.Render(lipgloss.JoinHorizontal(lipgloss.Top, title, toggle)) + "\n")
}

func (m *tuiModel) renderInput(view todoclient.View) string {
	s := m.styles
	button := s.Button.Render("Add")
	if view.ActionLoading {
		button = s.ButtonBusy.Render("Adding...")
	}
	card := s.Card
	if m.focus != focusInput {
		card = card.BorderForeground(theme.PaletteFor(view.Theme).Muted)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, card.Render(m.input.View()), " ", button)
}

func (m *tuiModel) renderListHeader(view todoclient.View) string {
	s := m.styles
	header := s.ListTitle.Render(listTitle)
	if view.Refreshing {
		return header + "  " + m.spinner.View() + s.Loading.Render("Loading...")
	}
	return header + "  " + s.ThemeToggle.Render("ctrl+r Refresh")
}

func (m *tuiModel) renderBody(view todoclient.View) string {
	s := m.styles
	switch view.Kind {
	case todoclient.ViewLoading:
		return s.Loading.Render(loadText)
	case todoclient.ViewEmpty:
		return s.Empty.Render(emptyText)
	}
	if m.viewport.Height <= 0 {
		return m.renderTasks()
	}
	return m.viewport.View()
}

// renderTasks renders one line per task with the cursor row highlighted.
func (m *tuiModel) renderTasks() string {
	s := m.styles
	lines := make([]string, 0, len(m.state.Tasks))
	for i, task := range m.state.Tasks {
		text := task.Text
		if strings.TrimSpace(text) == "" {
			text = "(untitled)"
		}
		row := "  " + text
		style := s.Item
		if m.focus == focusList && i == m.cursor {
			row = "> " + text
			style = s.ItemCursor
		}
		lines = append(lines, style.Render(row)+" "+s.Delete.Render("[x]"))
	}
	return strings.Join(lines, "\n")
}
