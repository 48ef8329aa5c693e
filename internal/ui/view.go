package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/config"
	"taskdeck/internal/task"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	descStyle     = lipgloss.NewStyle().Faint(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) View() string {
	if m.screen == screenLogin {
		return m.viewLogin()
	}
	return m.viewTasks()
}

func (m Model) viewLogin() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("taskdeck • sign in"))
	b.WriteString("\n\n")

	labels := []string{"Username", "Password"}
	values := []string{m.login.username, m.login.password}
	for i, label := range labels {
		if i == m.login.index {
			b.WriteString(fmt.Sprintf("> %-9s : %s\n", label, m.input.View()))
			continue
		}
		val := values[i]
		if i == 1 {
			val = strings.Repeat("•", len([]rune(val)))
		}
		b.WriteString(fmt.Sprintf("  %-9s : %s\n", label, val))
	}

	b.WriteString("\n")
	b.WriteString(m.renderNotice())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab switch field • enter submit • esc clear • ctrl+c quit"))
	return b.String()
}

func (m Model) viewTasks() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("taskdeck"))
	b.WriteString("  ")
	b.WriteString(helpStyle.Render(m.renderQuerySummary()))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spin.View())
		b.WriteString(" Loading tasks…\n")
	case len(m.visible()) == 0 && len(m.tasks) == 0:
		b.WriteString("No tasks yet. Press '" + m.cfg.Keys.Add + "' to add one.\n")
	case len(m.visible()) == 0:
		b.WriteString("No tasks match the current view.\n")
	default:
		b.WriteString(m.renderTaskList())
	}

	if m.mode == modeSearch {
		b.WriteString("\nSearch: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.mode == modeAdd && m.add != nil {
		b.WriteString("\n")
		b.WriteString(m.renderForm("Add task", addFields(), []string{m.add.title, m.add.description, m.add.due}, m.add.index))
	}
	if m.mode == modeRange && m.rng != nil {
		b.WriteString("\n")
		b.WriteString(m.renderForm("Due date range", rangeFields(), []string{m.rng.start, m.rng.end}, m.rng.index))
	}

	b.WriteString("\n")
	b.WriteString(m.renderNotice())
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))
	return b.String()
}

func (m Model) renderQuerySummary() string {
	parts := []string{"filter: " + m.query.Filter.String()}
	if m.query.Filter == task.FilterDateRange && m.query.RangeStart != "" {
		parts[0] += fmt.Sprintf(" (%s..%s)", m.query.RangeStart, m.query.RangeEnd)
	}
	parts = append(parts, "sort: "+m.query.Sort.String())
	if m.query.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.query.Search))
	}
	parts = append(parts, fmt.Sprintf("%d/%d", len(m.visible()), len(m.tasks)))
	return strings.Join(parts, " • ")
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.visible() {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		title := t.Title
		if t.Completed {
			title = doneStyle.Render(title)
		} else if m.cursor == i && m.mode == modeList {
			title = selectedStyle.Render(title)
		}

		b.WriteString(fmt.Sprintf("%s %s %s", cursor, checkbox, title))
		if t.DueDate != "" {
			b.WriteString(" " + dueStyle.Render("due "+t.DueDate))
		}
		if t.Description != "" {
			b.WriteString(" " + descStyle.Render("• "+t.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderForm(title string, fields, values []string, active int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for i, name := range fields {
		prefix := " "
		if i == active {
			prefix = ">"
		}
		if i == active {
			b.WriteString(fmt.Sprintf("%s %-22s : %s\n", prefix, name, m.input.View()))
			continue
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-22s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) renderNotice() string {
	switch m.note.kind {
	case noticeSuccess:
		return successStyle.Render(m.note.text)
	case noticeError:
		return errorStyle.Render(m.note.text)
	default:
		return m.note.text
	}
}

func renderHelp(k config.Keymap) string {
	toggle := k.Toggle
	if toggle == " " {
		toggle = "space"
	}
	return helpStyle.Render(fmt.Sprintf(
		"%s/%s move • %s add • %s toggle • %s delete • %s refresh • %s search • %s filter • %s sort • %s range • %s logout • %s quit",
		k.Up, k.Down, k.Add, toggle, k.Delete, k.Refresh, k.Search, k.Filter, k.Sort, k.DateRange, k.Logout, k.Quit))
}
