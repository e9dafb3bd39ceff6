package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InstructionDelegate renders instruction rows in the list.
type InstructionDelegate struct {
	Theme Theme
	Color lipgloss.TerminalColor // category accent; nil uses the theme primary
}

func (d InstructionDelegate) Height() int {
	return 1
}

func (d InstructionDelegate) Spacing() int {
	return 0
}

func (d InstructionDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d InstructionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(InstructionItem)
	if !ok {
		return
	}

	t := d.Theme
	width := m.Width()
	if width <= 0 {
		width = 80
	}
	// Reduce width by 1 to prevent terminal wrapping on the exact edge
	width = width - 1

	isSelected := index == m.Index()
	accent := d.Color
	if accent == nil {
		accent = t.Primary
	}

	// Layout: [sel] [num] [title...] [steps]
	num := fmt.Sprintf("%2d.", i.Index+1)
	steps := i.Description()

	rightWidth := 0
	if width > 40 {
		rightWidth = lipgloss.Width(steps) + 1
	}
	titleWidth := width - 2 - lipgloss.Width(num) - 1 - rightWidth
	if titleWidth < 5 {
		titleWidth = 5
	}
	title := padRight(truncate(i.Instruction.Title, titleWidth), titleWidth)

	var row strings.Builder
	if isSelected {
		row.WriteString(t.Renderer.NewStyle().Foreground(accent).Bold(true).Render("▸ "))
	} else {
		row.WriteString("  ")
	}
	row.WriteString(t.SecondaryText.Render(num))
	row.WriteString(" ")

	titleStyle := t.Renderer.NewStyle()
	if isSelected {
		titleStyle = titleStyle.Foreground(accent).Bold(true)
	} else {
		titleStyle = titleStyle.Foreground(ColorText)
	}
	row.WriteString(titleStyle.Render(title))

	if rightWidth > 0 {
		row.WriteString(" ")
		row.WriteString(t.MutedText.Render(steps))
	}

	rowStyle := t.Renderer.NewStyle().Width(width).MaxWidth(width)
	if isSelected {
		rowStyle = rowStyle.Background(t.Highlight)
	}
	fmt.Fprint(w, rowStyle.Render(row.String()))
}
