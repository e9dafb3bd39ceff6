package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// Tile geometry for the category grid.
const (
	tileHeight   = 5
	tileGap      = 1
	minTileWidth = 16
)

var (
	// Base colors
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	// Accents
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Status bar backgrounds
	ColorSuccessBg = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
	ColorDangerBg  = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}
)

var (
	// CardStyle frames the step card in detail and carousel views.
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight).
			Padding(0, SpaceSM)

	// EmptyStyle is used for the empty state message.
	EmptyStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext).
			Bold(true)
)

// RenderCountBadge returns a small "N tips" badge.
func RenderCountBadge(n int) string {
	label := fmt.Sprintf("%d tips", n)
	if n == 1 {
		label = "1 tip"
	}
	return lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBgSubtle).
		Padding(0, 1).
		Render(label)
}

// RenderCategoryTile draws one grid tile. The border takes the category
// color; the selected tile gets a thick border and bold name.
func (t Theme) RenderCategoryTile(name string, count, width int, selected bool) string {
	if width < minTileWidth {
		width = minTileWidth
	}
	color := t.CategoryColor(name)

	border := lipgloss.RoundedBorder()
	if selected {
		border = lipgloss.ThickBorder()
	}
	style := t.Renderer.NewStyle().
		Border(border).
		BorderForeground(color).
		Width(width-2).
		Height(tileHeight-2).
		Padding(0, 1)

	nameStyle := t.Renderer.NewStyle().Foreground(color)
	if selected {
		nameStyle = nameStyle.Bold(true)
	}
	inner := width - 4
	lines := []string{
		nameStyle.Render(truncate(name, inner)),
		"",
		RenderCountBadge(count),
	}
	return style.Render(strings.Join(lines, "\n"))
}

// RenderStatus renders a footer status message, styled as an error when
// isError is set.
func RenderStatus(msg string, isError bool, width int) string {
	style := lipgloss.NewStyle().
		Background(ColorSuccessBg).
		Foreground(ColorSuccess).
		Bold(true).
		Padding(0, SpaceSM)
	prefix := "✓ "
	if isError {
		style = style.Background(ColorDangerBg).Foreground(ColorDanger)
		prefix = "✗ "
	}
	section := style.Render(truncate(prefix+msg, max(width-2*SpaceSM, 1)))
	remaining := width - lipgloss.Width(section)
	if remaining < 0 {
		remaining = 0
	}
	filler := lipgloss.NewStyle().Width(remaining).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Bottom, section, filler)
}
