package ui

import (
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/metrics"
)

// MarkdownRenderer renders step text and cards with glamour. It rebuilds
// the underlying renderer only when the wrap width changes.
type MarkdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer wrapping at width cells. A width of
// 0 disables wrapping.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	r := &MarkdownRenderer{style: glamourStyle(), width: -1}
	r.SetWidth(width)
	return r
}

// glamourStyle picks a standard style for the detected terminal; plain
// terminals get "notty" so no escape codes are emitted.
func glamourStyle() string {
	switch {
	case TermProfile <= colorprofile.Ascii:
		return "notty"
	case lipgloss.HasDarkBackground():
		return "dark"
	default:
		return "light"
	}
}

// SetWidth changes the wrap width.
func (r *MarkdownRenderer) SetWidth(width int) {
	if width < 0 {
		width = 0
	}
	if width == r.width && r.renderer != nil {
		return
	}
	r.width = width
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		debug.Log("glamour: %v", err)
		r.renderer = nil
		return
	}
	r.renderer = tr
}

// Width returns the wrap width.
func (r *MarkdownRenderer) Width() int {
	return r.width
}

// Render renders md, falling back to the raw text if glamour fails.
func (r *MarkdownRenderer) Render(md string) string {
	if r == nil || r.renderer == nil {
		return md
	}
	defer metrics.Timer(metrics.MarkdownRender)()
	out, err := r.renderer.Render(md)
	if err != nil {
		debug.Log("glamour render: %v", err)
		return md
	}
	// Strip the blank margin glamour adds around the document
	return strings.Trim(out, "\n")
}
