package ui

import (
	"fmt"
	"io"

	"github.com/vanderheijden86/techtips/pkg/export"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// PrintOptions controls --print output.
type PrintOptions struct {
	Title          string
	Width          int  // wrap width; 0 disables wrapping
	Plain          bool // write raw markdown (stdout is not a terminal)
	ShowBackground bool
}

// Print writes items as a handbook to w, rendered with glamour unless
// Plain is set.
func Print(w io.Writer, items []model.Instruction, opts PrintOptions) error {
	md := export.GenerateMarkdown(items, export.MarkdownOptions{
		Title:          opts.Title,
		ShowBackground: opts.ShowBackground,
	})
	out := md
	if !opts.Plain {
		out = NewMarkdownRenderer(opts.Width).Render(md) + "\n"
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
