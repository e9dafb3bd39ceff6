package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// MarkdownOptions controls handbook generation.
type MarkdownOptions struct {
	Title          string
	Now            time.Time // zero means time.Now
	ShowBackground bool
}

// GenerateMarkdown renders the collection as a printable handbook. Grouped
// content gets one section per category in sorted order; flat content is a
// single run of cards in load order.
func GenerateMarkdown(items []model.Instruction, opts MarkdownOptions) string {
	var sb strings.Builder

	title := opts.Title
	if title == "" {
		title = "Tech Tips"
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", now.Format(time.RFC1123)))

	if len(items) == 0 {
		sb.WriteString("No instructions available.\n")
		return sb.String()
	}

	grouped := catalog.Grouped(items)
	var categories []string
	if grouped {
		categories = catalog.Categories(items)
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Category | Instructions |\n|----------|--------------|\n")
	if grouped {
		for _, c := range categories {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", escapeCell(c), len(catalog.FilterByCategory(items, c))))
		}
		if n := countUncategorized(items); n > 0 {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", model.DefaultCategory, n))
		}
	}
	sb.WriteString(fmt.Sprintf("| **Total** | %d |\n\n", len(items)))

	// Precompute stable, unique slugs for TOC anchors and headings.
	slugCounts := make(map[string]int, len(items)+len(categories))
	categorySlugs := make(map[string]string, len(categories))
	for _, c := range categories {
		categorySlugs[c] = uniqueSlug(createSlug(c), slugCounts)
	}
	itemSlugs := make([]string, len(items))
	for idx, in := range items {
		itemSlugs[idx] = uniqueSlug(createSlug(in.Title), slugCounts)
	}

	// Table of Contents
	sb.WriteString("## Table of Contents\n\n")
	if grouped {
		for _, c := range categories {
			sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", c, categorySlugs[c]))
			for idx, in := range items {
				if in.Category == c {
					sb.WriteString(fmt.Sprintf("  - [%s](#%s)\n", LiteralMarkdown(in.Title), itemSlugs[idx]))
				}
			}
		}
	} else {
		for idx, in := range items {
			sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", LiteralMarkdown(in.Title), itemSlugs[idx]))
		}
	}
	sb.WriteString("\n---\n\n")

	if !grouped {
		for idx, in := range items {
			writeCard(&sb, in, itemSlugs[idx], "##", opts.ShowBackground)
		}
		return sb.String()
	}

	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", categorySlugs[c]))
		sb.WriteString(fmt.Sprintf("## %s\n\n", c))
		for idx, in := range items {
			if in.Category == c {
				writeCard(&sb, in, itemSlugs[idx], "###", opts.ShowBackground)
			}
		}
	}
	return sb.String()
}

// InstructionMarkdown renders one card the way the handbook does, without
// an anchor. Used by the terminal renderer.
func InstructionMarkdown(in model.Instruction, showBackground bool) string {
	var sb strings.Builder
	writeCard(&sb, in, "", "#", showBackground)
	return sb.String()
}

var literalReplacer = strings.NewReplacer(`\`, `\\`, `_`, `\_`)

// LiteralMarkdown escapes backslashes and underscores in step or title text.
// Both are literal in content (Windows paths, file names). Asterisk emphasis
// and code spans still render.
func LiteralMarkdown(s string) string {
	return literalReplacer.Replace(s)
}

func writeCard(sb *strings.Builder, in model.Instruction, slug, level string, showBackground bool) {
	if slug != "" {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slug))
	}
	sb.WriteString(fmt.Sprintf("%s %s\n\n", level, LiteralMarkdown(in.Title)))
	if showBackground && in.Background != "" {
		sb.WriteString(fmt.Sprintf("*Background: `%s`*\n\n", in.Background))
	}
	for i, step := range in.Steps {
		// Continuation lines stay inside the list item.
		text := strings.ReplaceAll(LiteralMarkdown(strings.TrimSpace(step)), "\n", "\n   ")
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, text))
	}
	sb.WriteString("\n")
	if slug != "" {
		sb.WriteString("---\n\n")
	}
}

func countUncategorized(items []model.Instruction) int {
	n := 0
	for _, in := range items {
		if !in.HasCategory() {
			n++
		}
	}
	return n
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return slug
}

// SaveMarkdownToFile writes the generated handbook to a file.
func SaveMarkdownToFile(items []model.Instruction, filename string, opts MarkdownOptions) error {
	content := GenerateMarkdown(items, opts)
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}
