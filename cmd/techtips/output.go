package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/vanderheijden86/techtips/internal/datasource"
	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/config"
	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/export"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/metrics"
	"github.com/vanderheijden86/techtips/pkg/model"
	"github.com/vanderheijden86/techtips/pkg/nav"
	"github.com/vanderheijden86/techtips/pkg/ui"
)

const defaultPrintWidth = 80

// filterInstructions keeps the records in category (case-insensitive; the
// default category also matches uncategorized records) that match query.
func filterInstructions(items []model.Instruction, category, query string) []model.Instruction {
	category = strings.TrimSpace(category)
	if category != "" {
		var kept []model.Instruction
		for _, in := range items {
			name := in.Category
			if !in.HasCategory() {
				name = model.DefaultCategory
			}
			if strings.EqualFold(name, category) {
				kept = append(kept, in)
			}
		}
		items = kept
	}
	if strings.TrimSpace(query) != "" {
		items = catalog.New(items).Search(query)
	}
	return items
}

func runValidate(stdout, stderr io.Writer, res loader.Result, src datasource.DataSource, discovery datasource.DiscoveryOptions) int {
	fmt.Fprintf(stdout, "Source: %s (%s)\n", src.Name(), src.Origin)
	for _, w := range res.Warnings {
		fmt.Fprintf(stdout, "  warning: %s\n", w)
	}
	printCandidates(stdout, discovery)
	if res.Failed() {
		fmt.Fprintf(stderr, "Error: %v\n", res.Err)
		return 1
	}
	if res.Empty() {
		fmt.Fprintln(stderr, "Error: no instructions")
		return 1
	}

	cats := catalog.Categories(res.Instructions)
	fmt.Fprintf(stdout, "OK: %d instructions, %d categories, %d skipped (%s)\n",
		len(res.Instructions), len(cats), len(res.Warnings), res.Elapsed.Round(time.Millisecond))
	return 0
}

// printCandidates lists every discovered source with its validation status,
// so an author can see which file would win and why the others would not.
func printCandidates(stdout io.Writer, discovery datasource.DiscoveryOptions) {
	discovery.ValidateAfterDiscovery = true
	sources, err := datasource.Discover(discovery)
	if err != nil {
		return
	}
	fmt.Fprintln(stdout, "Candidates:")
	for _, c := range sources {
		fmt.Fprintf(stdout, "  %s\n", c)
	}
}

func runExports(stdout io.Writer, items []model.Instruction, opts options, cfg config.Config) error {
	if opts.exportMD != "" {
		mdOpts := export.MarkdownOptions{Title: handbookTitle(opts), ShowBackground: cfg.ShowBackground()}
		if err := export.SaveMarkdownToFile(items, opts.exportMD, mdOpts); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d instructions to %s\n", len(items), opts.exportMD)
	}
	if opts.exportSQLite != "" {
		exporter := export.NewSQLiteExporter(items)
		if title := handbookTitle(opts); title != "" {
			exporter.Config.Title = title
		}
		if err := exporter.Export(opts.exportSQLite); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d instructions to %s\n", len(items), opts.exportSQLite)
	}
	if opts.exportJSON != "" {
		if err := export.WriteJSON(items, opts.exportJSON); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d instructions to %s\n", len(items), opts.exportJSON)
	}
	return nil
}

// handbookTitle names the output after the category filter, if any.
func handbookTitle(opts options) string {
	return strings.TrimSpace(opts.category)
}

func runPrint(stdout, stderr io.Writer, res loader.Result, items []model.Instruction, opts options, cfg config.Config, interactive bool) int {
	if res.Failed() {
		fmt.Fprintf(stderr, "Error loading instructions: %v\n", res.Err)
		return 1
	}
	err := ui.Print(stdout, items, ui.PrintOptions{
		Title:          handbookTitle(opts),
		Width:          printWidth(cfg, interactive),
		Plain:          !interactive,
		ShowBackground: cfg.ShowBackground(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runPrintPicked(stdout, stderr io.Writer, c *catalog.Catalog, mode nav.Mode, sel ui.Selection, cfg config.Config, interactive bool) int {
	in, ok := pickedInstruction(c, mode, sel)
	if !ok {
		fmt.Fprintln(stderr, "Error: picked instruction not found")
		return 1
	}
	md := export.InstructionMarkdown(in, cfg.ShowBackground())
	if interactive {
		md = ui.NewMarkdownRenderer(printWidth(cfg, interactive)).Render(md) + "\n"
	}
	if _, err := io.WriteString(stdout, md); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// pickedInstruction resolves a picker selection the same way the browser
// opens it.
func pickedInstruction(c *catalog.Catalog, mode nav.Mode, sel ui.Selection) (model.Instruction, bool) {
	f := nav.New(c, mode)
	switch f.Screen() {
	case nav.ScreenCarousel:
		// Goto reports false when already on the card, so index 0 is checked
		// by range alone.
		if !f.GotoInstruction(sel.Index) && sel.Index != 0 {
			return model.Instruction{}, false
		}
	case nav.ScreenGrid:
		found := false
		for i, g := range f.Groups() {
			if g == sel.Category {
				f.SelectCategory(i)
				found = f.SelectInstruction(sel.Index)
				break
			}
		}
		if !found {
			return model.Instruction{}, false
		}
	}
	return f.Current()
}

func printWidth(cfg config.Config, interactive bool) int {
	width := defaultPrintWidth
	if interactive {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	if cfg.UI.WordWrap > 0 && cfg.UI.WordWrap < width {
		width = cfg.UI.WordWrap
	}
	return width
}

// logMetrics writes the collected timings to the debug log on exit.
func logMetrics() {
	if !debug.Enabled() {
		return
	}
	for _, s := range metrics.AllTimingStats() {
		debug.Log("metric %s: count=%d avg=%.2fms max=%.2fms total=%.2fms", s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs)
	}
}
