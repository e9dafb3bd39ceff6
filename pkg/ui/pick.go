package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/model"
	"github.com/vanderheijden86/techtips/pkg/nav"
)

// Selection names one instruction: its category (empty in flat mode) and
// its position within that category's list, or within the deck.
type Selection struct {
	Category string
	Index    int
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Pick asks for a category and then an instruction with huh forms, before
// the TUI starts. Flat content skips the category question.
// A cancelled form returns huh.ErrUserAborted.
func Pick(c *catalog.Catalog, mode nav.Mode) (Selection, error) {
	if c == nil || c.IsEmpty() {
		return Selection{}, fmt.Errorf("no instructions to pick from")
	}

	flow := nav.New(c, mode)
	var sel Selection
	var items []model.Instruction

	if flow.Screen() == nav.ScreenGrid {
		groups := flow.Groups()
		sel.Category = groups[0]
		form := newForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Which topic do you need help with?").
					Options(categoryOptions(flow)...).
					Value(&sel.Category),
			),
		)
		if err := form.Run(); err != nil {
			return Selection{}, err
		}
		flow.SelectCategory(indexOfString(groups, sel.Category))
	}
	items = flow.Items()

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Pick an instruction").
				Options(instructionOptions(items)...).
				Filtering(true).
				Value(&sel.Index),
		),
	)
	if err := form.Run(); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// categoryOptions lists the grid tiles with their counts.
func categoryOptions(flow *nav.Flow) []huh.Option[string] {
	groups := flow.Groups()
	opts := make([]huh.Option[string], len(groups))
	for i, g := range groups {
		opts[i] = huh.NewOption(fmt.Sprintf("%s (%d)", g, flow.GroupCount(g)), g)
	}
	return opts
}

func instructionOptions(items []model.Instruction) []huh.Option[int] {
	opts := make([]huh.Option[int], len(items))
	for i, in := range items {
		opts[i] = huh.NewOption(in.Title, i)
	}
	return opts
}

func indexOfString(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
