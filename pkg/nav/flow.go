package nav

import (
	"fmt"

	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// Flow is the navigation state over one catalog.
//
// Grouped mode walks grid -> list -> detail and back. Flat mode is a single
// carousel with two pagers: the outer one selects the instruction and the
// inner one the step. Changing the outer index always resets the inner one.
// An empty catalog pins the flow to ScreenEmpty and every operation is a
// no-op returning false.
type Flow struct {
	cat       *catalog.Catalog
	requested Mode
	mode      Mode // ModeGrouped or ModeFlat once resolved
	screen    Screen

	groups     []string
	gridCursor int

	category   string
	items      []model.Instruction // list entries (grouped) or the deck (flat)
	listCursor int

	outer Pager // selected instruction within items
	steps Pager
}

// New builds a flow over c. A nil catalog is treated as empty.
func New(c *catalog.Catalog, mode Mode) *Flow {
	f := &Flow{requested: mode}
	f.reset(c)
	return f
}

func (f *Flow) reset(c *catalog.Catalog) {
	if c == nil {
		c = catalog.Empty()
	}
	*f = Flow{cat: c, requested: f.requested}

	f.mode = f.requested
	if f.mode == ModeAuto {
		if c.Grouped() {
			f.mode = ModeGrouped
		} else {
			f.mode = ModeFlat
		}
	}

	switch {
	case c.IsEmpty():
		f.screen = ScreenEmpty
	case f.mode == ModeFlat:
		f.screen = ScreenCarousel
		f.items = c.All()
		f.outer = NewPager(len(f.items))
		f.steps = NewPager(f.items[0].StepCount())
	default:
		f.screen = ScreenGrid
		f.groups = c.Categories()
		if len(f.groups) == 0 {
			// Forced grouping over flat content: one synthetic group.
			f.groups = []string{model.DefaultCategory}
		}
	}
}

// Catalog returns the catalog the flow was built over.
func (f *Flow) Catalog() *catalog.Catalog { return f.cat }

// Screen returns the current screen.
func (f *Flow) Screen() Screen { return f.screen }

// Mode returns the resolved mode, never ModeAuto.
func (f *Flow) Mode() Mode { return f.mode }

// Groups returns the grid tiles in display order.
func (f *Flow) Groups() []string {
	out := make([]string, len(f.groups))
	copy(out, f.groups)
	return out
}

// GroupCount returns the number of instructions behind grid tile name.
func (f *Flow) GroupCount(name string) int {
	if f.cat.Grouped() {
		return f.cat.Count(name)
	}
	if name == model.DefaultCategory {
		return f.cat.Len()
	}
	return 0
}

// GridCursor returns the highlighted grid tile.
func (f *Flow) GridCursor() int { return f.gridCursor }

// ListCursor returns the highlighted list row.
func (f *Flow) ListCursor() int { return f.listCursor }

// Category returns the selected category, empty on the grid and in flat mode.
func (f *Flow) Category() string { return f.category }

// Items returns the instructions of the current list, or the whole deck in
// flat mode.
func (f *Flow) Items() []model.Instruction {
	out := make([]model.Instruction, len(f.items))
	for i := range f.items {
		out[i] = f.items[i].Clone()
	}
	return out
}

func (f *Flow) groupItems(name string) []model.Instruction {
	if f.cat.Grouped() {
		return f.cat.InCategory(name)
	}
	return f.cat.All()
}

// MoveCursor moves the grid or list highlight by delta, clamped to the ends.
func (f *Flow) MoveCursor(delta int) bool {
	switch f.screen {
	case ScreenGrid:
		return moveClamped(&f.gridCursor, delta, len(f.groups))
	case ScreenList:
		return moveClamped(&f.listCursor, delta, len(f.items))
	}
	return false
}

// MoveGridRow moves the grid highlight one row up (rows < 0) or down
// (rows > 0) in a grid of cols columns. Up from the top row does nothing.
// Down into a shorter last row lands on its final tile; down from the last
// row does nothing.
func (f *Flow) MoveGridRow(rows, cols int) bool {
	if f.screen != ScreenGrid || cols < 1 || rows == 0 {
		return false
	}
	n := len(f.groups)
	row, lastRow := f.gridCursor/cols, (n-1)/cols
	target := row + rows
	if target < 0 || target > lastRow {
		return false
	}
	next := target*cols + f.gridCursor%cols
	if next > n-1 {
		next = n - 1
	}
	f.gridCursor = next
	return true
}

// SetCursor moves the grid or list highlight to i when in range.
func (f *Flow) SetCursor(i int) bool {
	switch f.screen {
	case ScreenGrid:
		return moveClamped(&f.gridCursor, i-f.gridCursor, len(f.groups))
	case ScreenList:
		return moveClamped(&f.listCursor, i-f.listCursor, len(f.items))
	}
	return false
}

func moveClamped(cursor *int, delta, n int) bool {
	if n == 0 {
		return false
	}
	next := *cursor + delta
	if next < 0 {
		next = 0
	}
	if next > n-1 {
		next = n - 1
	}
	if next == *cursor {
		return false
	}
	*cursor = next
	return true
}

// Select activates the highlighted grid tile or list row.
func (f *Flow) Select() bool {
	switch f.screen {
	case ScreenGrid:
		return f.SelectCategory(f.gridCursor)
	case ScreenList:
		return f.SelectInstruction(f.listCursor)
	}
	return false
}

// SelectCategory opens the list for grid tile i.
func (f *Flow) SelectCategory(i int) bool {
	if f.screen != ScreenGrid || i < 0 || i >= len(f.groups) {
		return false
	}
	name := f.groups[i]
	if name != f.category {
		f.listCursor = 0
	}
	f.gridCursor = i
	f.category = name
	f.items = f.groupItems(name)
	f.screen = ScreenList
	return true
}

// SelectInstruction opens list row i in the step viewer at step 0.
func (f *Flow) SelectInstruction(i int) bool {
	if f.screen != ScreenList || i < 0 || i >= len(f.items) {
		return false
	}
	f.listCursor = i
	f.outer = NewPager(len(f.items))
	f.outer.Goto(i)
	f.steps = NewPager(f.items[i].StepCount())
	f.screen = ScreenDetail
	return true
}

// Back leaves detail for the list and the list for the grid. It is a no-op
// on the grid, in the carousel and on the empty screen.
func (f *Flow) Back() bool {
	switch f.screen {
	case ScreenDetail:
		f.screen = ScreenList
		return true
	case ScreenList:
		f.screen = ScreenGrid
		return true
	}
	return false
}

func (f *Flow) viewing() bool {
	return f.screen == ScreenDetail || f.screen == ScreenCarousel
}

// Current returns the instruction shown in detail or carousel.
func (f *Flow) Current() (model.Instruction, bool) {
	if !f.viewing() {
		return model.Instruction{}, false
	}
	return f.items[f.outer.Index()].Clone(), true
}

// Highlighted returns the list row under the cursor, or the current
// instruction when viewing one.
func (f *Flow) Highlighted() (model.Instruction, bool) {
	if f.screen == ScreenList && f.listCursor < len(f.items) {
		return f.items[f.listCursor].Clone(), true
	}
	return f.Current()
}

// InstructionIndex returns the outer position and deck size.
func (f *Flow) InstructionIndex() (int, int) {
	return f.outer.Index(), f.outer.Len()
}

// StepIndex returns the inner position.
func (f *Flow) StepIndex() int { return f.steps.Index() }

// StepCount returns the number of steps of the current instruction.
func (f *Flow) StepCount() int {
	if !f.viewing() {
		return 0
	}
	return f.steps.Len()
}

// CurrentStep returns the text of the current step.
func (f *Flow) CurrentStep() (string, bool) {
	if !f.viewing() {
		return "", false
	}
	return f.items[f.outer.Index()].Step(f.steps.Index())
}

// StepLabel returns "Step N of M" for the current step.
func (f *Flow) StepLabel() string {
	if !f.viewing() || f.steps.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("Step %d of %d", f.steps.Index()+1, f.steps.Len())
}

// NextStep advances one step without wrapping.
func (f *Flow) NextStep() bool {
	return f.viewing() && f.steps.Next()
}

// PrevStep goes back one step without wrapping.
func (f *Flow) PrevStep() bool {
	return f.viewing() && f.steps.Prev()
}

// GotoStep jumps to step i.
func (f *Flow) GotoStep(i int) bool {
	return f.viewing() && f.steps.Goto(i)
}

// FirstStep jumps to the first step.
func (f *Flow) FirstStep() bool {
	return f.viewing() && f.steps.First()
}

// LastStep jumps to the last step.
func (f *Flow) LastStep() bool {
	return f.viewing() && f.steps.Last()
}

// NextInstruction moves the carousel to the next instruction at step 0.
func (f *Flow) NextInstruction() bool {
	if f.screen != ScreenCarousel || !f.outer.Next() {
		return false
	}
	f.enterOuter()
	return true
}

// PrevInstruction moves the carousel to the previous instruction at step 0.
func (f *Flow) PrevInstruction() bool {
	if f.screen != ScreenCarousel || !f.outer.Prev() {
		return false
	}
	f.enterOuter()
	return true
}

// GotoInstruction moves the carousel to instruction i at step 0.
func (f *Flow) GotoInstruction(i int) bool {
	if f.screen != ScreenCarousel || !f.outer.Goto(i) {
		return false
	}
	f.enterOuter()
	return true
}

func (f *Flow) enterOuter() {
	f.steps = NewPager(f.items[f.outer.Index()].StepCount())
}

// Replace swaps in a freshly loaded catalog. The selected category,
// instruction and step survive when they still exist, matched by title.
func (f *Flow) Replace(c *catalog.Catalog) {
	prev := snapshot(f)
	f.reset(c)
	prev.restore(f)
}

type selection struct {
	screen     Screen
	gridCursor int
	category   string
	listCursor int
	title      string
	step       int
}

func snapshot(f *Flow) selection {
	s := selection{
		screen:     f.screen,
		gridCursor: f.gridCursor,
		category:   f.category,
		listCursor: f.listCursor,
		step:       f.steps.Index(),
	}
	if in, ok := f.Highlighted(); ok {
		s.title = in.Title
	}
	return s
}

func (s selection) restore(f *Flow) {
	switch f.screen {
	case ScreenCarousel:
		for i := range f.items {
			if f.items[i].Title != s.title {
				continue
			}
			f.GotoInstruction(i)
			if s.screen == ScreenCarousel {
				f.steps.Goto(s.step)
			}
			break
		}
	case ScreenGrid:
		idx := indexOf(f.groups, s.category)
		if idx < 0 {
			f.SetCursor(s.gridCursor)
			return
		}
		f.gridCursor = idx
		if s.screen != ScreenList && s.screen != ScreenDetail {
			return
		}
		f.SelectCategory(idx)
		row := -1
		for i := range f.items {
			if f.items[i].Title == s.title {
				row = i
				break
			}
		}
		if row < 0 {
			f.SetCursor(s.listCursor)
			return
		}
		f.listCursor = row
		if s.screen == ScreenDetail {
			f.SelectInstruction(row)
			f.steps.Goto(s.step)
		}
	}
}

func indexOf(list []string, v string) int {
	if v == "" {
		return -1
	}
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
