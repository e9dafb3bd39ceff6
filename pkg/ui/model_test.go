package ui_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/config"
	"github.com/vanderheijden86/techtips/pkg/content"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/model"
	"github.com/vanderheijden86/techtips/pkg/nav"
	"github.com/vanderheijden86/techtips/pkg/ui"
	"github.com/vanderheijden86/techtips/pkg/watcher"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m ui.Model, keys ...tea.KeyMsg) ui.Model {
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(ui.Model)
	}
	return m
}

func shareAFileCatalog() *catalog.Catalog {
	return catalog.New([]model.Instruction{
		{Category: "Printing", Title: "Add the Office Printer", Steps: []string{"Open Settings.", "Click Add device."}},
		{Category: "Files", Title: "Share a File", Background: "onedrive", Steps: []string{"Open OneDrive.", "Select Share."}},
		{Category: "Email & Outlook", Title: "Set Up Outlook", Steps: []string{"Open Outlook."}},
	})
}

func newModel(c *catalog.Catalog, opts ui.Options) ui.Model {
	if opts.Config.UI.GridColumns == 0 {
		opts.Config = config.DefaultConfig()
	}
	m := ui.NewModel(c, opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(ui.Model)
}

func TestShareAFileWalkthrough(t *testing.T) {
	m := newModel(shareAFileCatalog(), ui.Options{})

	if m.Screen() != nav.ScreenGrid {
		t.Fatalf("expected grid, got %s", m.Screen())
	}
	view := m.View()
	for _, want := range []string{"Email & Outlook", "Files", "Printing", "3 categories"} {
		if !strings.Contains(view, want) {
			t.Errorf("grid view missing %q", want)
		}
	}

	// Tiles are sorted: Email & Outlook, Files, Printing. Files is the
	// second tile in a two column grid.
	m = press(m, keyRight, keyEnter)
	if m.Screen() != nav.ScreenList || m.Flow().Category() != "Files" {
		t.Fatalf("expected Files list, got %s/%q", m.Screen(), m.Flow().Category())
	}
	if !strings.Contains(m.View(), "Share a File") {
		t.Error("list view should show Share a File")
	}

	m = press(m, keyEnter)
	if m.Screen() != nav.ScreenDetail {
		t.Fatalf("expected detail, got %s", m.Screen())
	}
	view = m.View()
	for _, want := range []string{"Files › Share a File", "Open OneDrive.", "Step 1 of 2", "onedrive"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	m = press(m, keyRight)
	view = m.View()
	if !strings.Contains(view, "Select Share.") || !strings.Contains(view, "Step 2 of 2") {
		t.Errorf("expected second step after advancing:\n%s", view)
	}

	// No wraparound past the last step.
	m = press(m, keyRight)
	if got := m.Flow().StepIndex(); got != 1 {
		t.Errorf("step index after advancing past the end = %d, want 1", got)
	}

	m = press(m, keyLeft, keyLeft)
	if got := m.Flow().StepIndex(); got != 0 {
		t.Errorf("step index after retreating past the start = %d, want 0", got)
	}

	m = press(m, keyEsc)
	if m.Screen() != nav.ScreenList {
		t.Fatalf("esc from detail should return to the list, got %s", m.Screen())
	}
	m = press(m, keyEsc)
	if m.Screen() != nav.ScreenGrid {
		t.Fatalf("esc from list should return to the grid, got %s", m.Screen())
	}
	if got := m.Flow().GridCursor(); got != 1 {
		t.Errorf("grid cursor should be restored to Files, got %d", got)
	}
}

func TestGridCursorMovesByColumns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.GridColumns = 2
	m := newModel(shareAFileCatalog(), ui.Options{Config: cfg})

	m = press(m, keyDown)
	if got := m.Flow().GridCursor(); got != 2 {
		t.Errorf("down should move one row (2 tiles), cursor = %d", got)
	}
	m = press(m, keyDown)
	if got := m.Flow().GridCursor(); got != 2 {
		t.Errorf("down on the last row should clamp, cursor = %d", got)
	}
	m = press(m, keyUp, keyLeft)
	if got := m.Flow().GridCursor(); got != 0 {
		t.Errorf("cursor should clamp at 0, got %d", got)
	}
}

func TestGridUpOnTopRowStaysPut(t *testing.T) {
	m := newModel(shareAFileCatalog(), ui.Options{})

	m = press(m, keyRight, keyUp)
	if got := m.Flow().GridCursor(); got != 1 {
		t.Errorf("up on the top row should not move sideways, cursor = %d", got)
	}
	m = press(m, keyDown)
	if got := m.Flow().GridCursor(); got != 2 {
		t.Errorf("down into the short last row should land on its tile, cursor = %d", got)
	}
}

func TestEmptyState(t *testing.T) {
	loadErr := errors.New("instructions.json: resource not found")
	m := newModel(catalog.Empty(), ui.Options{LoadErr: loadErr})

	if m.Screen() != nav.ScreenEmpty {
		t.Fatalf("expected empty screen, got %s", m.Screen())
	}
	view := m.View()
	if !strings.Contains(view, "No instructions available") {
		t.Error("empty view should say no instructions are available")
	}
	if !strings.Contains(view, "resource not found") {
		t.Error("empty view should show the load error")
	}

	// Every navigation key is a no-op.
	m = press(m, keyEnter, keyRight, keyEsc, runes("]"), runes("y"))
	if m.Screen() != nav.ScreenEmpty {
		t.Errorf("keys should not leave the empty screen, got %s", m.Screen())
	}
}

func TestCarouselFlatContent(t *testing.T) {
	m := newModel(catalog.New(content.Fixture()), ui.Options{})

	if m.Screen() != nav.ScreenCarousel {
		t.Fatalf("uncategorized content should open the carousel, got %s", m.Screen())
	}
	if !strings.Contains(m.View(), "Card 1 of 3") {
		t.Error("carousel header should show Card 1 of 3")
	}

	m = press(m, keyRight)
	if m.Flow().StepIndex() != 1 {
		t.Fatalf("expected step 1, got %d", m.Flow().StepIndex())
	}

	m = press(m, runes("]"))
	i, n := m.Flow().InstructionIndex()
	if i != 1 || n != 3 {
		t.Errorf("InstructionIndex = %d/%d, want 1/3", i, n)
	}
	if m.Flow().StepIndex() != 0 {
		t.Errorf("switching cards must reset the step, got %d", m.Flow().StepIndex())
	}
	view := m.View()
	if !strings.Contains(view, "Share a File") || !strings.Contains(view, "Open OneDrive.") {
		t.Errorf("second card should be Share a File:\n%s", view)
	}

	// Back is a no-op in the carousel.
	m = press(m, keyEsc)
	if m.Screen() != nav.ScreenCarousel {
		t.Errorf("esc should not leave the carousel, got %s", m.Screen())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	if i, _ := m.Flow().InstructionIndex(); i != 0 {
		t.Errorf("shift+tab should clamp at the first card, got %d", i)
	}
}

func TestForcedGroupedModeOverFlatContent(t *testing.T) {
	m := newModel(catalog.New(content.Fixture()), ui.Options{Mode: nav.ModeGrouped})
	if m.Screen() != nav.ScreenGrid {
		t.Fatalf("expected grid, got %s", m.Screen())
	}
	if !strings.Contains(m.View(), model.DefaultCategory) {
		t.Errorf("grid should show the %q tile", model.DefaultCategory)
	}
	m = press(m, keyEnter)
	if got := len(m.Flow().Items()); got != 3 {
		t.Errorf("General list should hold every record, got %d", got)
	}
}

func TestCopyStep(t *testing.T) {
	var copied string
	m := newModel(shareAFileCatalog(), ui.Options{
		Clipboard: func(s string) error { copied = s; return nil },
	})
	m = press(m, keyRight, keyEnter, keyEnter, keyRight, runes("y"))

	if copied != "Select Share." {
		t.Errorf("copied %q, want %q", copied, "Select Share.")
	}
	msg, isErr := m.StatusMessage()
	if isErr || msg != "Copied step 2 of 2" {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}

	m = press(m, runes("Y"))
	if !strings.HasPrefix(copied, "# Share a File") || !strings.Contains(copied, "2. Select Share.") {
		t.Errorf("card copy = %q", copied)
	}
}

func TestCopyStepClipboardError(t *testing.T) {
	m := newModel(catalog.New(content.Fixture()), ui.Options{
		Clipboard: func(string) error { return errors.New("no clipboard utility") },
	})
	m = press(m, runes("y"))

	msg, isErr := m.StatusMessage()
	if !isErr || !strings.Contains(msg, "no clipboard utility") {
		t.Errorf("expected clipboard error status, got %q (error=%v)", msg, isErr)
	}
	if !strings.Contains(m.View(), "no clipboard utility") {
		t.Error("error status should be rendered in the footer")
	}

	// The next key clears the status.
	m = press(m, keyRight)
	if msg, _ := m.StatusMessage(); msg != "" {
		t.Errorf("status should clear on the next key, got %q", msg)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newModel(shareAFileCatalog(), ui.Options{})
	m = press(m, keyEnter, keyEnter)

	if strings.Contains(m.View(), "last step") {
		t.Fatal("full help should be hidden initially")
	}
	m = press(m, runes("?"))
	view := m.View()
	if !strings.Contains(view, "last step") || !strings.Contains(view, "copy step") {
		t.Errorf("full help should list step bindings:\n%s", view)
	}
	if strings.Contains(view, "next card") {
		t.Error("carousel bindings should be hidden in the detail view")
	}
	m = press(m, runes("?"))
	if strings.Contains(m.View(), "last step") {
		t.Error("second ? should hide full help")
	}
}

func TestStartSelection(t *testing.T) {
	m := newModel(shareAFileCatalog(), ui.Options{Start: &ui.Selection{Category: "Files", Index: 0}})
	if m.Screen() != nav.ScreenDetail {
		t.Fatalf("expected detail, got %s", m.Screen())
	}
	if in, _ := m.Flow().Current(); in.Title != "Share a File" {
		t.Errorf("opened %q, want Share a File", in.Title)
	}

	m = newModel(catalog.New(content.Fixture()), ui.Options{Start: &ui.Selection{Index: 2}})
	if i, _ := m.Flow().InstructionIndex(); i != 2 {
		t.Errorf("carousel should open at card 2, got %d", i)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(shareAFileCatalog(), ui.Options{})
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s should return a command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should quit", k)
		}
	}
}

func writeContent(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReloadKeepsSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.json")
	writeContent(t, path, `[
		{"category":"Files","title":"Share a File","steps":["Open OneDrive.","Select Share."]}
	]`)

	r, err := ui.NewReloader(path, func() loader.Result { return loader.LoadFileResult(path) })
	if err != nil {
		t.Fatal(err)
	}
	res := r.Load()
	m := newModel(catalog.New(res.Instructions), ui.Options{Reloader: r})
	m = press(m, keyEnter, keyEnter, keyRight)

	writeContent(t, path, `[
		{"category":"Files","title":"Move a File","steps":["Drag it."]},
		{"category":"Files","title":"Share a File","steps":["Open OneDrive.","Select Share.","Send the link."]}
	]`)
	updated, cmd := m.Update(ui.FileChangedMsg{})
	m = updated.(ui.Model)
	if cmd == nil {
		t.Error("reload should re-arm the watch command")
	}

	msg, isErr := m.StatusMessage()
	if isErr || msg != "Reloaded 2 instructions" {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
	if m.Screen() != nav.ScreenDetail {
		t.Fatalf("reload should stay in detail, got %s", m.Screen())
	}
	if in, _ := m.Flow().Current(); in.Title != "Share a File" {
		t.Errorf("selection lost on reload: %q", in.Title)
	}
	if m.Flow().StepIndex() != 1 || !strings.Contains(m.View(), "Step 2 of 3") {
		t.Errorf("step should survive reload, got %d", m.Flow().StepIndex())
	}
}

func TestReloadFailureKeepsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.json")
	writeContent(t, path, `[{"title":"Share a File","steps":["Open OneDrive."]}]`)

	r, err := ui.NewReloader(path, func() loader.Result { return loader.LoadFileResult(path) })
	if err != nil {
		t.Fatal(err)
	}
	m := newModel(catalog.New(r.Load().Instructions), ui.Options{Reloader: r})

	writeContent(t, path, `{not json`)
	updated, _ := m.Update(ui.FileChangedMsg{})
	m = updated.(ui.Model)

	msg, isErr := m.StatusMessage()
	if !isErr || !strings.HasPrefix(msg, "Reload failed") {
		t.Errorf("expected reload failure status, got %q (error=%v)", msg, isErr)
	}
	if m.Flow().Catalog().Len() != 1 {
		t.Errorf("previous content should be kept, got %d records", m.Flow().Catalog().Len())
	}
}

func TestWatchErrorStatus(t *testing.T) {
	m := newModel(shareAFileCatalog(), ui.Options{})
	updated, _ := m.Update(ui.WatchErrorMsg{Err: watcher.ErrFileRemoved})
	m = updated.(ui.Model)

	msg, isErr := m.StatusMessage()
	if !isErr || !strings.Contains(msg, "removed") {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
}
