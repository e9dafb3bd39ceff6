// Package ui is the bubbletea front end of techtips. All navigation state
// lives in a nav.Flow; the Model only maps keys onto it and renders the
// screen the flow is on.
package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/config"
	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/export"
	"github.com/vanderheijden86/techtips/pkg/nav"
	"github.com/vanderheijden86/techtips/pkg/watcher"
)

// Default dimensions until the first WindowSizeMsg arrives, so the UI is
// usable immediately on slow terminals.
const (
	defaultWidth  = 120
	defaultHeight = 40
)

// Options configures a Model.
type Options struct {
	Config   config.Config
	Mode     nav.Mode
	Source   string // shown in the header
	LoadErr  error  // reason shown on the empty screen
	Reloader *Reloader
	Start    *Selection // open this instruction on launch

	// Clipboard writes the copied step; nil uses the system clipboard.
	Clipboard func(string) error
}

// Model is the main Bubble Tea model for techtips.
type Model struct {
	flow     *nav.Flow
	cfg      config.Config
	source   string
	loadErr  error
	reloader *Reloader
	copyText func(string) error

	// UI Components
	list      list.Model
	viewport  viewport.Model
	paginator paginator.Model
	help      help.Model
	keys      KeyMap
	renderer  *MarkdownRenderer
	theme     Theme

	width  int
	height int

	// listKey identifies the items loaded into list; generation bumps on
	// every reload.
	listKey    string
	generation int

	// Status message (for temporary feedback)
	statusMsg     string
	statusIsError bool
}

// NewModel creates a Model browsing c.
func NewModel(c *catalog.Catalog, opts Options) Model {
	cfg := opts.Config
	if cfg.UI.GridColumns < 1 {
		cfg.UI.GridColumns = config.DefaultConfig().UI.GridColumns
	}
	theme := DefaultTheme(lipgloss.NewRenderer(os.Stdout)).WithStyles(cfg)

	l := list.New(nil, InstructionDelegate{Theme: theme}, defaultWidth, defaultHeight-3)
	l.Title = ""
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.Title = lipgloss.NewStyle()
	l.Styles.TitleBar = lipgloss.NewStyle()
	l.Styles.FilterPrompt = lipgloss.NewStyle().Foreground(theme.Primary)
	l.Styles.FilterCursor = lipgloss.NewStyle().Foreground(theme.Primary)
	l.Styles.NoItems = lipgloss.NewStyle().Foreground(ColorMuted).PaddingLeft(2)
	l.FilterInput.Prompt = "Search: "

	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = 1
	p.ActiveDot = lipgloss.NewStyle().Foreground(theme.Primary).Render("●")
	p.InactiveDot = lipgloss.NewStyle().Foreground(ColorMuted).Render("○")

	h := help.New()
	h.ShortSeparator = "  "

	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	m := Model{
		flow:      nav.New(c, opts.Mode),
		cfg:       cfg,
		source:    opts.Source,
		loadErr:   opts.LoadErr,
		reloader:  opts.Reloader,
		copyText:  copyText,
		list:      l,
		viewport:  viewport.New(defaultWidth, defaultHeight-2),
		paginator: p,
		help:      h,
		keys:      DefaultKeyMap(),
		renderer:  NewMarkdownRenderer(wrapWidth(cfg, defaultWidth)),
		theme:     theme,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	if opts.Start != nil {
		m.open(*opts.Start)
	}
	if opts.Reloader != nil {
		m.statusMsg = "Watching " + opts.Reloader.Path()
		if opts.Reloader.IsPolling() {
			m.statusMsg += " (polling)"
		}
	}
	m.resize()
	m.sync()
	return m
}

// wrapWidth returns the glamour wrap width for a card of the given width.
func wrapWidth(cfg config.Config, width int) int {
	w := width - 8 // card border and padding
	if cfg.UI.WordWrap > 0 && cfg.UI.WordWrap < w {
		w = cfg.UI.WordWrap
	}
	if w < 20 {
		w = 20
	}
	return w
}

// open jumps straight to a picked instruction.
func (m *Model) open(sel Selection) {
	f := m.flow
	switch f.Screen() {
	case nav.ScreenCarousel:
		f.GotoInstruction(sel.Index)
	case nav.ScreenGrid:
		for i, g := range f.Groups() {
			if g == sel.Category {
				f.SelectCategory(i)
				f.SelectInstruction(sel.Index)
				return
			}
		}
	}
}

func (m Model) Init() tea.Cmd {
	if m.reloader != nil {
		return WatchFileCmd(m.reloader)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, m.sync()

	case FileChangedMsg:
		cmd := m.reload()
		return m, tea.Batch(cmd, WatchFileCmd(m.reloader))

	case WatchErrorMsg:
		m.setStatus(watchErrorText(msg.Err), true)
		return m, WatchFileCmd(m.reloader)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Filter results and cursor blink belong to the list.
	if m.flow.Screen() == nav.ScreenList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func watchErrorText(err error) string {
	switch {
	case errors.Is(err, watcher.ErrFileRemoved):
		return "Content file removed; showing last loaded content"
	case errors.Is(err, watcher.ErrPermission):
		return "Content file is not readable"
	default:
		return fmt.Sprintf("Watcher: %v", err)
	}
}

// reload re-reads the content and swaps it in, keeping the selection. A
// failed reload keeps what is on screen.
func (m *Model) reload() tea.Cmd {
	if m.reloader == nil {
		return nil
	}
	res := m.reloader.Load()
	if res.Failed() {
		debug.Log("reload failed: %v", res.Err)
		m.setStatus("Reload failed: "+res.Reason(), true)
		return nil
	}
	m.loadErr = nil
	m.generation++
	m.flow.Replace(catalog.New(res.Instructions))
	cmd := m.sync()

	msg := fmt.Sprintf("Reloaded %d instructions", len(res.Instructions))
	if n := len(res.Warnings); n > 0 {
		msg += fmt.Sprintf(" (%d skipped)", n)
	}
	m.setStatus(msg, false)
	return cmd
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// While a search is being typed the list owns the keyboard.
	if m.flow.Screen() == nav.ScreenList && m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.syncListCursor()
		return m, cmd
	}

	m.statusMsg = ""
	m.statusIsError = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.flow.Screen() {
	case nav.ScreenGrid:
		cmd = m.handleGridKeys(msg)
	case nav.ScreenList:
		cmd = m.handleListKeys(msg)
	case nav.ScreenDetail, nav.ScreenCarousel:
		cmd = m.handleViewerKeys(msg)
	}
	return m, cmd
}

func (m *Model) handleGridKeys(msg tea.KeyMsg) tea.Cmd {
	cols := m.cfg.UI.GridColumns
	switch {
	case key.Matches(msg, m.keys.Up):
		m.flow.MoveGridRow(-1, cols)
	case key.Matches(msg, m.keys.Down):
		m.flow.MoveGridRow(1, cols)
	case key.Matches(msg, m.keys.Left):
		m.flow.MoveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.flow.MoveCursor(1)
	case key.Matches(msg, m.keys.Select):
		if m.flow.Select() {
			return m.sync()
		}
	}
	return nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		// Back clears an applied search before leaving the list
		if m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
			m.list.Select(m.flow.ListCursor())
			return nil
		}
		if m.flow.Back() {
			m.listKey = ""
			return m.sync()
		}
		return nil

	case key.Matches(msg, m.keys.Select):
		m.syncListCursor()
		if m.flow.Select() {
			return m.sync()
		}
		return nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.syncListCursor()
	return cmd
}

func (m *Model) handleViewerKeys(msg tea.KeyMsg) tea.Cmd {
	f := m.flow
	changed := false
	switch {
	case key.Matches(msg, m.keys.Back):
		if f.Back() {
			return m.sync()
		}
		return nil
	case key.Matches(msg, m.keys.Right):
		changed = f.NextStep()
	case key.Matches(msg, m.keys.Left):
		changed = f.PrevStep()
	case key.Matches(msg, m.keys.First):
		changed = f.FirstStep()
	case key.Matches(msg, m.keys.Last):
		changed = f.LastStep()
	case key.Matches(msg, m.keys.NextCard):
		changed = f.NextInstruction()
	case key.Matches(msg, m.keys.PrevCard):
		changed = f.PrevInstruction()
	case key.Matches(msg, m.keys.Copy):
		m.copyStep()
		return nil
	case key.Matches(msg, m.keys.CopyCard):
		m.copyCard()
		return nil
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	if changed {
		return m.sync()
	}
	return nil
}

func (m *Model) copyStep() {
	text, ok := m.flow.CurrentStep()
	if !ok {
		return
	}
	if err := m.copyText(text); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard unavailable: %v", err), true)
		return
	}
	m.setStatus("Copied "+strings.ToLower(m.flow.StepLabel()), false)
}

func (m *Model) copyCard() {
	in, ok := m.flow.Current()
	if !ok {
		return
	}
	if err := m.copyText(export.InstructionMarkdown(in, m.cfg.ShowBackground())); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard unavailable: %v", err), true)
		return
	}
	m.setStatus("Copied "+in.Title, false)
}

// syncListCursor copies the list highlight into the flow.
func (m *Model) syncListCursor() {
	if item, ok := m.list.SelectedItem().(InstructionItem); ok {
		m.flow.SetCursor(item.Index)
	}
}

// sync rebuilds the components that mirror the flow's current screen. The
// list is only rebuilt when its category or the content changed, so a
// search survives a trip into the detail view and back.
func (m *Model) sync() tea.Cmd {
	switch m.flow.Screen() {
	case nav.ScreenList:
		k := fmt.Sprintf("%d/%s", m.generation, m.flow.Category())
		if k == m.listKey {
			return nil
		}
		m.listKey = k
		color := m.theme.CategoryColor(m.flow.Category())
		m.list.SetDelegate(InstructionDelegate{Theme: m.theme, Color: color})
		m.list.ResetFilter()
		cmd := m.list.SetItems(listItems(m.flow.Items()))
		m.list.Select(m.flow.ListCursor())
		return cmd
	case nav.ScreenDetail, nav.ScreenCarousel:
		m.paginator.SetTotalPages(m.flow.StepCount())
		m.paginator.Page = m.flow.StepIndex()
		m.viewport.SetContent(m.renderViewer())
		m.viewport.GotoTop()
	}
	return nil
}

// bodyHeight is the space left between the header and the footer.
func (m Model) bodyHeight() int {
	h := m.height - 1 - m.footerHeight()
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) footerHeight() int {
	if !m.help.ShowAll {
		return 1
	}
	return lipgloss.Height(m.help.View(m.screenKeys()))
}

func (m *Model) resize() {
	m.help.Width = m.width
	body := m.bodyHeight()
	m.list.SetSize(m.width, body)
	m.viewport.Width = m.width
	m.viewport.Height = body
	m.renderer.SetWidth(wrapWidth(m.cfg, m.width))
}

func (m Model) screenKeys() KeyMap {
	var s screenKeys
	switch m.flow.Screen() {
	case nav.ScreenGrid:
		s = screenKeys{cursor: true, grid: true}
	case nav.ScreenList:
		s = screenKeys{cursor: true, back: true, filter: true}
	case nav.ScreenDetail:
		s = screenKeys{scroll: true, steps: true, back: true}
	case nav.ScreenCarousel:
		s = screenKeys{scroll: true, steps: true, carousel: true}
	}
	return m.keys.forScreen(s)
}

func (m Model) View() string {
	var body string
	switch m.flow.Screen() {
	case nav.ScreenEmpty:
		body = m.renderEmpty()
	case nav.ScreenGrid:
		body = m.renderGrid()
	case nav.ScreenList:
		body = m.list.View()
	default:
		body = m.viewport.View()
	}

	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)

	finalStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter()))
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render("Tech Tips")

	var crumb string
	f := m.flow
	switch f.Screen() {
	case nav.ScreenGrid:
		crumb = fmt.Sprintf("%d categories", len(f.Groups()))
	case nav.ScreenList:
		crumb = f.Category()
		if q := m.list.FilterValue(); q != "" {
			crumb += fmt.Sprintf(" · search %q", q)
		}
	case nav.ScreenDetail:
		if in, ok := f.Current(); ok {
			crumb = f.Category() + " › " + in.Title
		}
	case nav.ScreenCarousel:
		i, n := f.InstructionIndex()
		crumb = fmt.Sprintf("Card %d of %d", i+1, n)
	}
	left := title + " " + m.theme.SecondaryText.Render(crumb)

	right := ""
	if m.source != "" {
		right = m.theme.MutedText.Render(m.source + " ")
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return truncate(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		return RenderStatus(m.statusMsg, m.statusIsError, m.width)
	}
	return " " + m.help.View(m.screenKeys())
}

func (m Model) renderEmpty() string {
	lines := []string{EmptyStyle.Render("No instructions available")}
	if m.loadErr != nil {
		lines = append(lines, "", m.theme.MutedText.Render(truncate(firstLine(m.loadErr.Error()), m.width-4)))
	}
	lines = append(lines, "", m.theme.MutedText.Render("Point --content or TECHTIPS_CONTENT at a JSON, YAML or SQLite file."))
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderGrid() string {
	f := m.flow
	groups := f.Groups()
	cols := m.cfg.UI.GridColumns
	if cols > len(groups) {
		cols = len(groups)
	}
	if cols < 1 {
		return ""
	}
	tileWidth := (m.width - SpaceSM - (cols-1)*tileGap) / cols

	var rows []string
	for start := 0; start < len(groups); start += cols {
		var tiles []string
		for i := start; i < start+cols && i < len(groups); i++ {
			if i > start {
				tiles = append(tiles, strings.Repeat(" ", tileGap))
			}
			tiles = append(tiles, m.theme.RenderCategoryTile(groups[i], f.GroupCount(groups[i]), tileWidth, i == f.GridCursor()))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}

	// Scroll so the highlighted row stays visible.
	visible := m.bodyHeight() / tileHeight
	if visible < 1 {
		visible = 1
	}
	first := 0
	if cursorRow := f.GridCursor() / cols; cursorRow >= visible {
		first = cursorRow - visible + 1
	}
	last := first + visible
	if last > len(rows) {
		last = len(rows)
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows[first:last]...)
	return lipgloss.NewStyle().PaddingLeft(1).Render(grid)
}

// renderViewer draws the instruction card for detail and carousel screens.
func (m Model) renderViewer() string {
	f := m.flow
	in, ok := f.Current()
	if !ok {
		return ""
	}

	accent := m.theme.CategoryColor(in.Category)
	titleStyle := m.theme.Renderer.NewStyle().Foreground(accent).Bold(true)

	lines := []string{"", titleStyle.Render(in.Title)}
	if m.cfg.ShowBackground() && in.Background != "" {
		lines = append(lines, m.theme.MutedText.Render("background: "+in.Background))
	}

	step, _ := f.CurrentStep()
	heading := m.theme.PrimaryBold.Render(fmt.Sprintf("Step %d", f.StepIndex()+1))
	card := CardStyle.
		BorderForeground(accent).
		Width(wrapWidth(m.cfg, m.width) + 4).
		Render(m.renderer.Render(export.LiteralMarkdown(step)))
	lines = append(lines, "", heading, card, "")

	dots := m.paginator.View() + "  " + m.theme.SecondaryText.Render(f.StepLabel())
	lines = append(lines, dots)

	return lipgloss.NewStyle().PaddingLeft(SpaceSM).Render(strings.Join(lines, "\n"))
}

// Screen returns the screen being shown.
func (m Model) Screen() nav.Screen {
	return m.flow.Screen()
}

// Flow exposes the navigation state.
func (m Model) Flow() *nav.Flow {
	return m.flow
}

// StatusMessage returns the footer message and whether it is an error.
func (m Model) StatusMessage() (string, bool) {
	return m.statusMsg, m.statusIsError
}

// FilterState returns the list search state.
func (m Model) FilterState() list.FilterState {
	return m.list.FilterState()
}
