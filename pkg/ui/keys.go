package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding of the browser. It implements help.KeyMap.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Select   key.Binding
	Back     key.Binding
	NextCard key.Binding
	PrevCard key.Binding
	First    key.Binding
	Last     key.Binding
	Copy     key.Binding
	CopyCard key.Binding
	Filter   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev step"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next step"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		NextCard: key.NewBinding(
			key.WithKeys("]", "tab"),
			key.WithHelp("]/tab", "next card"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("[", "shift+tab"),
			key.WithHelp("[/S-tab", "prev card"),
		),
		First: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first step"),
		),
		Last: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last step"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy step"),
		),
		CopyCard: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy card"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp is the one-line footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Back, k.Left, k.Right, k.Help, k.Quit}
}

// FullHelp is shown after pressing "?".
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Left, k.Right, k.First, k.Last},
		{k.NextCard, k.PrevCard, k.Copy, k.CopyCard},
		{k.Filter},
		{k.Help, k.Quit},
	}
}

// forScreen enables only the bindings that do something on s, so the help
// view never advertises a dead key.
func (k KeyMap) forScreen(s screenKeys) KeyMap {
	k.Up.SetEnabled(s.cursor || s.scroll)
	k.Down.SetEnabled(s.cursor || s.scroll)
	k.Left.SetEnabled(s.steps || s.grid)
	k.Right.SetEnabled(s.steps || s.grid)
	if s.grid {
		k.Left.SetHelp("←/h", "left")
		k.Right.SetHelp("→/l", "right")
	}
	k.Select.SetEnabled(s.cursor)
	k.Back.SetEnabled(s.back)
	k.NextCard.SetEnabled(s.carousel)
	k.PrevCard.SetEnabled(s.carousel)
	k.First.SetEnabled(s.steps)
	k.Last.SetEnabled(s.steps)
	k.Copy.SetEnabled(s.steps)
	k.CopyCard.SetEnabled(s.steps)
	k.Filter.SetEnabled(s.filter)
	return k
}

type screenKeys struct {
	cursor   bool // grid or list highlight
	grid     bool
	scroll   bool
	steps    bool
	carousel bool
	back     bool
	filter   bool
}
