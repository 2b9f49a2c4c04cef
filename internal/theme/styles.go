package theme

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a theme is built from.
type Palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	AccentText lipgloss.Color
	Danger     lipgloss.Color
	Border     lipgloss.Color
	Selected   lipgloss.Color
}

var palettes = map[Theme]Palette{
	Light: {
		Background: lipgloss.Color("#FFF8E7"),
		Surface:    lipgloss.Color("#FFFFFF"),
		Text:       lipgloss.Color("#1F1B2E"),
		Muted:      lipgloss.Color("#6B6780"),
		Accent:     lipgloss.Color("#7C3AED"),
		AccentText: lipgloss.Color("#FFFFFF"),
		Danger:     lipgloss.Color("#D7263D"),
		Border:     lipgloss.Color("#1F1B2E"),
		Selected:   lipgloss.Color("#FDE68A"),
	},
	Dark: {
		Background: lipgloss.Color("#14121F"),
		Surface:    lipgloss.Color("#1E1B2E"),
		Text:       lipgloss.Color("#F4F1FF"),
		Muted:      lipgloss.Color("#9C97B5"),
		Accent:     lipgloss.Color("#22D3EE"),
		AccentText: lipgloss.Color("#14121F"),
		Danger:     lipgloss.Color("#FF5C7A"),
		Border:     lipgloss.Color("#22D3EE"),
		Selected:   lipgloss.Color("#3B3363"),
	},
}

// PaletteFor returns the palette of t, or the default palette for unknown themes.
func PaletteFor(t Theme) Palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[Default]
}

// Styles is the style sheet the TUI renders with.
type Styles struct {
	Theme Theme

	App         lipgloss.Style
	Header      lipgloss.Style
	Title       lipgloss.Style
	ThemeToggle lipgloss.Style
	Card        lipgloss.Style
	Input       lipgloss.Style
	Button      lipgloss.Style
	ButtonBusy  lipgloss.Style
	Banner      lipgloss.Style
	ListTitle   lipgloss.Style
	Item        lipgloss.Style
	ItemCursor  lipgloss.Style
	Delete      lipgloss.Style
	Empty       lipgloss.Style
	Loading     lipgloss.Style
	Footer      lipgloss.Style
}

// NewStyles builds the style sheet for t.
func NewStyles(t Theme) Styles {
	p := PaletteFor(t)
	card := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(p.Border).
		Background(p.Surface).
		Foreground(p.Text).
		Padding(0, 1)

	return Styles{
		Theme: t,
		App: lipgloss.NewStyle().
			Background(p.Background).
			Foreground(p.Text).
			Padding(1, 2),
		Header: lipgloss.NewStyle().
			MarginBottom(1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),
		ThemeToggle: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginLeft(2),
		Card: card,
		Input: lipgloss.NewStyle().
			Foreground(p.Text),
		Button: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.AccentText).
			Background(p.Accent).
			Padding(0, 1),
		ButtonBusy: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Danger),
		ListTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),
		Item: lipgloss.NewStyle().
			Foreground(p.Text),
		ItemCursor: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Selected).
			Bold(true),
		Delete: lipgloss.NewStyle().
			Foreground(p.Danger),
		Empty: lipgloss.NewStyle().
			Italic(true).
			Foreground(p.Muted),
		Loading: lipgloss.NewStyle().
			Foreground(p.Accent),
		Footer: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginTop(1),
	}
}
