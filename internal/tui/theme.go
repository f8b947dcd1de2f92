package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rezmoss/focuscli/internal/settings"
)

// Palette is a theme's colour set.
type Palette struct {
	BG         lipgloss.Color
	FG         lipgloss.Color
	BGAlt      lipgloss.Color
	FGAlt      lipgloss.Color
	Accent     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	GreenDark  lipgloss.Color
	OrangeDark lipgloss.Color
}

var palettes = map[string]Palette{
	settings.ThemeLight: {
		BG: "#F5F5F5", FG: "#212121", BGAlt: "#FFFFFF", FGAlt: "#616161",
		Accent: "#2196F3", Success: "#4CAF50", Warning: "#FFC107", Error: "#F44336",
		GreenDark: "#27AE60", OrangeDark: "#E67E22",
	},
	settings.ThemeDark: {
		BG: "#212121", FG: "#FFFFFF", BGAlt: "#424242", FGAlt: "#BDBDBD",
		Accent: "#448AFF", Success: "#66BB6A", Warning: "#FFEE58", Error: "#EF5350",
		GreenDark: "#66BB6A", OrangeDark: "#FFA726",
	},
}

// ResolveTheme maps a settings theme to a concrete palette name. "auto"
// asks the terminal for its background colour.
func ResolveTheme(name string, out *termenv.Output) string {
	switch name {
	case settings.ThemeLight, settings.ThemeDark:
		return name
	case settings.ThemeAuto:
		if out != nil && out.HasDarkBackground() {
			return settings.ThemeDark
		}
	}
	return settings.ThemeLight
}

// PaletteFor returns the palette for a resolved theme name, light by default.
func PaletteFor(name string) Palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes[settings.ThemeLight]
}

type styles struct {
	palette  Palette
	header   lipgloss.Style
	heading  lipgloss.Style
	normal   lipgloss.Style
	subtle   lipgloss.Style
	quote    lipgloss.Style
	running  lipgloss.Style
	obstacle lipgloss.Style
	warning  lipgloss.Style
	success  lipgloss.Style
	errText  lipgloss.Style
	accent   lipgloss.Style
	starOn   lipgloss.Style
	starOff  lipgloss.Style
	box      lipgloss.Style
	input    lipgloss.Style
}

func newStyles(p Palette) styles {
	return styles{
		palette: p,
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(p.Accent).
			Padding(0, 1).
			MarginBottom(1),
		heading:  lipgloss.NewStyle().Bold(true).Foreground(p.FG),
		normal:   lipgloss.NewStyle().Foreground(p.FG),
		subtle:   lipgloss.NewStyle().Foreground(p.FGAlt),
		quote:    lipgloss.NewStyle().Italic(true).Foreground(p.FGAlt),
		running:  lipgloss.NewStyle().Bold(true).Foreground(p.GreenDark),
		obstacle: lipgloss.NewStyle().Bold(true).Foreground(p.OrangeDark),
		warning:  lipgloss.NewStyle().Foreground(p.Warning),
		success:  lipgloss.NewStyle().Bold(true).Foreground(p.Success),
		errText:  lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		accent:   lipgloss.NewStyle().Foreground(p.Accent),
		starOn:   lipgloss.NewStyle().Foreground(p.Warning),
		starOff:  lipgloss.NewStyle().Foreground(p.FG),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.FGAlt).
			Padding(0, 1),
	}
}
