package view

import "github.com/gdamore/tcell/v2"

// Theme holds the styles used by the viewer.
type Theme struct {
	Text         tcell.Style
	Markup       tcell.Style
	Heading      tcell.Style
	Quote        tcell.Style
	Code         tcell.Style
	Match        tcell.Style
	CurrentMatch tcell.Style
	Panel        tcell.Style
	PanelLabel   tcell.Style
	ToggleOn     tcell.Style
	ToggleOff    tcell.Style
	Status       tcell.Style
	StatusError  tcell.Style
}

// DefaultTheme returns the default color scheme.
func DefaultTheme() Theme {
	base := tcell.StyleDefault
	return Theme{
		Text:         base,
		Markup:       base.Foreground(tcell.ColorLightSlateGray),
		Heading:      base.Foreground(tcell.Color33).Bold(true),
		Quote:        base.Foreground(tcell.Color252).Italic(true),
		Code:         base.Foreground(tcell.Color252).Background(tcell.Color234), // fenced code
		Match:        base.Foreground(tcell.ColorBlack).Background(tcell.Color228),
		CurrentMatch: base.Foreground(tcell.ColorWhite).Background(tcell.Color202).Bold(true),
		Panel:        base.Background(tcell.Color236).Foreground(tcell.Color252),
		PanelLabel:   base.Background(tcell.Color236).Foreground(tcell.Color44),
		ToggleOn:     base.Background(tcell.Color33).Foreground(tcell.ColorWhite),
		ToggleOff:    base.Background(tcell.Color236).Foreground(tcell.ColorLightSlateGray),
		Status:       base.Reverse(true),
		StatusError:  base.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite),
	}
}
