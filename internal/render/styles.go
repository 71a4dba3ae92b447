package render

import "github.com/charmbracelet/lipgloss"

// Colors used by the default styles.
var (
	ColorAccent = lipgloss.Color("86")
	ColorDim    = lipgloss.Color("242")
	ColorHit    = lipgloss.Color("114")
	ColorOut    = lipgloss.Color("252")
	ColorAlert  = lipgloss.Color("203")
)

// Styles holds the Lip Gloss styles of a rendered scorecard.
type Styles struct {
	Title  lipgloss.Style
	Team   lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Border lipgloss.Style

	// Cell accents by outcome.
	Hit     lipgloss.Style
	Unknown lipgloss.Style
	Empty   lipgloss.Style
}

// DefaultStyles returns the colored terminal look.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).MarginBottom(1),
		Team:    lipgloss.NewStyle().Bold(true).Underline(true),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1),
		Cell:    lipgloss.NewStyle().Foreground(ColorOut).Padding(0, 1),
		Border:  lipgloss.NewStyle().Foreground(ColorDim),
		Hit:     lipgloss.NewStyle().Foreground(ColorHit).Padding(0, 1),
		Unknown: lipgloss.NewStyle().Foreground(ColorAlert).Padding(0, 1),
		Empty:   lipgloss.NewStyle().Foreground(ColorDim).Padding(0, 1),
	}
}

// PlainStyles returns styles that add no escape codes; cells keep their
// one-space padding.
func PlainStyles() Styles {
	pad := lipgloss.NewStyle().Padding(0, 1)
	return Styles{
		Title:   lipgloss.NewStyle(),
		Team:    lipgloss.NewStyle(),
		Header:  pad,
		Cell:    pad,
		Border:  lipgloss.NewStyle(),
		Hit:     pad,
		Unknown: pad,
		Empty:   pad,
	}
}
