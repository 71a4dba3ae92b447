// Package render draws scorecards for the terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/types"
)

// emptyCell marks an inning the batter did not come up in.
const emptyCell = "·"

// Renderer draws a scorecard as Lip Gloss tables.
type Renderer struct {
	styles Styles
	border lipgloss.Border
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyles replaces the default styles.
func WithStyles(s Styles) Option {
	return func(r *Renderer) { r.styles = s }
}

// WithBorder replaces the table border.
func WithBorder(b lipgloss.Border) Option {
	return func(r *Renderer) { r.border = b }
}

// New returns a renderer with the default styles and rounded borders.
func New(opts ...Option) *Renderer {
	r := &Renderer{styles: DefaultStyles(), border: lipgloss.RoundedBorder()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scorecard renders the line score, every team's batting grid and pitching
// lines, and the key plays.
func (r *Renderer) Scorecard(card *types.Scorecard) string {
	if card == nil {
		return ""
	}
	blocks := []string{
		r.styles.Title.Render(fmt.Sprintf("Game %s", card.GameID)),
		r.LineScore(card),
	}
	for i := range card.Teams {
		t := &card.Teams[i]
		blocks = append(blocks,
			r.styles.Team.Render(t.Team),
			r.Batting(card.Innings, t),
			r.Pitching(t),
		)
	}
	if len(card.KeyPlays) > 0 {
		blocks = append(blocks, r.styles.Team.Render("Key plays"), r.KeyPlays(card))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (r *Renderer) table(headers ...string) *table.Table {
	return table.New().
		Border(r.border).
		BorderStyle(r.styles.Border).
		Headers(headers...)
}

// LineScore renders runs per inning plus R, H and E for each team.
func (r *Renderer) LineScore(card *types.Scorecard) string {
	rows := lineScoreRows(card)
	return r.table(rows[0]...).Rows(rows[1:]...).StyleFunc(r.plain).Render()
}

func (r *Renderer) plain(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return r.styles.Header
	}
	return r.styles.Cell
}

// Batting renders the batting grid: one row per batter, one column per
// inning, then PA, H, BB and SO.
func (r *Renderer) Batting(innings int, tc *types.TeamCard) string {
	rows := battingRows(innings, tc)
	body := rows[1:]
	return r.table(rows[0]...).Rows(body...).StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return r.styles.Header
		}
		if col < 1 || col > innings || row >= len(body) {
			return r.styles.Cell
		}
		return r.cellStyle(body[row][col])
	}).Render()
}

func (r *Renderer) cellStyle(text string) lipgloss.Style {
	switch {
	case text == emptyCell:
		return r.styles.Empty
	case strings.Contains(text, outcome.UnknownNotation):
		return r.styles.Unknown
	case isHit(text):
		return r.styles.Hit
	default:
		return r.styles.Cell
	}
}

// Pitching renders the pitchers a team used, in order of appearance.
func (r *Renderer) Pitching(tc *types.TeamCard) string {
	rows := pitchingRows(tc)
	return r.table(rows[0]...).Rows(rows[1:]...).StyleFunc(r.plain).Render()
}

// KeyPlays renders the plays that swung win expectancy the most.
func (r *Renderer) KeyPlays(card *types.Scorecard) string {
	rows := keyPlayRows(card)
	return r.table(rows[0]...).Rows(rows[1:]...).StyleFunc(r.plain).Render()
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func inningLabel(inning int, half string) string {
	if strings.HasPrefix(strings.ToLower(half), "b") {
		return "▼" + strconv.Itoa(inning)
	}
	return "▲" + strconv.Itoa(inning)
}

var hitMarks = []string{"1B", "2B", "3B", "HR"}

func isHit(text string) bool {
	for _, m := range hitMarks {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
