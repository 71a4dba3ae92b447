package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/okian/scorebook/internal/domain/types"
)

// Text writes card as plain aligned columns without borders or escape
// codes, for pipes and logs.
func Text(w io.Writer, card *types.Scorecard) error {
	if card == nil {
		return nil
	}
	sections := []string{"Game " + card.GameID, tabulate(lineScoreRows(card))}
	for i := range card.Teams {
		t := &card.Teams[i]
		sections = append(sections,
			t.Team+"\n"+tabulate(battingRows(card.Innings, t)),
			tabulate(pitchingRows(t)),
		)
	}
	if len(card.KeyPlays) > 0 {
		sections = append(sections, "Key plays\n"+tabulate(keyPlayRows(card)))
	}
	_, err := io.WriteString(w, strings.Join(sections, "\n\n")+"\n")
	if err != nil {
		return fmt.Errorf("write scorecard: %w", err)
	}
	return nil
}

func tabulate(rows [][]string) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func lineScoreRows(card *types.Scorecard) [][]string {
	header := []string{""}
	for i := 1; i <= card.Innings; i++ {
		header = append(header, strconv.Itoa(i))
	}
	rows := [][]string{append(header, "R", "H", "E")}
	for i := range card.Teams {
		tc := &card.Teams[i]
		row := []string{tc.Team}
		for _, runs := range tc.LineScore {
			row = append(row, strconv.Itoa(runs))
		}
		rows = append(rows, append(row,
			strconv.Itoa(tc.Totals.Runs), strconv.Itoa(tc.Totals.Hits), strconv.Itoa(tc.Totals.Errors)))
	}
	return rows
}

func battingRows(innings int, tc *types.TeamCard) [][]string {
	header := []string{"Batter"}
	for i := 1; i <= innings; i++ {
		header = append(header, strconv.Itoa(i))
	}
	rows := [][]string{append(header, "PA", "H", "BB", "SO")}
	for i := range tc.Batters {
		b := &tc.Batters[i]
		row := []string{displayName(b.Name, b.BatterID)}
		for _, c := range b.Cells {
			if c == "" {
				c = emptyCell
			}
			row = append(row, c)
		}
		rows = append(rows, append(row,
			strconv.Itoa(b.PA), strconv.Itoa(b.H), strconv.Itoa(b.BB), strconv.Itoa(b.SO)))
	}
	return rows
}

func pitchingRows(tc *types.TeamCard) [][]string {
	rows := [][]string{{"Pitcher", "IP", "H", "ER", "HR", "BB", "SO"}}
	for i := range tc.Pitchers {
		p := &tc.Pitchers[i]
		rows = append(rows, []string{
			displayName(p.Name, p.PitcherID), p.IP,
			strconv.Itoa(p.H), strconv.Itoa(p.ER), strconv.Itoa(p.HR),
			strconv.Itoa(p.BB), strconv.Itoa(p.SO),
		})
	}
	return rows
}

func keyPlayRows(card *types.Scorecard) [][]string {
	rows := [][]string{{"#", "Inning", "Batter", "Play", "ΔWE"}}
	for _, kp := range card.KeyPlays {
		rows = append(rows, []string{
			strconv.Itoa(kp.Sequence), inningLabel(kp.Inning, kp.Half),
			batterName(card, kp.BatterID), kp.Notation, fmt.Sprintf("%+.3f", kp.Delta),
		})
	}
	return rows
}

// batterName finds id's display name on either team's grid.
func batterName(card *types.Scorecard, id string) string {
	for i := range card.Teams {
		if b := card.Teams[i].Batter(id); b != nil {
			return displayName(b.Name, id)
		}
	}
	return id
}
