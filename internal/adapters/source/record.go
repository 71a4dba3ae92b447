// Package source acquires play-by-play logs: it decodes the service's JSON
// wire format and Baseball Savant CSV exports, fetches games remotely, and
// validates ordering before anything reaches the scorer.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/okian/scorebook/internal/domain/model"
)

// Record is one plate appearance in the JSON wire format.
type Record struct {
	Inning int    `json:"inning"`
	Half   string `json:"half"`
	// InningLabel is used when Inning or Half is missing ("top of the 3rd", "b7").
	InningLabel  string `json:"inning_label,omitempty"`
	BattingTeam  string `json:"batting_team,omitempty"`
	FieldingTeam string `json:"fielding_team,omitempty"`

	BatterID    string `json:"batter_id"`
	BatterName  string `json:"batter_name,omitempty"`
	PitcherID   string `json:"pitcher_id"`
	PitcherName string `json:"pitcher_name,omitempty"`

	EventCode   string `json:"event_code,omitempty"`
	Description string `json:"description,omitempty"`

	OutsWhenUp int    `json:"outs_when_up"`
	On1B       string `json:"on_1b,omitempty"`
	On2B       string `json:"on_2b,omitempty"`
	On3B       string `json:"on_3b,omitempty"`

	PostScoreBatting  int `json:"post_score_batting"`
	PostScoreFielding int `json:"post_score_fielding"`

	WinExpDelta   float64 `json:"win_exp_delta,omitempty"`
	SequenceIndex int     `json:"sequence_index"`
}

// Game is a JSON game submission.
type Game struct {
	GameID string   `json:"game_id"`
	Plays  []Record `json:"plays"`
}

// PlateAppearance converts r to the domain record. An unparseable inning
// label leaves Inning and Half as given; Validate reports the problem.
func (r *Record) PlateAppearance() model.PlateAppearance {
	inning, half := r.Inning, parseHalf(r.Half)
	if (inning == 0 || !half.Valid()) && r.InningLabel != "" {
		if n, h, err := ParseInning(r.InningLabel); err == nil {
			inning, half = n, h
		}
	}
	return model.PlateAppearance{
		Inning:            inning,
		Half:              half,
		BattingTeam:       r.BattingTeam,
		FieldingTeam:      r.FieldingTeam,
		BatterID:          r.BatterID,
		PitcherID:         r.PitcherID,
		EventCode:         model.ParseEventCode(r.EventCode),
		Description:       r.Description,
		OutsWhenUp:        r.OutsWhenUp,
		OnBase:            [3]string{r.On1B, r.On2B, r.On3B},
		PostScoreBatting:  r.PostScoreBatting,
		PostScoreFielding: r.PostScoreFielding,
		WinExpDelta:       r.WinExpDelta,
		SequenceIndex:     r.SequenceIndex,
	}
}

// Log converts g to a game log, collecting any names carried by the records.
func (g *Game) Log() model.GameLog {
	log := model.GameLog{
		GameID: g.GameID,
		Plays:  make([]model.PlateAppearance, len(g.Plays)),
	}
	for i := range g.Plays {
		r := &g.Plays[i]
		log.Plays[i] = r.PlateAppearance()
		addName(&log, r.BatterID, r.BatterName)
		addName(&log, r.PitcherID, r.PitcherName)
	}
	return log
}

// NewGame converts log to the JSON wire format, the inverse of Game.Log.
func NewGame(log model.GameLog) Game {
	g := Game{GameID: log.GameID, Plays: make([]Record, len(log.Plays))}
	for i := range log.Plays {
		p := &log.Plays[i]
		g.Plays[i] = Record{
			Inning:            p.Inning,
			Half:              p.Half.String(),
			BattingTeam:       p.BattingTeam,
			FieldingTeam:      p.FieldingTeam,
			BatterID:          p.BatterID,
			BatterName:        log.Names[p.BatterID],
			PitcherID:         p.PitcherID,
			PitcherName:       log.Names[p.PitcherID],
			EventCode:         string(p.EventCode),
			Description:       p.Description,
			OutsWhenUp:        p.OutsWhenUp,
			On1B:              p.Runner(model.First),
			On2B:              p.Runner(model.Second),
			On3B:              p.Runner(model.Third),
			PostScoreBatting:  p.PostScoreBatting,
			PostScoreFielding: p.PostScoreFielding,
			WinExpDelta:       p.WinExpDelta,
			SequenceIndex:     p.SequenceIndex,
		}
	}
	return g
}

func addName(log *model.GameLog, id, name string) {
	if id == "" || name == "" {
		return
	}
	if log.Names == nil {
		log.Names = make(map[string]string)
	}
	log.Names[id] = name
}

// DecodeJSON reads either a bare array of records or a {game_id, plays}
// object.
func DecodeJSON(r io.Reader) (model.GameLog, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return model.GameLog{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var g Game
	dec := json.NewDecoder(br)
	dec.DisallowUnknownFields()
	if first == '[' {
		err = dec.Decode(&g.Plays)
	} else {
		err = dec.Decode(&g)
	}
	if err != nil {
		return model.GameLog{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return g.Log(), nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			return b, br.UnreadByte()
		}
	}
}

// Validate fails on the first record that the scorer cannot rely on:
// sequence indexes must strictly increase, outs must be 0..2, innings
// positive, halves known, and batter and pitcher ids present.
func Validate(plays []model.PlateAppearance) error {
	for i := range plays {
		p := &plays[i]
		switch {
		case i > 0 && p.SequenceIndex <= plays[i-1].SequenceIndex:
			return fmt.Errorf("%w: record %d has sequence %d after %d",
				ErrOutOfOrder, i, p.SequenceIndex, plays[i-1].SequenceIndex)
		case p.OutsWhenUp < 0 || p.OutsWhenUp > 2:
			return invalid(i, p, fmt.Sprintf("outs_when_up %d outside 0..2", p.OutsWhenUp))
		case p.Inning < 1:
			return invalid(i, p, fmt.Sprintf("inning %d", p.Inning))
		case !p.Half.Valid():
			return invalid(i, p, "unknown half")
		case p.BatterID == "":
			return invalid(i, p, "missing batter id")
		case p.PitcherID == "":
			return invalid(i, p, "missing pitcher id")
		}
	}
	return nil
}

func invalid(i int, p *model.PlateAppearance, why string) error {
	return fmt.Errorf("%w: record %d (sequence %d): %s", ErrInvalidRecord, i, p.SequenceIndex, why)
}

// Normalize returns a copy of plays sorted by sequence index and renumbered
// from 1. Records sharing an index keep their input order.
func Normalize(plays []model.PlateAppearance) []model.PlateAppearance {
	out := make([]model.PlateAppearance, len(plays))
	copy(out, plays)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SequenceIndex < out[j].SequenceIndex
	})
	for i := range out {
		out[i].SequenceIndex = i + 1
	}
	return out
}
