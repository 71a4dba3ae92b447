// Package types contains the scorecard shapes handed to renderers and APIs.
package types

import "time"

// Scorecard is the full result of scoring one game.
type Scorecard struct {
	GameID      string    `json:"game_id"`
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
	// Innings is the grid width: the highest inning observed in the game.
	Innings  int        `json:"innings"`
	Teams    []TeamCard `json:"teams"`
	KeyPlays []KeyPlay  `json:"key_plays"`
	Plays    []PlayLine `json:"plays"`
}

// Team returns the card for team, or nil.
func (s *Scorecard) Team(team string) *TeamCard {
	for i := range s.Teams {
		if s.Teams[i].Team == team {
			return &s.Teams[i]
		}
	}
	return nil
}

// TeamCard is one side's batting grid plus the pitchers it used.
type TeamCard struct {
	Team      string        `json:"team"`
	Batters   []BatterLine  `json:"batters"`
	Pitchers  []PitcherLine `json:"pitchers"`
	LineScore []int         `json:"line_score"`
	Totals    Totals        `json:"totals"`
}

// Batter returns the line for batterID, or nil.
func (t *TeamCard) Batter(batterID string) *BatterLine {
	for i := range t.Batters {
		if t.Batters[i].BatterID == batterID {
			return &t.Batters[i]
		}
	}
	return nil
}

// Pitcher returns the line for pitcherID, or nil.
func (t *TeamCard) Pitcher(pitcherID string) *PitcherLine {
	for i := range t.Pitchers {
		if t.Pitchers[i].PitcherID == pitcherID {
			return &t.Pitchers[i]
		}
	}
	return nil
}

// BatterLine is one row of the batting grid. Cells[i] holds inning i+1;
// an empty string means the batter did not come up that inning.
type BatterLine struct {
	BatterID string   `json:"batter_id"`
	Name     string   `json:"name,omitempty"`
	Cells    []string `json:"cells"`
	PA       int      `json:"pa"`
	H        int      `json:"h"`
	BB       int      `json:"bb"`
	SO       int      `json:"so"`
}

// PitcherLine is one pitcher's reconstructed line.
type PitcherLine struct {
	PitcherID string `json:"pitcher_id"`
	Name      string `json:"name,omitempty"`
	IP        string `json:"ip"`
	Outs      int    `json:"outs"`
	ER        int    `json:"er"`
	H         int    `json:"h"`
	HR        int    `json:"hr"`
	BB        int    `json:"bb"`
	SO        int    `json:"so"`
}

// Totals are a team's runs, hits and the errors committed by its fielders.
type Totals struct {
	Runs   int `json:"r"`
	Hits   int `json:"h"`
	Errors int `json:"e"`
}

// KeyPlay is a plate appearance with a large win expectancy swing.
type KeyPlay struct {
	Sequence int     `json:"sequence"`
	Inning   int     `json:"inning"`
	Half     string  `json:"half"`
	BatterID string  `json:"batter_id"`
	Notation string  `json:"notation"`
	Delta    float64 `json:"delta"`
}

// PlayLine is the per-record classification detail.
type PlayLine struct {
	Sequence  int    `json:"sequence"`
	Inning    int    `json:"inning"`
	Half      string `json:"half"`
	Team      string `json:"team"`
	BatterID  string `json:"batter_id"`
	PitcherID string `json:"pitcher_id"`
	Kind      string `json:"kind"`
	Notation  string `json:"notation"`
	Bases     []int  `json:"bases"`
}
