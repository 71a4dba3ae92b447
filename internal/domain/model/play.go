// Package model contains domain models passed between layers.
package model

import "math"

// KeyPlayThreshold is the default win-expectancy swing that flags a key play.
const KeyPlayThreshold = 0.25

// Half identifies the top or bottom of an inning.
type Half int

// Halves of an inning.
const (
	Top Half = iota + 1
	Bottom
)

// String returns "top" or "bottom".
func (h Half) String() string {
	switch h {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Valid reports whether h is Top or Bottom.
func (h Half) Valid() bool { return h == Top || h == Bottom }

// Frame is one half-inning. Runner responsibility and base tracking are
// scoped to a frame.
type Frame struct {
	Inning int
	Half   Half
}

// Base numbers a base; Home doubles as "run scored".
type Base int

// Bases in running order.
const (
	First Base = iota + 1
	Second
	Third
	Home
)

// PlateAppearance is one at-bat as reported by the play-by-play source.
// Records are immutable and arrive ordered by SequenceIndex.
type PlateAppearance struct {
	Inning       int
	Half         Half
	BattingTeam  string
	FieldingTeam string

	BatterID  string
	PitcherID string

	// EventCode is the source's canonical result tag; empty when absent.
	EventCode EventCode
	// Description is the free-text narrative; empty when absent.
	Description string

	// OutsWhenUp is the out count before the play (0..2).
	OutsWhenUp int
	// OnBase holds runner ids on first, second and third before the play.
	OnBase [3]string

	PostScoreBatting  int
	PostScoreFielding int

	WinExpDelta   float64
	SequenceIndex int
}

// Frame returns the half-inning this record belongs to.
func (p *PlateAppearance) Frame() Frame {
	return Frame{Inning: p.Inning, Half: p.Half}
}

// Runner returns the runner id occupying b before the play, or "".
func (p *PlateAppearance) Runner(b Base) string {
	if b < First || b > Third {
		return ""
	}
	return p.OnBase[b-1]
}

// BaseOf returns the base runnerID occupies before the play, or 0.
func (p *PlateAppearance) BaseOf(runnerID string) Base {
	if runnerID == "" {
		return 0
	}
	for i, id := range p.OnBase {
		if id == runnerID {
			return Base(i + 1)
		}
	}
	return 0
}

// IsKeyPlay reports whether the win-expectancy swing reaches threshold.
func (p *PlateAppearance) IsKeyPlay(threshold float64) bool {
	return math.Abs(p.WinExpDelta) >= threshold
}

// GameLog is one game's play-by-play, ordered by SequenceIndex, plus any
// player names known when it was acquired.
type GameLog struct {
	GameID string
	Plays  []PlateAppearance
	// Names maps player ids to display names; may be nil.
	Names map[string]string
}
