// Package pitching reconstructs per-pitcher lines from a play-by-play log:
// runner responsibility, earned runs, counting stats and innings pitched.
package pitching

import (
	"github.com/okian/scorebook/internal/domain/basepath"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
)

// Stat is one pitcher's line for a game.
type Stat struct {
	PitcherID    string
	Team         string
	OutsRecorded int
	EarnedRuns   int
	Hits         int
	HomeRuns     int
	Walks        int
	Strikeouts   int
}

// Innings returns the innings-pitched display value for the recorded outs.
func (s Stat) Innings() Innings { return InningsFromOuts(s.OutsRecorded) }

// Ledger holds runner responsibility for the current half-inning and the
// stat lines of every pitcher seen. One Ledger serves exactly one game.
type Ledger struct {
	frame       model.Frame
	started     bool
	responsible map[string]string
	stats       map[string]*Stat
	order       []string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		responsible: make(map[string]string),
		stats:       make(map[string]*Stat),
	}
}

// Advance moves the ledger to f, clearing runner responsibility when the
// half-inning changes.
func (l *Ledger) Advance(f model.Frame) {
	if l.started && f == l.frame {
		return
	}
	l.frame = f
	l.started = true
	clear(l.responsible)
}

// Apply folds one plate appearance into the ledger. o is the record's
// outcome and reached the bases its batter reached.
func (l *Ledger) Apply(pa *model.PlateAppearance, o outcome.Outcome, reached basepath.Bases) {
	l.Advance(pa.Frame())

	st := l.stat(pa.PitcherID, pa.FieldingTeam)
	switch {
	case o.IsStrikeout():
		st.Strikeouts++
	case o.IsWalk():
		st.Walks++
	case o.IsHit():
		st.Hits++
		if o.IsHomeRun() {
			st.HomeRuns++
		}
	}

	if !reached.Empty() {
		l.assign(pa.BatterID, pa.PitcherID)
	}
	for _, runner := range pa.OnBase {
		l.assign(runner, pa.PitcherID)
	}

	if !reached.Scored() {
		return
	}
	pitcher, ok := l.responsible[pa.BatterID]
	if !ok {
		return
	}
	if !o.Unearned() {
		l.stat(pitcher, "").EarnedRuns++
	}
	delete(l.responsible, pa.BatterID)
}

func (l *Ledger) assign(runner, pitcher string) {
	if runner == "" {
		return
	}
	if _, ok := l.responsible[runner]; !ok {
		l.responsible[runner] = pitcher
	}
}

func (l *Ledger) stat(pitcher, team string) *Stat {
	st, ok := l.stats[pitcher]
	if !ok {
		st = &Stat{PitcherID: pitcher}
		l.stats[pitcher] = st
		l.order = append(l.order, pitcher)
	}
	if st.Team == "" {
		st.Team = team
	}
	return st
}

// Responsible returns the pitcher charged with runner, if any.
func (l *Ledger) Responsible(runner string) (string, bool) {
	p, ok := l.responsible[runner]
	return p, ok
}

// Len returns the number of runners currently tracked.
func (l *Ledger) Len() int { return len(l.responsible) }

// Stat returns a copy of one pitcher's line.
func (l *Ledger) Stat(pitcher string) (Stat, bool) {
	st, ok := l.stats[pitcher]
	if !ok {
		return Stat{}, false
	}
	return *st, true
}

// Stats returns copies of every line in order of first appearance.
func (l *Ledger) Stats() []Stat {
	out := make([]Stat, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.stats[id])
	}
	return out
}

// SetOuts records the inferred outs for pitcher.
func (l *Ledger) SetOuts(pitcher string, outs int) {
	if st, ok := l.stats[pitcher]; ok {
		st.OutsRecorded = outs
	}
}
