// Package basepath works out how far each batter got around the bases within
// a half-inning, using the occupancy and score snapshots of later records.
package basepath

import (
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
)

// Bases is a set of bases reached; Home means the batter scored.
type Bases uint8

// Has reports whether b is in the set.
func (s Bases) Has(b model.Base) bool {
	return valid(b) && s&(1<<uint(b-1)) != 0
}

// Add returns the set with b included.
func (s Bases) Add(b model.Base) Bases {
	if !valid(b) {
		return s
	}
	return s | 1<<uint(b-1)
}

// Through returns the set with every base from..to included.
func (s Bases) Through(from, to model.Base) Bases {
	for b := from; b <= to; b++ {
		s = s.Add(b)
	}
	return s
}

// Max returns the furthest base in the set, or 0 when empty.
func (s Bases) Max() model.Base {
	for b := model.Home; b >= model.First; b-- {
		if s.Has(b) {
			return b
		}
	}
	return 0
}

// Scored reports whether Home is in the set.
func (s Bases) Scored() bool { return s.Has(model.Home) }

// Empty reports whether no base was reached.
func (s Bases) Empty() bool { return s == 0 }

// Slice lists the bases as ints, ascending.
func (s Bases) Slice() []int {
	out := make([]int, 0, 4)
	for b := model.First; b <= model.Home; b++ {
		if s.Has(b) {
			out = append(out, int(b))
		}
	}
	return out
}

// UpTo returns {First..b}.
func UpTo(b model.Base) Bases {
	return Bases(0).Through(model.First, b)
}

func valid(b model.Base) bool { return b >= model.First && b <= model.Home }

// NameLookup resolves a player id to a display name.
type NameLookup interface {
	DisplayName(id string) (string, bool)
}

// Seed returns the bases implied by the play itself.
func Seed(o outcome.Outcome) Bases {
	if o.IsHit() {
		return UpTo(o.Hit.Bases())
	}
	switch o.Kind {
	case outcome.KindWalk, outcome.KindIntentionalWalk, outcome.KindHitByPitch,
		outcome.KindCatcherInterference, outcome.KindReachedOnError, outcome.KindFieldersChoice:
		return UpTo(model.First)
	}
	return 0
}

// FrameEnd returns the index one past the last record sharing plays[i]'s
// half-inning.
func FrameEnd(plays []model.PlateAppearance, i int) int {
	if i < 0 || i >= len(plays) {
		return i
	}
	f := plays[i].Frame()
	j := i + 1
	for j < len(plays) && plays[j].Frame() == f {
		j++
	}
	return j
}

// Reached returns the bases the batter of plays[i] reached before the
// half-inning ended. o is that record's outcome and names may be nil.
//
// Later records of the same half-inning are scanned until the batter comes
// up again. Each sighting on base widens the set up to that base. The scan
// stops once the batter drops off the bases after being seen; then, or when
// the half-inning ends with the batter still aboard, a rise in the batting
// score on the play of the last sighting counts as a run. A description
// reading "<name> scores" also counts as a run.
func Reached(plays []model.PlateAppearance, i int, o outcome.Outcome, names NameLookup) Bases {
	if i < 0 || i >= len(plays) {
		return 0
	}
	pa := &plays[i]
	reached := Seed(o)
	scores := scoresPhrase(pa.BatterID, names)
	if scoredIn(pa.Description, scores) {
		reached = toHome(reached)
	}

	lastSeen := -1
	end := FrameEnd(plays, i)
	for j := i + 1; j < end; j++ {
		next := &plays[j]
		if next.BatterID == pa.BatterID {
			break
		}
		if b := next.BaseOf(pa.BatterID); b > 0 {
			reached = reached.Through(model.First, b)
			lastSeen = j
			if scoredIn(next.Description, scores) {
				reached = toHome(reached)
			}
			continue
		}
		if lastSeen >= 0 {
			break
		}
		if scoredIn(next.Description, scores) {
			reached = toHome(reached)
		}
	}
	if lastSeen > i && plays[lastSeen].PostScoreBatting > plays[lastSeen-1].PostScoreBatting {
		reached = toHome(reached)
	}
	return reached
}

func toHome(s Bases) Bases {
	from := s.Max()
	if from < model.First {
		from = model.First
	}
	return s.Through(from, model.Home)
}

func scoresPhrase(id string, names NameLookup) string {
	if names == nil || id == "" {
		return ""
	}
	name, ok := names.DisplayName(id)
	name = strings.ToLower(strings.TrimSpace(name))
	if !ok || name == "" {
		return ""
	}
	return name + " scores"
}

func scoredIn(description, phrase string) bool {
	return phrase != "" && strings.Contains(strings.ToLower(description), phrase)
}
