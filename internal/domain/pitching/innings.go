package pitching

import (
	"fmt"

	"github.com/okian/scorebook/internal/domain/model"
)

// outsPerInning is the number of outs in a half-inning.
const outsPerInning = 3

// Innings is innings pitched as whole innings plus leftover outs. "5.2"
// means five innings and two outs, not a decimal fraction.
type Innings struct {
	Whole     int
	Remainder int
}

// InningsFromOuts converts recorded outs to innings pitched.
func InningsFromOuts(outs int) Innings {
	if outs < 0 {
		outs = 0
	}
	return Innings{Whole: outs / outsPerInning, Remainder: outs % outsPerInning}
}

// Outs converts back to recorded outs.
func (i Innings) Outs() int { return i.Whole*outsPerInning + i.Remainder }

func (i Innings) String() string { return fmt.Sprintf("%d.%d", i.Whole, i.Remainder) }

// InferOuts reconstructs the outs recorded by pitcher from the out counts
// before each of the pitcher's plate appearances. plays must be the whole
// game ordered by sequence index.
//
// Consecutive appearances contribute their positive out delta. A 2->0 drop
// is the inning-ending out. A 1->0 drop is read as an inning-ending double
// play when the very next record opens a half-inning the pitcher does not
// pitch in. After the last appearance one more out is added when the next
// record opens a new half-inning, or shows a different pitcher facing more
// outs in the same half-inning, or when the game ends with two out.
func InferOuts(plays []model.PlateAppearance, pitcher string) int {
	var idx []int
	for i := range plays {
		if plays[i].PitcherID == pitcher {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return 0
	}

	outs := 0
	for k := 1; k < len(idx); k++ {
		prev, cur := &plays[idx[k-1]], &plays[idx[k]]
		delta := cur.OutsWhenUp - prev.OutsWhenUp
		switch {
		case delta > 0:
			outs += delta
		case prev.OutsWhenUp == 2 && cur.OutsWhenUp == 0:
			outs++
		case prev.OutsWhenUp == 1 && cur.OutsWhenUp == 0:
			if closesWithDoublePlay(plays, idx[k-1], pitcher) {
				outs += 2
			}
		}
	}

	last := idx[len(idx)-1]
	lastPA := &plays[last]
	if last+1 < len(plays) {
		next := &plays[last+1]
		switch {
		case next.Frame() != lastPA.Frame():
			outs++
		case next.PitcherID != pitcher && next.OutsWhenUp > lastPA.OutsWhenUp:
			outs++
		}
	} else if lastPA.OutsWhenUp == 2 {
		outs++
	}
	return outs
}

// closesWithDoublePlay reports whether the record after plays[i] opens a new
// half-inning in which pitcher does not appear.
func closesWithDoublePlay(plays []model.PlateAppearance, i int, pitcher string) bool {
	if i+1 >= len(plays) {
		return false
	}
	next := plays[i+1].Frame()
	if next == plays[i].Frame() {
		return false
	}
	for j := i + 1; j < len(plays) && plays[j].Frame() == next; j++ {
		if plays[j].PitcherID == pitcher {
			return false
		}
	}
	return true
}
