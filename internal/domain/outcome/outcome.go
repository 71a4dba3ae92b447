// Package outcome classifies plate appearances into scorecard notation.
package outcome

import (
	"strconv"

	"github.com/okian/scorebook/internal/domain/fielders"
	"github.com/okian/scorebook/internal/domain/model"
)

// Strikeout glyphs. The looking glyph is a reversed K.
const (
	GlyphStrikeoutSwinging = "K"
	GlyphStrikeoutLooking  = "Ʞ"
	// UnknownNotation marks a plate appearance that could not be classified.
	UnknownNotation = "?"
)

// doublePlayFielderCap bounds the fielders printed for DP and GIDP.
const doublePlayFielderCap = 3

// Kind tags the Outcome variant.
type Kind int

// Outcome variants.
const (
	KindUnknown Kind = iota
	KindHit
	KindWalk
	KindIntentionalWalk
	KindHitByPitch
	KindStrikeoutLooking
	KindStrikeoutSwinging
	KindBalk
	KindWildPitch
	KindPassedBall
	KindCatcherInterference
	KindGroundOut
	KindFlyOut
	KindLineOut
	KindPopOut
	KindSacFly
	KindSacBunt
	KindForceOut
	KindFieldersChoice
	KindDoublePlay
	KindGroundedIntoDoublePlay
	KindReachedOnError
	KindHitWithAdvancementOut
	KindTriplePlay
)

var kindNames = map[Kind]string{
	KindUnknown:                "unknown",
	KindHit:                    "hit",
	KindWalk:                   "walk",
	KindIntentionalWalk:        "intentional_walk",
	KindHitByPitch:             "hit_by_pitch",
	KindStrikeoutLooking:       "strikeout_looking",
	KindStrikeoutSwinging:      "strikeout_swinging",
	KindBalk:                   "balk",
	KindWildPitch:              "wild_pitch",
	KindPassedBall:             "passed_ball",
	KindCatcherInterference:    "catcher_interference",
	KindGroundOut:              "ground_out",
	KindFlyOut:                 "fly_out",
	KindLineOut:                "line_out",
	KindPopOut:                 "pop_out",
	KindSacFly:                 "sac_fly",
	KindSacBunt:                "sac_bunt",
	KindForceOut:               "force_out",
	KindFieldersChoice:         "fielders_choice",
	KindDoublePlay:             "double_play",
	KindGroundedIntoDoublePlay: "grounded_into_double_play",
	KindReachedOnError:         "reached_on_error",
	KindHitWithAdvancementOut:  "hit_with_advancement_out",
	KindTriplePlay:             "triple_play",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// HitKind is the number of bases a hit is worth.
type HitKind int

// Hit kinds.
const (
	Single HitKind = iota + 1
	Double
	Triple
	HomeRun
)

func (h HitKind) String() string {
	switch h {
	case Single:
		return "1B"
	case Double:
		return "2B"
	case Triple:
		return "3B"
	case HomeRun:
		return "HR"
	default:
		return ""
	}
}

// Bases returns the base the batter stands on after the hit (Home for HR).
func (h HitKind) Bases() model.Base { return model.Base(h) }

// ErrorKind annotates a reached-on-error outcome.
type ErrorKind int

// Error annotations.
const (
	ErrorUnspecified ErrorKind = iota
	ErrorThrowing
	ErrorFielding
)

func (e ErrorKind) suffix() string {
	switch e {
	case ErrorThrowing:
		return "T"
	case ErrorFielding:
		return "F"
	default:
		return ""
	}
}

// Outcome is the tagged result of one plate appearance. Only the fields
// relevant to Kind are populated.
type Outcome struct {
	Kind     Kind
	Hit      HitKind
	Fielders fielders.Sequence
	Position fielders.Position
	Error    ErrorKind
	RawText  string
}

// Hit builds a clean hit worth k bases.
func Hit(k HitKind) Outcome { return Outcome{Kind: KindHit, Hit: k} }

// Walk builds a base on balls.
func Walk() Outcome { return Outcome{Kind: KindWalk} }

// IntentionalWalk builds an intentional base on balls.
func IntentionalWalk() Outcome { return Outcome{Kind: KindIntentionalWalk} }

// HitByPitch builds a hit batsman.
func HitByPitch() Outcome { return Outcome{Kind: KindHitByPitch} }

// StrikeoutLooking builds a called third strike.
func StrikeoutLooking() Outcome { return Outcome{Kind: KindStrikeoutLooking} }

// StrikeoutSwinging builds a swinging third strike.
func StrikeoutSwinging() Outcome { return Outcome{Kind: KindStrikeoutSwinging} }

// Balk builds a balk.
func Balk() Outcome { return Outcome{Kind: KindBalk} }

// WildPitch builds a wild pitch.
func WildPitch() Outcome { return Outcome{Kind: KindWildPitch} }

// PassedBall builds a passed ball.
func PassedBall() Outcome { return Outcome{Kind: KindPassedBall} }

// CatcherInterference builds catcher's interference.
func CatcherInterference() Outcome { return Outcome{Kind: KindCatcherInterference} }

// Unknown builds an unclassified outcome that keeps the original text.
func Unknown(raw string) Outcome { return Outcome{Kind: KindUnknown, RawText: raw} }

// Fielded builds a variant carried by a fielder sequence (ground outs,
// force outs, fielder's choices, double and triple plays, sacrifice bunts).
func Fielded(k Kind, seq fielders.Sequence) Outcome {
	return Outcome{Kind: k, Fielders: seq}
}

// Air builds a fly, line, pop or sacrifice-fly out caught at pos (0 if unknown).
func Air(k Kind, pos fielders.Position) Outcome {
	return Outcome{Kind: k, Position: pos}
}

// ReachedOnError builds an error outcome.
func ReachedOnError(seq fielders.Sequence, e ErrorKind) Outcome {
	return Outcome{Kind: KindReachedOnError, Fielders: seq, Error: e}
}

// HitWithAdvancementOut is a hit on which the batter was put out trying to
// take an extra base.
func HitWithAdvancementOut(k HitKind, putout fielders.Sequence) Outcome {
	return Outcome{Kind: KindHitWithAdvancementOut, Hit: k, Fielders: putout}
}

// Notation renders the outcome in scorecard shorthand.
func (o Outcome) Notation() string {
	switch o.Kind {
	case KindHit:
		return o.Hit.String()
	case KindWalk:
		return "BB"
	case KindIntentionalWalk:
		return "IBB"
	case KindHitByPitch:
		return "HBP"
	case KindStrikeoutLooking:
		return GlyphStrikeoutLooking
	case KindStrikeoutSwinging:
		return GlyphStrikeoutSwinging
	case KindBalk:
		return "BK"
	case KindWildPitch:
		return "WP"
	case KindPassedBall:
		return "PB"
	case KindCatcherInterference:
		return "CI"
	case KindGroundOut:
		return fieldedNotation("GO", o.Fielders, 0)
	case KindForceOut:
		return fieldedNotation("FO", o.Fielders, 0)
	case KindFieldersChoice:
		return fieldedNotation("FC", o.Fielders, 0)
	case KindSacBunt:
		return fieldedNotation("SH", o.Fielders, 0)
	case KindDoublePlay:
		return fieldedNotation("DP", o.Fielders, doublePlayFielderCap)
	case KindGroundedIntoDoublePlay:
		return fieldedNotation("GIDP", o.Fielders, doublePlayFielderCap)
	case KindTriplePlay:
		return fieldedNotation("TP", o.Fielders, 0)
	case KindFlyOut:
		return airNotation("F", o.Position)
	case KindLineOut:
		return airNotation("L", o.Position)
	case KindPopOut:
		return airNotation("P", o.Position)
	case KindSacFly:
		return airNotation("SF", o.Position)
	case KindReachedOnError:
		return errorNotation(o.Fielders) + o.Error.suffix()
	case KindHitWithAdvancementOut:
		if len(o.Fielders) == 0 {
			return o.Hit.String()
		}
		return o.Hit.String() + "/" + o.Fielders.Join()
	default:
		return UnknownNotation
	}
}

func (o Outcome) String() string { return o.Notation() }

// IsHit reports any hit, including a hit whose batter was later put out.
func (o Outcome) IsHit() bool {
	return o.Kind == KindHit || o.Kind == KindHitWithAdvancementOut
}

// IsHomeRun reports a home run.
func (o Outcome) IsHomeRun() bool { return o.IsHit() && o.Hit == HomeRun }

// IsStrikeout reports either strikeout glyph.
func (o Outcome) IsStrikeout() bool {
	return o.Kind == KindStrikeoutLooking || o.Kind == KindStrikeoutSwinging
}

// IsWalk reports a base on balls, intentional or not.
func (o Outcome) IsWalk() bool {
	return o.Kind == KindWalk || o.Kind == KindIntentionalWalk
}

// IsError reports a reached-on-error outcome.
func (o Outcome) IsError() bool { return o.Kind == KindReachedOnError }

// Unearned reports outcomes after which the batter's run, if scored, is not
// charged as earned.
func (o Outcome) Unearned() bool {
	switch o.Kind {
	case KindReachedOnError, KindFieldersChoice, KindCatcherInterference,
		KindWildPitch, KindPassedBall:
		return true
	}
	return false
}

// fieldedNotation formats code by fielder count: none -> bare code, one ->
// code+digit+"U", more -> code+hyphen-joined digits (capped when limit > 0).
func fieldedNotation(code string, seq fielders.Sequence, limit int) string {
	switch len(seq) {
	case 0:
		return code
	case 1:
		return code + seq.Join() + "U"
	default:
		if limit > 0 {
			seq = seq.Limit(limit)
		}
		return code + seq.Join()
	}
}

func errorNotation(seq fielders.Sequence) string {
	if len(seq) == 0 {
		return "E"
	}
	return "E" + seq.Join()
}

func airNotation(code string, pos fielders.Position) string {
	if pos == 0 {
		return code
	}
	return code + strconv.Itoa(int(pos))
}
