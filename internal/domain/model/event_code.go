package model

import "strings"

// EventCode is the canonical result tag attached to a plate appearance by the
// source feed. Values follow the Statcast "events" vocabulary.
type EventCode string

// Known event codes.
const (
	EventNone                   EventCode = ""
	EventSingle                 EventCode = "single"
	EventDouble                 EventCode = "double"
	EventTriple                 EventCode = "triple"
	EventHomeRun                EventCode = "home_run"
	EventWalk                   EventCode = "walk"
	EventIntentWalk             EventCode = "intent_walk"
	EventHitByPitch             EventCode = "hit_by_pitch"
	EventCatcherInterf          EventCode = "catcher_interf"
	EventStrikeout              EventCode = "strikeout"
	EventStrikeoutDoublePlay    EventCode = "strikeout_double_play"
	EventFieldOut               EventCode = "field_out"
	EventForceOut               EventCode = "force_out"
	EventFieldersChoice         EventCode = "fielders_choice"
	EventFieldersChoiceOut      EventCode = "fielders_choice_out"
	EventDoublePlay             EventCode = "double_play"
	EventGroundedIntoDoublePlay EventCode = "grounded_into_double_play"
	EventTriplePlay             EventCode = "triple_play"
	EventFieldError             EventCode = "field_error"
	EventSacFly                 EventCode = "sac_fly"
	EventSacFlyDoublePlay       EventCode = "sac_fly_double_play"
	EventSacBunt                EventCode = "sac_bunt"
)

var knownEvents = map[EventCode]struct{}{
	EventSingle: {}, EventDouble: {}, EventTriple: {}, EventHomeRun: {},
	EventWalk: {}, EventIntentWalk: {}, EventHitByPitch: {}, EventCatcherInterf: {},
	EventStrikeout: {}, EventStrikeoutDoublePlay: {},
	EventFieldOut: {}, EventForceOut: {}, EventFieldersChoice: {}, EventFieldersChoiceOut: {},
	EventDoublePlay: {}, EventGroundedIntoDoublePlay: {}, EventTriplePlay: {},
	EventFieldError: {}, EventSacFly: {}, EventSacFlyDoublePlay: {}, EventSacBunt: {},
}

// ParseEventCode normalizes a raw tag ("Home Run", "home_run", " FIELD_ERROR ").
// Unrecognized tags are returned normalized but Known reports false.
func ParseEventCode(raw string) EventCode {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return EventCode(s)
}

// Known reports whether c is part of the recognized vocabulary.
func (c EventCode) Known() bool {
	_, ok := knownEvents[c]
	return ok
}
