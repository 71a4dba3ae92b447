package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/okian/scorebook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const gameJSON = `{
  "game_id": "g1",
  "plays": [
    {"inning": 1, "half": "top", "batter_id": "b1", "batter_name": "Ann Example", "pitcher_id": "p1",
     "event_code": "Single", "description": "Ann Example singles to left fielder", "outs_when_up": 0,
     "post_score_batting": 0, "sequence_index": 1},
    {"inning_label": "top of the 1st", "batter_id": "b2", "pitcher_id": "p1", "pitcher_name": "Pat",
     "event_code": "home_run", "description": "Bo homers", "outs_when_up": 0, "on_1b": "b1",
     "post_score_batting": 2, "win_exp_delta": -0.31, "sequence_index": 2}
  ]
}`

func TestDecodeJSON(t *testing.T) {
	Convey("Given a game object", t, func() {
		log, err := DecodeJSON(strings.NewReader(gameJSON))
		So(err, ShouldBeNil)

		Convey("Then records convert to plate appearances", func() {
			So(log.GameID, ShouldEqual, "g1")
			So(log.Plays, ShouldHaveLength, 2)
			So(log.Plays[0].EventCode, ShouldEqual, model.EventSingle)
			So(log.Plays[0].Half, ShouldEqual, model.Top)
			So(log.Plays[1].OnBase, ShouldResemble, [3]string{"b1", "", ""})
			So(log.Plays[1].WinExpDelta, ShouldEqual, -0.31)
		})

		Convey("Then an inning label fills a missing inning and half", func() {
			So(log.Plays[1].Inning, ShouldEqual, 1)
			So(log.Plays[1].Half, ShouldEqual, model.Top)
		})

		Convey("Then carried names are collected", func() {
			So(log.Names, ShouldResemble, map[string]string{"b1": "Ann Example", "p1": "Pat"})
		})

		Convey("Then the result validates", func() {
			So(Validate(log.Plays), ShouldBeNil)
		})
	})

	Convey("Given a bare array", t, func() {
		log, err := DecodeJSON(strings.NewReader("\n  [{\"inning\": 2, \"half\": \"b\", \"batter_id\": \"x\", \"pitcher_id\": \"y\", \"sequence_index\": 7}]"))

		So(err, ShouldBeNil)
		So(log.GameID, ShouldBeEmpty)
		So(log.Plays, ShouldHaveLength, 1)
		So(log.Plays[0].Half, ShouldEqual, model.Bottom)
		So(log.Names, ShouldBeNil)
	})

	Convey("Given malformed input", t, func() {
		for _, in := range []string{"", "   ", "{", `{"game_id": "g", "extra": 1}`, `[{"inning": "one"}]`} {
			_, err := DecodeJSON(strings.NewReader(in))
			So(errors.Is(err, ErrDecode), ShouldBeTrue)
		}
	})
}

func valid() []model.PlateAppearance {
	return []model.PlateAppearance{
		{SequenceIndex: 1, Inning: 1, Half: model.Top, BatterID: "a", PitcherID: "p"},
		{SequenceIndex: 2, Inning: 1, Half: model.Top, BatterID: "b", PitcherID: "p", OutsWhenUp: 1},
		{SequenceIndex: 5, Inning: 1, Half: model.Bottom, BatterID: "x", PitcherID: "q"},
	}
}

func TestNewGame(t *testing.T) {
	Convey("Given a decoded game", t, func() {
		log, err := DecodeJSON(strings.NewReader(gameJSON))
		So(err, ShouldBeNil)

		Convey("When it is converted back to the wire format", func() {
			g := NewGame(log)

			Convey("Then it decodes to the same log", func() {
				raw, err := json.Marshal(g)
				So(err, ShouldBeNil)
				again, err := DecodeJSON(bytes.NewReader(raw))
				So(err, ShouldBeNil)
				So(again, ShouldResemble, log)
			})

			Convey("Then halves and names are spelled out", func() {
				So(g.Plays[1].Half, ShouldEqual, "top")
				So(g.Plays[0].BatterName, ShouldEqual, "Ann Example")
				So(g.Plays[1].PitcherName, ShouldEqual, "Pat")
				So(g.Plays[1].On1B, ShouldEqual, "b1")
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given an ordered log", t, func() {
		So(Validate(valid()), ShouldBeNil)
		So(Validate(nil), ShouldBeNil)
	})

	Convey("Given broken logs", t, func() {
		cases := []struct {
			name   string
			mutate func([]model.PlateAppearance)
			want   error
			msg    string
		}{
			{"repeated sequence", func(p []model.PlateAppearance) { p[1].SequenceIndex = 1 }, ErrOutOfOrder, "record 1 has sequence 1 after 1"},
			{"decreasing sequence", func(p []model.PlateAppearance) { p[2].SequenceIndex = 0 }, ErrOutOfOrder, "record 2"},
			{"three outs", func(p []model.PlateAppearance) { p[0].OutsWhenUp = 3 }, ErrInvalidRecord, "outs_when_up 3"},
			{"negative outs", func(p []model.PlateAppearance) { p[0].OutsWhenUp = -1 }, ErrInvalidRecord, "outs_when_up -1"},
			{"inning zero", func(p []model.PlateAppearance) { p[1].Inning = 0 }, ErrInvalidRecord, "inning 0"},
			{"unknown half", func(p []model.PlateAppearance) { p[2].Half = 0 }, ErrInvalidRecord, "unknown half"},
			{"missing batter", func(p []model.PlateAppearance) { p[0].BatterID = "" }, ErrInvalidRecord, "missing batter id"},
			{"missing pitcher", func(p []model.PlateAppearance) { p[2].PitcherID = "" }, ErrInvalidRecord, "missing pitcher id"},
		}
		for _, tc := range cases {
			Convey("When the log has a "+tc.name, func() {
				plays := valid()
				tc.mutate(plays)
				err := Validate(plays)

				So(errors.Is(err, tc.want), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, tc.msg)
			})
		}
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given records out of order", t, func() {
		plays := []model.PlateAppearance{
			{SequenceIndex: 30, BatterID: "c"},
			{SequenceIndex: 10, BatterID: "a"},
			{SequenceIndex: 20, BatterID: "b1"},
			{SequenceIndex: 20, BatterID: "b2"},
		}
		out := Normalize(plays)

		Convey("Then they are sorted stably and renumbered", func() {
			ids := []string{}
			for _, p := range out {
				ids = append(ids, p.BatterID)
			}
			So(ids, ShouldResemble, []string{"a", "b1", "b2", "c"})
			So(out[3].SequenceIndex, ShouldEqual, 4)
		})

		Convey("Then the input is untouched", func() {
			So(plays[0].SequenceIndex, ShouldEqual, 30)
		})
	})
}

func TestParseInning(t *testing.T) {
	Convey("Given inning labels", t, func() {
		cases := map[string]struct {
			inning int
			half   model.Half
		}{
			"top of the 3rd":     {3, model.Top},
			"Bottom of the 12th": {12, model.Bottom},
			"t3":                 {3, model.Top},
			"b7":                 {7, model.Bottom},
			"Bot 7":              {7, model.Bottom},
			"Top 1":              {1, model.Top},
			" bottom 9th ":       {9, model.Bottom},
		}
		for label, want := range cases {
			n, h, err := ParseInning(label)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, want.inning)
			So(h, ShouldEqual, want.half)
		}

		Convey("Unrecognized labels are rejected", func() {
			for _, label := range []string{"", "middle of the 3rd", "t0", "third", "x3"} {
				_, _, err := ParseInning(label)
				So(errors.Is(err, ErrInvalidInning), ShouldBeTrue)
			}
		})
	})
}
