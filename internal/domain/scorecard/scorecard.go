// Package scorecard drives classification, base tracking and the pitching
// ledger over one game and rolls the results up into a scorecard.
package scorecard

import (
	"context"
	"strings"

	"github.com/okian/scorebook/internal/domain/basepath"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/pitching"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// Default team labels when the feed leaves team identifiers blank.
const (
	AwayTeam = "away"
	HomeTeam = "home"
)

// Scorer builds scorecards. It holds no per-game state and is safe for
// concurrent use; every Build call owns its own ledger.
type Scorer struct {
	classifier *outcome.Classifier
	threshold  float64
	logger     logger.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClassifier sets the outcome classifier.
func WithClassifier(c *outcome.Classifier) Option {
	return func(s *Scorer) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithKeyPlayThreshold sets the win expectancy swing that flags a key play.
func WithKeyPlayThreshold(t float64) Option {
	return func(s *Scorer) {
		if t > 0 {
			s.threshold = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScorer returns a Scorer with the default classifier and threshold.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		threshold: model.KeyPlayThreshold,
		logger:    logger.Named("scorecard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		s.classifier = outcome.NewClassifier(outcome.WithLogger(s.logger))
	}
	return s
}

// Build scores one game. plays must already be ordered by sequence index;
// names may be nil.
func (s *Scorer) Build(ctx context.Context, gameID string, plays []model.PlateAppearance, names basepath.NameLookup) *types.Scorecard {
	g := newGame(gameID, plays, names)
	ledger := pitching.NewLedger()

	for i := range plays {
		pa := &plays[i]
		o := s.classifier.Classify(ctx, outcome.Input{
			Code:        pa.EventCode,
			Description: pa.Description,
			BatterName:  g.name(pa.BatterID),
			GameID:      gameID,
			BatterID:    pa.BatterID,
		})
		reached := basepath.Reached(plays, i, o, names)
		ledger.Apply(pa, o, reached)
		g.record(pa, o, reached, s.threshold)
	}

	for _, st := range ledger.Stats() {
		ledger.SetOuts(st.PitcherID, pitching.InferOuts(plays, st.PitcherID))
	}
	card := g.finish(ledger.Stats())

	metrics.RecordKeyPlays(len(card.KeyPlays))
	s.logger.Debug(ctx, "scored game",
		logger.String("game_id", gameID),
		logger.Int("plays", len(plays)),
		logger.Int("innings", card.Innings),
		logger.Int("key_plays", len(card.KeyPlays)),
	)
	return card
}

// teamKey returns the batting team label of pa.
func teamKey(pa *model.PlateAppearance) string {
	if pa.BattingTeam != "" {
		return pa.BattingTeam
	}
	if pa.Half == model.Bottom {
		return HomeTeam
	}
	return AwayTeam
}

// fieldingKey returns the fielding team label of pa.
func fieldingKey(pa *model.PlateAppearance) string {
	if pa.FieldingTeam != "" {
		return pa.FieldingTeam
	}
	if pa.Half == model.Bottom {
		return AwayTeam
	}
	return HomeTeam
}

// cell is one inning box of a batter's row.
type cell []string

func (c cell) add(notation string) cell {
	for _, n := range c {
		if n == notation {
			return c
		}
	}
	return append(c, notation)
}

func (c cell) String() string { return strings.Join(c, " ") }

type batterRow struct {
	id    string
	cells map[int]cell
}

type teamState struct {
	team      string
	batters   []*batterRow
	byID      map[string]*batterRow
	pitchers  []string
	runs      map[int]int
	score     int
	hits      int
	errors    int
	pitcherIn map[string]bool
}

// game accumulates one game's roll-up in sequence order.
type game struct {
	id       string
	names    basepath.NameLookup
	teams    []*teamState
	byTeam   map[string]*teamState
	innings  int
	keyPlays []types.KeyPlay
	plays    []types.PlayLine
}

func newGame(id string, plays []model.PlateAppearance, names basepath.NameLookup) *game {
	return &game{
		id:     id,
		names:  names,
		byTeam: make(map[string]*teamState),
		plays:  make([]types.PlayLine, 0, len(plays)),
	}
}

func (g *game) name(id string) string {
	if g.names == nil {
		return ""
	}
	n, _ := g.names.DisplayName(id)
	return n
}

func (g *game) team(key string) *teamState {
	t, ok := g.byTeam[key]
	if !ok {
		t = &teamState{
			team:      key,
			byID:      make(map[string]*batterRow),
			runs:      make(map[int]int),
			pitcherIn: make(map[string]bool),
		}
		g.byTeam[key] = t
		g.teams = append(g.teams, t)
	}
	return t
}

func (g *game) record(pa *model.PlateAppearance, o outcome.Outcome, reached basepath.Bases, threshold float64) {
	if pa.Inning > g.innings {
		g.innings = pa.Inning
	}

	bat := g.team(teamKey(pa))
	row, ok := bat.byID[pa.BatterID]
	if !ok {
		row = &batterRow{id: pa.BatterID, cells: make(map[int]cell)}
		bat.byID[pa.BatterID] = row
		bat.batters = append(bat.batters, row)
	}
	notation := o.Notation()
	row.cells[pa.Inning] = row.cells[pa.Inning].add(notation)

	if o.IsHit() {
		bat.hits++
	}
	if d := pa.PostScoreBatting - bat.score; d > 0 {
		bat.runs[pa.Inning] += d
	}
	if pa.PostScoreBatting > bat.score {
		bat.score = pa.PostScoreBatting
	}

	field := g.team(fieldingKey(pa))
	if o.IsError() {
		field.errors++
	}
	if !field.pitcherIn[pa.PitcherID] {
		field.pitcherIn[pa.PitcherID] = true
		field.pitchers = append(field.pitchers, pa.PitcherID)
	}

	half := pa.Half.String()
	if pa.IsKeyPlay(threshold) {
		g.keyPlays = append(g.keyPlays, types.KeyPlay{
			Sequence: pa.SequenceIndex,
			Inning:   pa.Inning,
			Half:     half,
			BatterID: pa.BatterID,
			Notation: notation,
			Delta:    pa.WinExpDelta,
		})
	}
	g.plays = append(g.plays, types.PlayLine{
		Sequence:  pa.SequenceIndex,
		Inning:    pa.Inning,
		Half:      half,
		Team:      bat.team,
		BatterID:  pa.BatterID,
		PitcherID: pa.PitcherID,
		Kind:      o.Kind.String(),
		Notation:  notation,
		Bases:     reached.Slice(),
	})
}

func (g *game) finish(stats []pitching.Stat) *types.Scorecard {
	byPitcher := make(map[string]pitching.Stat, len(stats))
	for _, st := range stats {
		byPitcher[st.PitcherID] = st
	}

	card := &types.Scorecard{
		GameID:   g.id,
		Innings:  g.innings,
		Teams:    make([]types.TeamCard, 0, len(g.teams)),
		KeyPlays: g.keyPlays,
		Plays:    g.plays,
	}
	if card.KeyPlays == nil {
		card.KeyPlays = []types.KeyPlay{}
	}

	for _, t := range g.teams {
		tc := types.TeamCard{
			Team:      t.team,
			Batters:   make([]types.BatterLine, 0, len(t.batters)),
			Pitchers:  make([]types.PitcherLine, 0, len(t.pitchers)),
			LineScore: make([]int, g.innings),
			Totals:    types.Totals{Runs: t.score, Hits: t.hits, Errors: t.errors},
		}
		for inning, runs := range t.runs {
			if inning >= 1 && inning <= g.innings {
				tc.LineScore[inning-1] = runs
			}
		}
		for _, row := range t.batters {
			tc.Batters = append(tc.Batters, g.batterLine(row))
		}
		for _, id := range t.pitchers {
			st := byPitcher[id]
			tc.Pitchers = append(tc.Pitchers, types.PitcherLine{
				PitcherID: id,
				Name:      g.name(id),
				IP:        st.Innings().String(),
				Outs:      st.OutsRecorded,
				ER:        st.EarnedRuns,
				H:         st.Hits,
				HR:        st.HomeRuns,
				BB:        st.Walks,
				SO:        st.Strikeouts,
			})
		}
		card.Teams = append(card.Teams, tc)
	}
	return card
}

// batterLine lays the row out over the full grid width and derives the
// counting stats from the cell text.
func (g *game) batterLine(row *batterRow) types.BatterLine {
	line := types.BatterLine{
		BatterID: row.id,
		Name:     g.name(row.id),
		Cells:    make([]string, g.innings),
	}
	for inning, c := range row.cells {
		if inning >= 1 && inning <= g.innings {
			line.Cells[inning-1] = c.String()
		}
	}
	for _, text := range line.Cells {
		if text == "" {
			continue
		}
		line.PA++
		if containsHit(text) {
			line.H++
		}
		if text == "BB" {
			line.BB++
		}
		if text == outcome.GlyphStrikeoutSwinging || text == outcome.GlyphStrikeoutLooking {
			line.SO++
		}
	}
	return line
}

var hitMarks = []string{"1B", "2B", "3B", "HR"}

func containsHit(text string) bool {
	for _, m := range hitMarks {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
