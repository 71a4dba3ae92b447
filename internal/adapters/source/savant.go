package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
)

// Savant CSV columns read by DecodeSavantCSV.
const (
	colGamePk      = "game_pk"
	colAtBat       = "at_bat_number"
	colPitch       = "pitch_number"
	colInning      = "inning"
	colTopBot      = "inning_topbot"
	colBatter      = "batter"
	colPitcher     = "pitcher"
	colEvents      = "events"
	colDes         = "des"
	colOuts        = "outs_when_up"
	colOn1B        = "on_1b"
	colOn2B        = "on_2b"
	colOn3B        = "on_3b"
	colPostBat     = "post_bat_score"
	colPostFld     = "post_fld_score"
	colWinExpDelta = "delta_home_win_exp"
	colHomeTeam    = "home_team"
	colAwayTeam    = "away_team"
	colPlayerName  = "player_name"
)

var requiredColumns = []string{
	colGamePk, colAtBat, colPitch, colInning, colTopBot, colBatter, colPitcher,
	colEvents, colDes, colOuts,
}

type savantRow struct {
	pitch int
	pa    model.PlateAppearance
	name  string
}

// DecodeSavantCSV reads a Statcast pitch-level export. Pitches collapse to
// one plate appearance per (game_pk, at_bat_number), keeping the last
// pitch; each game's plays are sorted by at-bat number. Plate appearances
// with neither an event nor a description (at-bats cut off mid-count) are
// dropped. player_name names the pitcher: searches are pitcher-based, so
// batter names are left to the roster and people lookups.
func DecodeSavantCSV(r io.Reader) (map[string]model.GameLog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrDecode, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDecode, c)
		}
	}

	byGame := make(map[string]map[int]*savantRow)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrDecode, line, err)
		}
		get := func(c string) string {
			if i, ok := cols[c]; ok && i < len(rec) {
				return cleanCell(rec[i])
			}
			return ""
		}

		gamePk := normalizeID(get(colGamePk))
		atBat, err := atoi(get(colAtBat))
		if gamePk == "" || err != nil {
			return nil, fmt.Errorf("%w: line %d: bad game_pk or at_bat_number", ErrDecode, line)
		}
		pitch, _ := atoi(get(colPitch))

		game := byGame[gamePk]
		if game == nil {
			game = make(map[int]*savantRow)
			byGame[gamePk] = game
		}
		if prev, ok := game[atBat]; ok && prev.pitch >= pitch {
			continue
		}

		row, err := savantPlate(get, atBat)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrDecode, line, err)
		}
		row.pitch = pitch
		game[atBat] = row
	}

	out := make(map[string]model.GameLog, len(byGame))
	for gamePk, rows := range byGame {
		log := model.GameLog{GameID: gamePk, Names: make(map[string]string)}
		for _, row := range rows {
			if row.pa.EventCode == model.EventNone && row.pa.Description == "" {
				continue
			}
			log.Plays = append(log.Plays, row.pa)
			if row.name != "" {
				log.Names[row.pa.PitcherID] = row.name
			}
		}
		sort.Slice(log.Plays, func(i, j int) bool {
			return log.Plays[i].SequenceIndex < log.Plays[j].SequenceIndex
		})
		out[gamePk] = log
	}
	return out, nil
}

func savantPlate(get func(string) string, atBat int) (*savantRow, error) {
	inning, err := atoi(get(colInning))
	if err != nil {
		return nil, fmt.Errorf("inning: %w", err)
	}
	outs, err := atoi(get(colOuts))
	if err != nil {
		return nil, fmt.Errorf("outs_when_up: %w", err)
	}
	postBat, _ := atoi(get(colPostBat))
	postFld, _ := atoi(get(colPostFld))
	delta, _ := strconv.ParseFloat(get(colWinExpDelta), 64)

	half := parseHalf(get(colTopBot))
	home, away := get(colHomeTeam), get(colAwayTeam)
	batting, fielding := away, home
	if half == model.Bottom {
		batting, fielding = home, away
	}

	return &savantRow{
		pa: model.PlateAppearance{
			Inning:            inning,
			Half:              half,
			BattingTeam:       batting,
			FieldingTeam:      fielding,
			BatterID:          normalizeID(get(colBatter)),
			PitcherID:         normalizeID(get(colPitcher)),
			EventCode:         model.ParseEventCode(get(colEvents)),
			Description:       get(colDes),
			OutsWhenUp:        outs,
			OnBase:            [3]string{normalizeID(get(colOn1B)), normalizeID(get(colOn2B)), normalizeID(get(colOn3B))},
			PostScoreBatting:  postBat,
			PostScoreFielding: postFld,
			WinExpDelta:       delta,
			SequenceIndex:     atBat,
		},
		name: displayName(get(colPlayerName)),
	}, nil
}

// cleanCell trims a cell and maps the export's missing-value markers to "".
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "NA", "NaN", "nan", "null", "None":
		return ""
	}
	return s
}

// normalizeID strips the ".0" pandas appends to integer ids.
func normalizeID(s string) string {
	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" {
		return whole
	}
	return s
}

// atoi accepts integers written as floats ("3.0").
func atoi(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

// displayName turns "Judge, Aaron" into "Aaron Judge".
func displayName(s string) string {
	last, first, ok := strings.Cut(s, ",")
	if !ok {
		return s
	}
	return strings.TrimSpace(first) + " " + strings.TrimSpace(last)
}
