package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/scorebook/internal/adapters/remote"
	"github.com/okian/scorebook/internal/adapters/source"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
)

// LoadGames reads the games named by cfg. Savant exports are renumbered
// and may hold many games; a JSON file holds one. Every game is validated.
func LoadGames(ctx context.Context, cfg *Config) ([]model.GameLog, error) {
	var (
		games []model.GameLog
		err   error
	)
	switch {
	case cfg.File != "":
		games, err = loadFile(cfg.File, cfg.GamePk)
	case cfg.GamePk != "":
		games, err = fetchGame(ctx, cfg)
	default:
		return nil, ErrNoInput
	}
	if err != nil {
		return nil, err
	}

	for _, g := range games {
		if err := source.Validate(g.Plays); err != nil {
			return nil, fmt.Errorf("game %s: %w", g.GameID, err)
		}
	}
	return games, nil
}

func loadFile(path, gamePk string) ([]model.GameLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		log, err := source.DecodeJSON(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []model.GameLog{log}, nil
	}

	byGame, err := source.DecodeSavantCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if gamePk != "" {
		log, ok := byGame[gamePk]
		if !ok {
			return nil, fmt.Errorf("%w: %s", source.ErrNoGame, gamePk)
		}
		byGame = map[string]model.GameLog{gamePk: log}
	}

	games := make([]model.GameLog, 0, len(byGame))
	for _, log := range byGame {
		log.Plays = source.Normalize(log.Plays)
		games = append(games, log)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })
	return games, nil
}

func fetchGame(ctx context.Context, cfg *Config) ([]model.GameLog, error) {
	client := source.NewSavantClient(
		source.WithBaseURL(cfg.SavantURL),
		source.WithRemote(remote.New("savant", remote.WithTimeout(cfg.Timeout))),
		source.WithLogger(logger.Named("savant")),
	)
	log, err := client.FetchGame(ctx, cfg.GamePk)
	if err != nil {
		return nil, err
	}
	log.Plays = source.Normalize(log.Plays)
	return []model.GameLog{log}, nil
}
