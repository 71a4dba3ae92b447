package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/internal/render"
	"github.com/okian/scorebook/pkg/logger"
)

// Run loads the configured games, scores them and writes the scorecards to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	stats := &Stats{StartTime: time.Now()}
	l := logger.Named("scorecard")

	games, err := LoadGames(ctx, cfg)
	if err != nil {
		return err
	}
	stats.GamesLoaded = len(games)

	var cards []*types.Scorecard
	if cfg.Submit {
		cards, err = scoreRemote(ctx, cfg, games, stats)
	} else {
		cards, err = scoreLocal(ctx, cfg, games)
	}
	if err != nil {
		return err
	}
	stats.GamesScored = len(cards)

	r := render.New()
	for i, card := range cards {
		if i > 0 {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
		}
		if cfg.Plain {
			err = render.Text(out, card)
		} else {
			_, err = fmt.Fprintln(out, r.Scorecard(card))
		}
		if err != nil {
			return fmt.Errorf("write scorecard %s: %w", card.GameID, err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	l.Info(ctx, "final statistics",
		logger.Int("gamesLoaded", stats.GamesLoaded),
		logger.Int("gamesSubmitted", stats.GamesSubmitted),
		logger.Int("gamesAccepted", stats.GamesAccepted),
		logger.Int("gamesDuplicate", stats.GamesDuplicate),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("gamesScored", stats.GamesScored),
		logger.Duration("duration", stats.Duration),
	)
	return nil
}

// scoreRemote submits games to the server and collects the stored
// scorecards. Duplicates are read back as well.
func scoreRemote(ctx context.Context, cfg *Config, games []model.GameLog, stats *Stats) ([]*types.Scorecard, error) {
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	subs := submitGames(ctx, cfg, client, games, stats)
	if stats.GamesFailed == len(games) {
		return nil, fmt.Errorf("%w: all %d submissions failed", ErrSubmit, len(games))
	}

	cards := make([]*types.Scorecard, 0, len(subs))
	for _, sub := range subs {
		if sub.Result == resultFailed {
			continue
		}
		card, err := client.WaitScorecard(ctx, sub.GameID, cfg.Wait)
		if err != nil {
			return cards, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ShowHelp prints usage information for the scorecard command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `scorecard
=========

Scores baseball play-by-play and prints a scorecard.

Usage:
  scorecard [options]

Options:
  -file string
        JSON game or Baseball Savant CSV export
  -game string
        Savant game_pk to fetch, or to select from a multi-game CSV
  -plain
        Plain text tables instead of styled output
  -roster string
        YAML roster of player names
  -people
        Look missing player names up in the MLB Stats API
  -unknown-log string
        Append unclassified plays to this file
  -threshold float
        Win expectancy swing that flags a key play (default 0.25)
  -submit
        Score through a running server instead of in process
  -url string
        Base URL of the server (default "http://localhost:9080")
  -workers int
        Concurrent submissions (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        How long to wait for submitted games to be scored (default 1m)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  scorecard -file game.json
  scorecard -game 745001 -plain
  scorecard -submit -file savant.csv -workers 8
`)
}

// SetupLogging sends logs to stderr so stdout carries only scorecards.
func SetupLogging(verbose bool) error {
	if err := logger.InitWithFormat("text", os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}
