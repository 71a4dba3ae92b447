package cli

import (
	"context"
	"time"

	"github.com/okian/scorebook/internal/adapters/remote"
	"github.com/okian/scorebook/internal/adapters/roster"
	"github.com/okian/scorebook/internal/adapters/unknownsink"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/scorecard"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
)

// scoreLocal scores games in process.
func scoreLocal(ctx context.Context, cfg *Config, games []model.GameLog) ([]*types.Scorecard, error) {
	directory, err := newDirectory(cfg)
	if err != nil {
		return nil, err
	}

	copts := []outcome.Option{outcome.WithLogger(logger.Named("classifier"))}
	if cfg.UnknownLog != "" {
		copts = append(copts, outcome.WithSink(unknownsink.NewFileSink(cfg.UnknownLog)))
	}
	scorer := scorecard.NewScorer(
		scorecard.WithClassifier(outcome.NewClassifier(copts...)),
		scorecard.WithKeyPlayThreshold(cfg.Threshold),
		scorecard.WithLogger(logger.Named("scorecard")),
	)

	cards := make([]*types.Scorecard, 0, len(games))
	for _, g := range games {
		card := scorer.Build(ctx, g.GameID, g.Plays, directory.Resolve(ctx, g))
		if card == nil {
			continue
		}
		card.GeneratedAt = time.Now().UTC()
		cards = append(cards, card)
	}
	return cards, nil
}

func newDirectory(cfg *Config) (*roster.Directory, error) {
	opts := []roster.DirectoryOption{roster.WithDirectoryLogger(logger.Named("roster"))}
	if cfg.RosterPath != "" {
		names, err := roster.LoadFile(cfg.RosterPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, roster.WithRoster(names))
	}
	if cfg.People {
		opts = append(opts, roster.WithPeople(roster.NewPeopleClient(
			roster.WithPeopleURL(cfg.PeopleURL),
			roster.WithPeopleRemote(remote.New("people", remote.WithTimeout(cfg.Timeout))),
		)))
	}
	return roster.NewDirectory(opts...), nil
}
