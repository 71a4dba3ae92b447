package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/okian/scorebook/internal/adapters/remote"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
)

// DefaultSavantURL is the Baseball Savant host.
const DefaultSavantURL = "https://baseballsavant.mlb.com"

const savantSearchPath = "/statcast_search/csv"

// SavantClient fetches pitch-level play-by-play from Baseball Savant.
type SavantClient struct {
	baseURL string
	http    *remote.Client
	logger  logger.Logger
}

// SavantOption configures a SavantClient.
type SavantOption func(*SavantClient)

// WithBaseURL points the client at another host (tests, mirrors).
func WithBaseURL(u string) SavantOption {
	return func(c *SavantClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithRemote replaces the underlying HTTP client.
func WithRemote(r *remote.Client) SavantOption {
	return func(c *SavantClient) {
		if r != nil {
			c.http = r
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) SavantOption {
	return func(c *SavantClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewSavantClient returns a client with the default rate limit and retries.
func NewSavantClient(opts ...SavantOption) *SavantClient {
	c := &SavantClient{baseURL: DefaultSavantURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = remote.New("savant")
	}
	if c.logger == nil {
		c.logger = logger.Named("savant")
	}
	return c
}

func (c *SavantClient) searchURL(params url.Values) string {
	params.Set("all", "true")
	params.Set("type", "details")
	params.Set("player_type", "pitcher")
	return c.baseURL + savantSearchPath + "?" + params.Encode()
}

// FetchGame returns the play-by-play of one game.
func (c *SavantClient) FetchGame(ctx context.Context, gamePk string) (model.GameLog, error) {
	games, err := c.fetch(ctx, c.searchURL(url.Values{"game_pk": {gamePk}}))
	if err != nil {
		return model.GameLog{}, err
	}
	log, ok := games[gamePk]
	if !ok || len(log.Plays) == 0 {
		return model.GameLog{}, fmt.Errorf("%w: %s", ErrNoGame, gamePk)
	}
	return log, nil
}

// FetchDate returns every game played on date, ordered by game id.
func (c *SavantClient) FetchDate(ctx context.Context, date time.Time) ([]model.GameLog, error) {
	day := date.Format(time.DateOnly)
	games, err := c.fetch(ctx, c.searchURL(url.Values{
		"game_date_gt": {day},
		"game_date_lt": {day},
	}))
	if err != nil {
		return nil, err
	}

	out := make([]model.GameLog, 0, len(games))
	for _, g := range games {
		if len(g.Plays) > 0 {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })

	c.logger.Info(ctx, "fetched games", logger.String("date", day), logger.Int("games", len(out)))
	return out, nil
}

func (c *SavantClient) fetch(ctx context.Context, u string) (map[string]model.GameLog, error) {
	body, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("savant: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]model.GameLog{}, nil
	}
	return DecodeSavantCSV(bytes.NewReader(body))
}
