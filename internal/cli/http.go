package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scorebook/internal/adapters/remote"
	"github.com/okian/scorebook/internal/adapters/source"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
)

const (
	pollInterval = 200 * time.Millisecond
	userAgent    = "scorebook-cli/1.0"
)

// Submission results.
const (
	resultAccepted  = "accepted"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

// submission is the outcome of posting one game.
type submission struct {
	GameID string
	JobID  string
	Result string
}

// HTTPClient posts games to and reads scorecards from a scorebook server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	get     *remote.Client
}

// newHTTPClient creates a new HTTP client with timeout. Reads go through
// the remote client for its retries; 404 is not retried.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := &http.Client{Timeout: timeout}
	return &HTTPClient{
		baseURL: baseURL,
		client:  client,
		get: remote.New("scorebook",
			remote.WithHTTPClient(client),
			remote.WithUserAgent(userAgent),
			remote.WithRate(100, 10),
			remote.WithBackoffs(250*time.Millisecond, 500*time.Millisecond),
		),
	}
}

// PostGame submits one game and classifies the reply.
func (c *HTTPClient) PostGame(ctx context.Context, log model.GameLog) (submission, error) {
	sub := submission{GameID: log.GameID, Result: resultFailed}

	jsonData, err := json.Marshal(source.NewGame(log))
	if err != nil {
		return sub, fmt.Errorf("failed to marshal game %s: %w", log.GameID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", bytes.NewReader(jsonData))
	if err != nil {
		return sub, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return sub, fmt.Errorf("%w %s: %w", ErrSubmit, log.GameID, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return sub, fmt.Errorf("%w %s: read response: %w", ErrSubmit, log.GameID, err)
	}

	var ack AckResponse
	switch resp.StatusCode {
	case http.StatusAccepted:
		// Assume success for 202 even if parsing fails
		_ = json.Unmarshal(body, &ack)
		sub.Result, sub.JobID = resultAccepted, ack.JobID
	case http.StatusOK:
		sub.Result = resultDuplicate
	default:
		return sub, fmt.Errorf("%w %s: status %d: %s", ErrSubmit, log.GameID, resp.StatusCode, bytes.TrimSpace(body))
	}
	return sub, nil
}

// Scorecard returns the stored scorecard of id; ErrNotReady until the
// server has scored it.
func (c *HTTPClient) Scorecard(ctx context.Context, id string) (*types.Scorecard, error) {
	body, err := c.get.Get(ctx, c.baseURL+"/games/"+url.PathEscape(id))
	if errors.Is(err, remote.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, id)
	}
	if err != nil {
		return nil, err
	}
	var card types.Scorecard
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, fmt.Errorf("decode scorecard %s: %w", id, err)
	}
	return &card, nil
}

// WaitScorecard polls until the scorecard of id is available or wait ends.
func (c *HTTPClient) WaitScorecard(ctx context.Context, id string, wait time.Duration) (*types.Scorecard, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		card, err := c.Scorecard(ctx, id)
		if err == nil || !errors.Is(err, ErrNotReady) {
			return card, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s after %s", ErrNotReady, id, wait)
		case <-ticker.C:
		}
	}
}

// submitGames posts games concurrently using a worker pool.
func submitGames(ctx context.Context, cfg *Config, client *HTTPClient, games []model.GameLog, stats *Stats) []submission {
	l := logger.Named("submit")
	l.Info(ctx, "submitting games", logger.Int("games", len(games)), logger.Int("workers", cfg.Workers))

	var (
		accepted  int64
		duplicate int64
		failed    int64
	)
	results := make([]submission, len(games))

	type item struct {
		idx  int
		game model.GameLog
	}
	items := make(chan item, cfg.Workers*2)
	var wg sync.WaitGroup

	workers := max(cfg.Workers, 1)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range items {
				sub, err := client.PostGame(ctx, it.game)
				if err != nil {
					l.Warn(ctx, "submission failed", logger.String("game_id", it.game.GameID), logger.Error(err))
				} else if cfg.Verbose {
					l.Info(ctx, "submitted", logger.String("game_id", sub.GameID), logger.String("result", sub.Result))
				}
				switch sub.Result {
				case resultAccepted:
					atomic.AddInt64(&accepted, 1)
				case resultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				results[it.idx] = sub
			}
		}()
	}

	go func() {
		defer close(items)
		for i, g := range games {
			select {
			case <-ctx.Done():
				return
			case items <- item{idx: i, game: g}:
			}
		}
	}()
	wg.Wait()

	stats.GamesAccepted = int(accepted)
	stats.GamesDuplicate = int(duplicate)
	stats.GamesFailed = int(failed)
	stats.GamesSubmitted = stats.GamesAccepted + stats.GamesDuplicate + stats.GamesFailed
	return results
}
