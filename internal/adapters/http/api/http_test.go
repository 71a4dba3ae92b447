package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/scorebook/internal/adapters/http/api"
	"github.com/okian/scorebook/internal/adapters/mq/queue"
	"github.com/okian/scorebook/internal/adapters/repository"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeps struct {
	seen       map[string]bool
	enqueueErr error
	enqueued   []model.GameLog
	cards      map[string]*types.Scorecard
	unknown    []repository.UnknownRecord
	unknownErr error
	games      []repository.GameSummary
	gamesErr   error
	lastLimit  int
	classifier *outcome.Classifier
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		seen:       make(map[string]bool),
		cards:      make(map[string]*types.Scorecard),
		classifier: outcome.NewClassifier(),
	}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, id string) { delete(m.seen, id) }

func (m *mockDeps) Size() int64 { return int64(len(m.seen)) }

func (m *mockDeps) Enqueue(_ context.Context, log model.GameLog) (string, error) {
	if m.enqueueErr != nil {
		return "", m.enqueueErr
	}
	m.enqueued = append(m.enqueued, log)
	return fmt.Sprintf("job-%d", len(m.enqueued)), nil
}

func (m *mockDeps) Scorecard(_ context.Context, gameID string) (*types.Scorecard, error) {
	card, ok := m.cards[gameID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return card, nil
}

func (m *mockDeps) ListGames(_ context.Context, limit int) ([]repository.GameSummary, error) {
	m.lastLimit = limit
	return m.games, m.gamesErr
}

func (m *mockDeps) Classify(ctx context.Context, in outcome.Input) outcome.Outcome {
	return m.classifier.Classify(ctx, in)
}

func (m *mockDeps) UnknownPlays(_ context.Context, limit int) ([]repository.UnknownRecord, error) {
	m.lastLimit = limit
	return m.unknown, m.unknownErr
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newMux(deps *mockDeps) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, 100)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

const validGame = `{
  "game_id": "745001",
  "plays": [
    {"inning": 1, "half": "top", "batter_id": "b1", "pitcher_id": "p1",
     "event_code": "single", "description": "b1 singles on a line drive to left fielder x.",
     "outs_when_up": 0, "post_score_batting": 0, "post_score_fielding": 0, "sequence_index": 1},
    {"inning": 1, "half": "top", "batter_id": "b2", "pitcher_id": "p1",
     "event_code": "strikeout", "description": "b2 strikes out swinging.",
     "outs_when_up": 0, "on_1b": "b1", "post_score_batting": 0, "post_score_fielding": 0, "sequence_index": 2}
  ]
}`

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(newMockDeps())

		Convey("Then the health endpoint serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint returns JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["started"], ShouldEqual, true)
		})

		Convey("Then unknown paths are 404", func() {
			w := do(mux, http.MethodGet, "/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are 404", func() {
			So(do(mux, http.MethodDelete, "/games", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/classify", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPostGame(t *testing.T) {
	Convey("Given the games endpoint", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When a valid game is posted", func() {
			w := do(mux, http.MethodPost, "/games", validGame)

			Convey("Then it is accepted with a job id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var ack map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["status"], ShouldEqual, "accepted")
				So(ack["job_id"], ShouldEqual, "job-1")
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].GameID, ShouldEqual, "745001")
				So(deps.enqueued[0].Plays, ShouldHaveLength, 2)
				So(deps.enqueued[0].Plays[1].OnBase[0], ShouldEqual, "b1")
			})

			Convey("And the same game is posted again", func() {
				again := do(mux, http.MethodPost, "/games", validGame)

				Convey("Then it is reported as a duplicate and not enqueued", func() {
					So(again.Code, ShouldEqual, http.StatusOK)
					So(again.Body.String(), ShouldContainSubstring, `"duplicate"`)
					So(deps.enqueued, ShouldHaveLength, 1)
				})
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueErr = fmt.Errorf("enqueue: %w", queue.ErrQueueFull)
			w := do(mux, http.MethodPost, "/games", validGame)

			Convey("Then 429 is returned and the game can be retried", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Body.String(), ShouldContainSubstring, `"code":"backpressure"`)
				So(deps.seen["745001"], ShouldBeFalse)
			})
		})

		Convey("When the service is shutting down", func() {
			deps.enqueueErr = errors.New("queue closed")
			w := do(mux, http.MethodPost, "/games", validGame)

			Convey("Then 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(deps.seen["745001"], ShouldBeFalse)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/games", "{not json")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
		})

		Convey("When game_id is missing", func() {
			w := do(mux, http.MethodPost, "/games", `{"plays": []}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "missing game_id")
		})

		Convey("When there are no plays", func() {
			w := do(mux, http.MethodPost, "/games", `{"game_id": "g", "plays": []}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When plays are out of order", func() {
			body := strings.Replace(validGame, `"sequence_index": 2`, `"sequence_index": 1`, 1)
			w := do(mux, http.MethodPost, "/games", body)

			Convey("Then 400 is returned and nothing is recorded", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.enqueued, ShouldBeEmpty)
				So(deps.Size(), ShouldEqual, 0)
			})
		})

		Convey("When outs are out of range", func() {
			body := strings.Replace(validGame, `"outs_when_up": 0, "on_1b"`, `"outs_when_up": 3, "on_1b"`, 1)
			w := do(mux, http.MethodPost, "/games", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetGame(t *testing.T) {
	Convey("Given a stored scorecard", t, func() {
		deps := newMockDeps()
		deps.cards["745001"] = &types.Scorecard{GameID: "745001", Innings: 9}
		mux := newMux(deps)

		Convey("When it is requested", func() {
			w := do(mux, http.MethodGet, "/games/745001", "")

			Convey("Then the scorecard JSON is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var card types.Scorecard
				So(json.Unmarshal(w.Body.Bytes(), &card), ShouldBeNil)
				So(card.GameID, ShouldEqual, "745001")
				So(card.Innings, ShouldEqual, 9)
			})
		})

		Convey("When an unknown game is requested", func() {
			w := do(mux, http.MethodGet, "/games/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
		})

		Convey("When the path is malformed", func() {
			So(do(mux, http.MethodGet, "/games/a/b", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given the classify endpoint", t, func() {
		mux := newMux(newMockDeps())

		Convey("When a strikeout is classified", func() {
			w := do(mux, http.MethodPost, "/classify",
				`{"event_code": "strikeout", "description": "Aaron Judge called out on strikes."}`)

			Convey("Then the looking glyph is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["notation"], ShouldEqual, outcome.GlyphStrikeoutLooking)
			})
		})

		Convey("When the play is unrecognizable", func() {
			w := do(mux, http.MethodPost, "/classify", `{"description": "something odd happened"}`)

			Convey("Then the unknown notation is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, fmt.Sprintf(`"notation":%q`, outcome.UnknownNotation))
			})
		})

		Convey("When the body is empty", func() {
			So(do(mux, http.MethodPost, "/classify", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body has unknown fields", func() {
			So(do(mux, http.MethodPost, "/classify", `{"code": "single"}`).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestListGames(t *testing.T) {
	Convey("Given stored games", t, func() {
		deps := newMockDeps()
		deps.games = []repository.GameSummary{{GameID: "g2", Innings: 9}, {GameID: "g1", Innings: 10}}
		mux := newMux(deps)

		Convey("When listing without a limit", func() {
			w := do(mux, http.MethodGet, "/games", "")

			Convey("Then the default limit is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 50)
				var body struct {
					Games []repository.GameSummary `json:"games"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Games, ShouldHaveLength, 2)
				So(body.Games[0].GameID, ShouldEqual, "g2")
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			w := do(mux, http.MethodGet, "/games?limit=5000", "")

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When nothing is stored", func() {
			deps.games = nil
			w := do(mux, http.MethodGet, "/games", "")

			Convey("Then an empty list is returned", func() {
				So(w.Body.String(), ShouldContainSubstring, `"games":[]`)
			})
		})

		Convey("When the store fails", func() {
			deps.gamesErr = errors.New("disk")

			Convey("Then it is a server error", func() {
				So(do(mux, http.MethodGet, "/games", "").Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestUnknownPlays(t *testing.T) {
	Convey("Given recorded unknown plays", t, func() {
		deps := newMockDeps()
		deps.unknown = []repository.UnknownRecord{{ID: 2, GameID: "g", Description: "odd"}}
		mux := newMux(deps)

		Convey("When listed without a limit", func() {
			w := do(mux, http.MethodGet, "/unknown-plays", "")

			Convey("Then the default limit is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 50)
				So(w.Body.String(), ShouldContainSubstring, `"description":"odd"`)
			})
		})

		Convey("When listed with a limit", func() {
			w := do(mux, http.MethodGet, "/unknown-plays?limit=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 5)
		})

		Convey("When the limit is invalid or too large", func() {
			So(do(mux, http.MethodGet, "/unknown-plays?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/unknown-plays?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/unknown-plays?limit=101", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When nothing is recorded", func() {
			deps.unknown = nil
			w := do(mux, http.MethodGet, "/unknown-plays", "")
			So(w.Body.String(), ShouldContainSubstring, `"plays":[]`)
		})

		Convey("When the store fails", func() {
			deps.unknownErr = errors.New("disk")
			So(do(mux, http.MethodGet, "/unknown-plays", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
