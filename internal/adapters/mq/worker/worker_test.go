package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/scorebook/internal/adapters/mq/queue"
	worker "github.com/okian/scorebook/internal/adapters/mq/worker"
	"github.com/okian/scorebook/internal/domain/basepath"
	model "github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/scorecard"
	"github.com/okian/scorebook/internal/domain/types"
	logging "github.com/okian/scorebook/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 128)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

func (mq *mockQueue) add(j queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	mq.jobs <- j
}

type mockScorer struct {
	mu    sync.Mutex
	empty map[string]bool
	names map[string]basepath.NameLookup
}

func newMockScorer() *mockScorer {
	return &mockScorer{empty: make(map[string]bool), names: make(map[string]basepath.NameLookup)}
}

func (ms *mockScorer) Build(_ context.Context, gameID string, plays []model.PlateAppearance, names basepath.NameLookup) *types.Scorecard {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.names[gameID] = names
	if ms.empty[gameID] {
		return nil
	}
	return &types.Scorecard{GameID: gameID, Innings: len(plays)}
}

func (ms *mockScorer) failFor(gameID string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.empty[gameID] = true
}

func (ms *mockScorer) lookupFor(gameID string) basepath.NameLookup {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.names[gameID]
}

type mockStore struct {
	mu     sync.RWMutex
	cards  map[string]*types.Scorecard
	errors map[string]error
}

func newMockStore() *mockStore {
	return &mockStore{cards: make(map[string]*types.Scorecard), errors: make(map[string]error)}
}

func (s *mockStore) SaveScorecard(_ context.Context, card *types.Scorecard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errors[card.GameID]; ok {
		return err
	}
	s.cards[card.GameID] = card
	return nil
}

func (s *mockStore) setError(gameID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[gameID] = err
}

func (s *mockStore) get(gameID string) (*types.Scorecard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[gameID]
	return c, ok
}

func (s *mockStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

type names map[string]string

func (n names) DisplayName(id string) (string, bool) {
	v, ok := n[id]
	return v, ok
}

type mockResolver struct{}

func (mockResolver) Resolve(_ context.Context, log model.GameLog) basepath.NameLookup {
	return names(log.Names)
}

func job(id, gameID string) queue.Job {
	return queue.Job{
		ID:          id,
		Log:         model.GameLog{GameID: gameID, Plays: make([]model.PlateAppearance, 3)},
		Source:      "test",
		SubmittedAt: time.Now(),
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := newMockScorer()
		store := newMockStore()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(q, scorer, store)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, scorer, store,
				worker.WithName("test-worker"),
				worker.WithResolver(mockResolver{}),
			)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)

			convey.Convey("And when processing a job", func() {
				j := job("run-1", "game-1")
				j.Log.Names = map[string]string{"b1": "Ann Example"}
				q.add(j)

				convey.Convey("Then the scorecard is stored with the run id", func() {
					convey.So(waitFor(func() bool { _, ok := store.get("game-1"); return ok }), convey.ShouldBeTrue)
					card, _ := store.get("game-1")
					convey.So(card.RunID, convey.ShouldEqual, "run-1")
					convey.So(card.Innings, convey.ShouldEqual, 3)
					convey.So(card.GeneratedAt.IsZero(), convey.ShouldBeFalse)
				})

				convey.Convey("Then the resolver's names reach the scorer", func() {
					convey.So(waitFor(func() bool { return scorer.lookupFor("game-1") != nil }), convey.ShouldBeTrue)
					name, ok := scorer.lookupFor("game-1").DisplayName("b1")
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(name, convey.ShouldEqual, "Ann Example")
				})
			})

			convey.Convey("And when scoring yields nothing", func() {
				scorer.failFor("game-2")
				q.add(job("run-2", "game-2"))
				q.add(job("run-3", "game-3"))

				convey.Convey("Then nothing is stored for it and later jobs still run", func() {
					convey.So(waitFor(func() bool { _, ok := store.get("game-3"); return ok }), convey.ShouldBeTrue)
					_, ok := store.get("game-2")
					convey.So(ok, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when storing fails", func() {
				store.setError("game-4", errors.New("disk full"))
				q.add(job("run-4", "game-4"))
				q.add(job("run-5", "game-5"))

				convey.Convey("Then the worker keeps going", func() {
					convey.So(waitFor(func() bool { _, ok := store.get("game-5"); return ok }), convey.ShouldBeTrue)
					_, ok := store.get("game-4")
					convey.So(ok, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When the queue channel is closed", func() {
			w := worker.NewInMemoryWorker(q, scorer, store)
			finished := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(finished)
			}()
			_ = q.Close()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-finished:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerFailureHandler(t *testing.T) {
	convey.Convey("Given a worker with a failure handler", t, func() {
		q := newMockQueue()
		scorer := newMockScorer()
		store := newMockStore()

		var (
			mu     sync.Mutex
			failed = map[string]error{}
		)
		w := worker.NewInMemoryWorker(q, scorer, store,
			worker.WithLogger(logging.Discard()),
			worker.WithFailureHandler(func(_ context.Context, j queue.Job, err error) {
				mu.Lock()
				defer mu.Unlock()
				failed[j.Log.GameID] = err
			}),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When scoring and storing fail for different games", func() {
			scorer.failFor("game-a")
			store.setError("game-b", errors.New("disk full"))
			q.add(job("run-a", "game-a"))
			q.add(job("run-b", "game-b"))
			q.add(job("run-c", "game-c"))

			convey.Convey("Then each failure is reported and successes are not", func() {
				convey.So(waitFor(func() bool { _, ok := store.get("game-c"); return ok }), convey.ShouldBeTrue)
				mu.Lock()
				defer mu.Unlock()
				convey.So(failed, convey.ShouldHaveLength, 2)
				convey.So(errors.Is(failed["game-a"], worker.ErrNoScorecard), convey.ShouldBeTrue)
				convey.So(failed["game-b"].Error(), convey.ShouldContainSubstring, "disk full")
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new worker pool", t, func() {
		_ = logging.Init()

		scorer := newMockScorer()
		store := newMockStore()

		convey.Convey("When creating a pool with default count", func() {
			pool := worker.NewPool(0, newMockQueue(), scorer, store)

			convey.Convey("Then it sizes itself from the CPU count", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When jobs are queued on a real queue", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(16))
			pool := worker.NewPool(3, q, scorer, store)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			for i := 0; i < 10; i++ {
				convey.So(q.Enqueue(ctx, job(fmt.Sprintf("r%d", i), fmt.Sprintf("g%d", i))), convey.ShouldBeNil)
			}
			pool.Start(ctx)

			convey.Convey("Then shutdown drains every queued job", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.count(), convey.ShouldEqual, 10)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When stopping a started pool", func() {
			pool := worker.NewPool(2, newMockQueue(), scorer, store)
			pool.Start(context.Background())

			finished := make(chan struct{})
			go func() {
				pool.Stop()
				close(finished)
			}()

			convey.Convey("Then every worker exits", func() {
				select {
				case <-finished:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(2 * time.Second):
					convey.So("pool still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerScoresRealGames(t *testing.T) {
	convey.Convey("Given a pool wired to the real scorer", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		store := newMockStore()
		pool := worker.NewPool(2, q, scorecard.NewScorer(), store, worker.WithResolver(mockResolver{}))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		plays := []model.PlateAppearance{
			{SequenceIndex: 1, Inning: 1, Half: model.Top, BatterID: "a", PitcherID: "p", EventCode: model.EventStrikeout, Description: "Al strikes out swinging"},
			{SequenceIndex: 2, Inning: 1, Half: model.Top, BatterID: "b", PitcherID: "p", EventCode: model.EventSingle, Description: "Bo singles", OutsWhenUp: 1},
		}
		convey.So(q.Enqueue(ctx, queue.Job{ID: "run", Log: model.GameLog{GameID: "real", Plays: plays}}), convey.ShouldBeNil)

		convey.Convey("Then each job gets its own scorecard", func() {
			convey.So(waitFor(func() bool { _, ok := store.get("real"); return ok }), convey.ShouldBeTrue)
			card, _ := store.get("real")
			away := card.Team(scorecard.AwayTeam)
			convey.So(away, convey.ShouldNotBeNil)
			convey.So(away.Batter("a").Cells, convey.ShouldResemble, []string{"K"})
			convey.So(away.Batter("b").H, convey.ShouldEqual, 1)
			_ = pool.Shutdown(context.Background())
		})
	})
}
