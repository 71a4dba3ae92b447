// Package worker scores queued games and persists the resulting scorecards.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/scorebook/internal/adapters/mq/queue"
	"github.com/okian/scorebook/internal/domain/basepath"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// ErrNoScorecard is returned when the scorer produced nothing to store.
var ErrNoScorecard = errors.New("scorer returned no scorecard")

// Job is what workers read off the queue.
type Job = queue.Job

// Scorer builds a scorecard for one game.
type Scorer interface {
	Build(ctx context.Context, gameID string, plays []model.PlateAppearance, names basepath.NameLookup) *types.Scorecard
}

// Store persists scorecards.
type Store interface {
	SaveScorecard(ctx context.Context, card *types.Scorecard) error
}

// Resolver supplies display names for the players of a game. Lookup
// failures are expected to degrade to missing names, never to an error.
type Resolver interface {
	Resolve(ctx context.Context, log model.GameLog) basepath.NameLookup
}

// FailureHandler is told about every job that could not be scored or
// stored, after the error is logged.
type FailureHandler func(ctx context.Context, j Job, err error)

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for scoring jobs.
type InMemoryWorker struct {
	queue    Queue
	scorer   Scorer
	store    Store
	resolver Resolver
	onFail   FailureHandler
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer Scorer, store Store, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		scorer:   scorer,
		store:    store,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing job",
					logger.String("job_id", j.ID),
					logger.String("game_id", j.Log.GameID),
					logger.Error(err),
				)
				if w.onFail != nil {
					w.onFail(ctx, j, err)
				}
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process scores and stores a single job. Every job gets a fresh
// aggregator run, so no ledger state crosses games.
func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var names basepath.NameLookup
	if w.resolver != nil {
		names = w.resolver.Resolve(ctx, j.Log)
	}

	scoreStart := time.Now()
	card := w.scorer.Build(ctx, j.Log.GameID, j.Log.Plays, names)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))
	if card == nil {
		metrics.RecordScoringError()
		metrics.RecordWorkerError()
		metrics.RecordError("worker", "scoring_error")
		return fmt.Errorf("game %s: %w", j.Log.GameID, ErrNoScorecard)
	}
	card.RunID = j.ID
	card.GeneratedAt = time.Now().UTC()

	if err := w.store.SaveScorecard(ctx, card); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordError("worker", "store_error")
		return fmt.Errorf("store scorecard for game %s: %w", j.Log.GameID, err)
	}

	metrics.RecordGameScored()
	w.logger.Debug(ctx, "scored game",
		logger.String("job_id", j.ID),
		logger.String("game_id", j.Log.GameID),
		logger.String("source", j.Source),
		logger.Int("plays", len(j.Log.Plays)),
		logger.Duration("queued", start.Sub(j.SubmittedAt)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one defaults to a
// multiple of the CPU count.
func NewPool(workerCount int, q Queue, scorer Scorer, store Store, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, scorer, store, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop signals every worker and waits briefly for each to finish.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue and lets workers drain what is already queued.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)

	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
