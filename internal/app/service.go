// Package service wires the scoring pipeline together and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/scorebook/internal/adapters/mq/queue"
	"github.com/okian/scorebook/internal/adapters/mq/worker"
	"github.com/okian/scorebook/internal/adapters/remote"
	"github.com/okian/scorebook/internal/adapters/repository"
	"github.com/okian/scorebook/internal/adapters/roster"
	"github.com/okian/scorebook/internal/adapters/source"
	"github.com/okian/scorebook/internal/adapters/unknownsink"
	"github.com/okian/scorebook/internal/domain/dedupe"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/scorecard"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// Job sources.
const (
	SourceAPI       = "api"
	SourceScheduler = "scheduler"
)

// Sentinel errors returned by Service.
var (
	ErrNotStarted = errors.New("service not started")
)

// Service implements the API dependencies for the scorebook system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      *repository.SQLiteStore
	deduper    dedupe.Deduper
	queue      queue.Queue
	classifier *outcome.Classifier
	scorer     *scorecard.Scorer
	directory  *roster.Directory
	workerPool *worker.Pool
	savant     *source.SavantClient
	scheduler  *scheduler

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	dbPath           string
	unknownLogPath   string
	rosterPath       string
	savantURL        string
	peopleURL        string
	fetchRPS         float64
	fetchTimeout     time.Duration
	nameCacheSize    int
	fetchSchedule    string
	keyPlayThreshold float64

	// State
	started  bool
	cancel   context.CancelFunc
	accepted atomic.Int64
	ingested atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the scoring queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submitted game ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDBPath sets the SQLite database path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithUnknownLogPath sets the text file unknown plays are appended to.
// An empty path disables the file.
func WithUnknownLogPath(path string) Option {
	return func(s *Service) { s.unknownLogPath = path }
}

// WithRosterPath loads player names from a YAML roster at start.
func WithRosterPath(path string) Option {
	return func(s *Service) { s.rosterPath = path }
}

// WithSavantURL sets the Baseball Savant host.
func WithSavantURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.savantURL = u
		}
	}
}

// WithPeopleURL enables remote name lookups against u; empty disables them.
func WithPeopleURL(u string) Option {
	return func(s *Service) { s.peopleURL = u }
}

// WithFetchRate sets the request rate for remote sources.
func WithFetchRate(rps float64) Option {
	return func(s *Service) {
		if rps > 0 {
			s.fetchRPS = rps
		}
	}
}

// WithFetchTimeout sets the per-request timeout for remote sources.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithNameCacheSize sets how many remote name lookups are cached.
func WithNameCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.nameCacheSize = n
		}
	}
}

// WithFetchSchedule sets the cron spec for pulling the previous day's games.
func WithFetchSchedule(spec string) Option {
	return func(s *Service) { s.fetchSchedule = spec }
}

// WithKeyPlayThreshold sets the win expectancy swing that flags a key play.
func WithKeyPlayThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 {
			s.keyPlayThreshold = t
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        1024,
		dedupeSize:       50_000,
		dbPath:           repository.MemoryPath,
		savantURL:        source.DefaultSavantURL,
		fetchRPS:         2,
		fetchTimeout:     30 * time.Second,
		nameCacheSize:    4096,
		keyPlayThreshold: model.KeyPlayThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start opens the store and starts the workers and, when configured, the
// ingestion schedule.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting scorebook service...")

	store, err := repository.NewSQLiteStore(ctx, s.dbPath, repository.WithLogger(s.logger.Named("repository")))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	sinks := unknownsink.Multi{unknownsink.NewStoreSink(store)}
	if s.unknownLogPath != "" {
		sinks = append(sinks, unknownsink.NewFileSink(s.unknownLogPath))
	}
	s.classifier = outcome.NewClassifier(
		outcome.WithSink(sinks),
		outcome.WithLogger(s.logger.Named("classifier")),
	)
	s.scorer = scorecard.NewScorer(
		scorecard.WithClassifier(s.classifier),
		scorecard.WithKeyPlayThreshold(s.keyPlayThreshold),
		scorecard.WithLogger(s.logger.Named("scorecard")),
	)

	directory, err := s.newDirectory()
	if err != nil {
		_ = store.Close()
		return err
	}
	s.directory = directory
	s.savant = source.NewSavantClient(
		source.WithBaseURL(s.savantURL),
		source.WithRemote(s.remote("savant")),
		source.WithLogger(s.logger.Named("savant")),
	)

	s.store = store
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.queue, s.scorer, s.store,
		worker.WithResolver(s.directory),
		worker.WithFailureHandler(s.jobFailed),
		worker.WithLogger(s.logger.Named("worker")),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool.Start(runCtx)

	if s.fetchSchedule != "" {
		sched, err := newScheduler(s.fetchSchedule, s.ingestYesterday, s.logger.Named("scheduler"))
		if err != nil {
			cancel()
			_ = s.workerPool.Shutdown(ctx)
			_ = store.Close()
			return err
		}
		s.scheduler = sched
		go sched.run(runCtx)
	}

	s.started = true
	s.logger.Info(ctx, "scorebook service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("db", s.dbPath),
		logger.String("schedule", s.fetchSchedule),
	)
	return nil
}

func (s *Service) remote(name string) *remote.Client {
	return remote.New(name,
		remote.WithRate(s.fetchRPS, 1),
		remote.WithTimeout(s.fetchTimeout),
		remote.WithLogger(s.logger.Named(name)),
	)
}

func (s *Service) newDirectory() (*roster.Directory, error) {
	opts := []roster.DirectoryOption{roster.WithDirectoryLogger(s.logger.Named("roster"))}
	if s.rosterPath != "" {
		names, err := roster.LoadFile(s.rosterPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, roster.WithRoster(names))
	}
	if s.peopleURL != "" {
		opts = append(opts, roster.WithPeople(roster.NewPeopleClient(
			roster.WithPeopleURL(s.peopleURL),
			roster.WithPeopleRemote(s.remote("people")),
			roster.WithCacheSize(s.nameCacheSize),
		)))
	}
	return roster.NewDirectory(opts...), nil
}

// Stop stops the schedule, drains queued jobs and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping scorebook service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "close store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "scorebook service stopped")
}

// SeenAndRecord atomically checks if a game id was submitted and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord forgets a game id so it can be submitted again.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered game ids.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits a game for asynchronous scoring and returns its job id.
func (s *Service) Enqueue(ctx context.Context, log model.GameLog) (string, error) {
	return s.enqueue(ctx, log, SourceAPI)
}

func (s *Service) enqueue(ctx context.Context, log model.GameLog, src string) (string, error) {
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	j := queue.Job{
		ID:          uuid.NewString(),
		Log:         log,
		Source:      src,
		SubmittedAt: time.Now(),
	}
	if err := q.Enqueue(ctx, j); err != nil {
		return "", fmt.Errorf("enqueue game %s: %w", log.GameID, err)
	}
	s.accepted.Add(1)
	s.logger.Debug(ctx, "game enqueued",
		logger.String("game_id", log.GameID),
		logger.String("job_id", j.ID),
		logger.String("source", src),
	)
	return j.ID, nil
}

// jobFailed forgets the game of a job that produced no stored scorecard so
// that a later submission is scored instead of reported as a duplicate.
func (s *Service) jobFailed(ctx context.Context, j queue.Job, err error) {
	s.Unrecord(ctx, j.Log.GameID)
	s.logger.Warn(ctx, "game released for resubmission",
		logger.String("game_id", j.Log.GameID),
		logger.String("job_id", j.ID),
		logger.Error(err),
	)
}

// Scorecard returns the stored scorecard of gameID.
func (s *Service) Scorecard(ctx context.Context, gameID string) (*types.Scorecard, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store.GetScorecard(ctx, gameID)
}

// ListGames returns up to limit stored games, most recently scored first.
func (s *Service) ListGames(ctx context.Context, limit int) ([]repository.GameSummary, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store.ListGames(ctx, limit)
}

// Classify classifies a single play. Unknown plays reach the sinks.
func (s *Service) Classify(ctx context.Context, in outcome.Input) outcome.Outcome {
	c := s.classifier
	if c == nil {
		c = outcome.NewClassifier(outcome.WithLogger(s.logger))
	}
	return c.Classify(ctx, in)
}

// UnknownPlays returns up to limit recorded unknown plays, newest first.
func (s *Service) UnknownPlays(ctx context.Context, limit int) ([]repository.UnknownRecord, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store.ListUnknown(ctx, limit)
}

// IngestDate fetches every game played on date and enqueues the ones not
// seen before. It returns how many were enqueued.
func (s *Service) IngestDate(ctx context.Context, date time.Time) (int, error) {
	s.mu.RLock()
	savant := s.savant
	s.mu.RUnlock()
	if savant == nil {
		return 0, ErrNotStarted
	}

	games, err := savant.FetchDate(ctx, date)
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, g := range games {
		if err := source.Validate(g.Plays); err != nil {
			s.logger.Warn(ctx, "skipping invalid game", logger.String("game_id", g.GameID), logger.Error(err))
			continue
		}
		if s.SeenAndRecord(ctx, g.GameID) {
			metrics.RecordGameDuplicate()
			continue
		}
		if _, err := s.enqueue(ctx, g, SourceScheduler); err != nil {
			s.Unrecord(ctx, g.GameID)
			return enqueued, err
		}
		enqueued++
	}
	s.ingested.Add(int64(enqueued))
	return enqueued, nil
}

func (s *Service) ingestYesterday(ctx context.Context, now time.Time) {
	day := now.AddDate(0, 0, -1)
	n, err := s.IngestDate(ctx, day)
	if err != nil {
		s.logger.Error(ctx, "scheduled ingestion failed",
			logger.String("date", day.Format(time.DateOnly)), logger.Error(err))
		return
	}
	s.logger.Info(ctx, "scheduled ingestion complete",
		logger.String("date", day.Format(time.DateOnly)), logger.Int("games", n))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"gamesAccepted": s.accepted.Load(),
		"gamesIngested": s.ingested.Load(),
		"fetchSchedule": s.fetchSchedule,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		storedGames := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["storedGames"] = storedGames
		stats["submittedGames"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredGames(storedGames)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}
