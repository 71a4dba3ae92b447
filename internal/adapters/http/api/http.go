// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/scorebook/internal/adapters/repository"
	"github.com/okian/scorebook/internal/domain/dedupe"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue submits a game for async scoring and returns the job id.
	// A full queue is reported with an error wrapping queue.ErrQueueFull.
	Enqueue(ctx context.Context, log model.GameLog) (string, error)

	Scorecard(ctx context.Context, gameID string) (*types.Scorecard, error)
	ListGames(ctx context.Context, limit int) ([]repository.GameSummary, error)
	Classify(ctx context.Context, in outcome.Input) outcome.Outcome
	UnknownPlays(ctx context.Context, limit int) ([]repository.UnknownRecord, error)
}

// DefaultMaxLimit caps ?limit= on list endpoints.
const DefaultMaxLimit = 1000

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	gamesHandler    *GamesHandler
	classifyHandler *ClassifyHandler
	unknownHandler  *UnknownHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		gamesHandler:    NewGamesHandler(deps, maxLimit),
		classifyHandler: NewClassifyHandler(deps),
		unknownHandler:  NewUnknownHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/games", MetricsMiddleware(s.gamesHandler.HandleGames, "games"))
	mux.HandleFunc("/games/", MetricsMiddleware(s.gamesHandler.HandleGetGame, "game"))
	mux.HandleFunc("/classify", MetricsMiddleware(s.classifyHandler.HandleClassify, "classify"))
	mux.HandleFunc("/unknown-plays", MetricsMiddleware(s.unknownHandler.HandleList, "unknown_plays"))
}
