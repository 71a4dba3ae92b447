// Package repository persists scorecards and unclassified plays.
package repository

import (
	"context"
	"time"

	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/types"
)

// GameSummary is a stored scorecard's index row.
type GameSummary struct {
	GameID    string    `json:"game_id"`
	RunID     string    `json:"run_id,omitempty"`
	Innings   int       `json:"innings"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnknownRecord is one persisted unclassified play.
type UnknownRecord struct {
	ID          int64     `json:"id"`
	GameID      string    `json:"game_id"`
	BatterID    string    `json:"batter_id,omitempty"`
	BatterName  string    `json:"batter_name,omitempty"`
	EventCode   string    `json:"event_code,omitempty"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Store provides read/write access to scored games.
type Store interface {
	// SaveScorecard inserts or replaces the scorecard for card.GameID.
	SaveScorecard(ctx context.Context, card *types.Scorecard) error

	// GetScorecard returns ErrNotFound if the game was never scored.
	GetScorecard(ctx context.Context, gameID string) (*types.Scorecard, error)

	// ListGames returns the most recently saved games first.
	ListGames(ctx context.Context, limit int) ([]GameSummary, error)

	// Count returns the number of stored scorecards.
	Count(ctx context.Context) int
}

// UnknownStore keeps plays the classifier could not place.
type UnknownStore interface {
	RecordUnknown(ctx context.Context, p outcome.UnknownPlay) error

	// ListUnknown returns the most recent unknown plays first.
	ListUnknown(ctx context.Context, limit int) ([]UnknownRecord, error)
}
