package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS scorecards (
	game_id    TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL DEFAULT '',
	innings    INTEGER NOT NULL,
	card       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scorecards_updated ON scorecards(updated_at DESC);

CREATE TABLE IF NOT EXISTS unknown_plays (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id     TEXT NOT NULL,
	batter_id   TEXT NOT NULL DEFAULT '',
	batter_name TEXT NOT NULL DEFAULT '',
	event_code  TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	recorded_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_unknown_game ON unknown_plays(game_id);
`

// SQLiteStore implements Store and UnknownStore on SQLite.
//
// Scorecards are stored whole as JSON; the scorecards table only indexes
// them by game. Safe for concurrent use.
type SQLiteStore struct {
	db           *sql.DB
	maxOpenConns int
	logger       logger.Logger
	now          func() time.Time
}

var (
	_ Store        = (*SQLiteStore)(nil)
	_ UnknownStore = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (creating if needed) the database at path and
// applies the schema.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		maxOpenConns: 4,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("repository")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	memory := path == MemoryPath || strings.Contains(path, "mode=memory")
	if memory {
		s.maxOpenConns = 1
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	s.db = db

	if !memory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	s.logger.Info(ctx, "store opened", logger.String("path", path))
	return s, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Milliseconds()))
}

// SaveScorecard inserts or replaces the scorecard for card.GameID.
func (s *SQLiteStore) SaveScorecard(ctx context.Context, card *types.Scorecard) error {
	defer s.observe("save_scorecard", time.Now())

	if card == nil || card.GameID == "" {
		return ErrInvalidCard
	}
	raw, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("encode scorecard %s: %w", card.GameID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scorecards (game_id, run_id, innings, card, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			run_id = excluded.run_id,
			innings = excluded.innings,
			card = excluded.card,
			updated_at = excluded.updated_at`,
		card.GameID, card.RunID, card.Innings, string(raw), s.now().UnixNano())
	if err != nil {
		metrics.RecordError("repository", "save_scorecard")
		return fmt.Errorf("save scorecard %s: %w", card.GameID, err)
	}
	return nil
}

// GetScorecard returns the stored scorecard for gameID.
func (s *SQLiteStore) GetScorecard(ctx context.Context, gameID string) (*types.Scorecard, error) {
	defer s.observe("get_scorecard", time.Now())

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT card FROM scorecards WHERE game_id = ?`, gameID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordError("repository", "get_scorecard")
		return nil, fmt.Errorf("load scorecard %s: %w", gameID, err)
	}

	var card types.Scorecard
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		return nil, fmt.Errorf("decode scorecard %s: %w", gameID, err)
	}
	return &card, nil
}

// ListGames returns up to limit stored games, newest first.
func (s *SQLiteStore) ListGames(ctx context.Context, limit int) ([]GameSummary, error) {
	defer s.observe("list_games", time.Now())

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, run_id, innings, updated_at FROM scorecards
		ORDER BY updated_at DESC, game_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := make([]GameSummary, 0, limit)
	for rows.Next() {
		var g GameSummary
		var updated int64
		if err := rows.Scan(&g.GameID, &g.RunID, &g.Innings, &updated); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, g)
	}
	return out, rows.Err()
}

// Count returns the number of stored scorecards, or 0 on error.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scorecards`).Scan(&n); err != nil {
		s.logger.Error(ctx, "count scorecards", logger.Error(err))
		return 0
	}
	return n
}

// RecordUnknown persists one unclassified play.
func (s *SQLiteStore) RecordUnknown(ctx context.Context, p outcome.UnknownPlay) error {
	defer s.observe("record_unknown", time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unknown_plays (game_id, batter_id, batter_name, event_code, description, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.GameID, p.BatterID, p.BatterName, string(p.EventCode), p.Description, s.now().UnixNano())
	if err != nil {
		metrics.RecordError("repository", "record_unknown")
		return fmt.Errorf("record unknown play: %w", err)
	}
	return nil
}

// ListUnknown returns up to limit unknown plays, newest first.
func (s *SQLiteStore) ListUnknown(ctx context.Context, limit int) ([]UnknownRecord, error) {
	defer s.observe("list_unknown", time.Now())

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, batter_id, batter_name, event_code, description, recorded_at
		FROM unknown_plays ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unknown plays: %w", err)
	}
	defer rows.Close()

	out := make([]UnknownRecord, 0, limit)
	for rows.Next() {
		var r UnknownRecord
		var recorded int64
		if err := rows.Scan(&r.ID, &r.GameID, &r.BatterID, &r.BatterName, &r.EventCode, &r.Description, &recorded); err != nil {
			return nil, fmt.Errorf("scan unknown play: %w", err)
		}
		r.RecordedAt = time.Unix(0, recorded).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
