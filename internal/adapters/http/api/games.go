package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/scorebook/internal/adapters/mq/queue"
	"github.com/okian/scorebook/internal/adapters/repository"
	"github.com/okian/scorebook/internal/adapters/source"
	"github.com/okian/scorebook/pkg/metrics"
)

// maxGameBody caps a POST /games body.
const maxGameBody = 8 << 20

type ackResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

const defaultGamesLimit = 50

type gamesResponse struct {
	Games []repository.GameSummary `json:"games"`
}

// GamesHandler handles game submission and scorecard reads.
type GamesHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps Dependencies, maxLimit int) *GamesHandler {
	return &GamesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGames dispatches /games by method.
func (h *GamesHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.HandlePostGame(w, r)
	case http.MethodGet:
		h.HandleListGames(w, r)
	default:
		http.NotFound(w, r)
	}
}

// HandleListGames handles GET /games?limit=N requests, newest first.
func (h *GamesHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_games"
	n, err := parseLimit(r, defaultGamesLimit, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	games, err := h.deps.ListGames(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrapKind(op, ErrServe, err))
		return
	}
	if games == nil {
		games = []repository.GameSummary{}
	}
	writeJSON(w, http.StatusOK, gamesResponse{Games: games})
}

// HandlePostGame handles POST /games requests.
func (h *GamesHandler) HandlePostGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_game"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	log, err := source.DecodeJSON(http.MaxBytesReader(w, r.Body, maxGameBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(log.GameID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing game_id")))
		return
	}
	if len(log.Plays) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("no plays")))
		return
	}
	if err := source.Validate(log.Plays); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check: mark as seen before enqueueing.
	if h.deps.SeenAndRecord(r.Context(), log.GameID) {
		metrics.RecordGameDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	jobID, err := h.deps.Enqueue(r.Context(), log)
	if err != nil {
		// Rollback so the game can be resubmitted.
		h.deps.Unrecord(r.Context(), log.GameID)
		if errors.Is(err, queue.ErrQueueFull) {
			writeError(w, http.StatusTooManyRequests, "backpressure", wrapKind(op, ErrBackpressure, nil))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrapKind(op, ErrServe, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", JobID: jobID})
}

// HandleGetGame handles GET /games/{game_id} requests.
func (h *GamesHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/games/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, nil))
		return
	}
	card, err := h.deps.Scorecard(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", wrapKind(op, ErrNotFound, nil))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
