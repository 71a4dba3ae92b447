package api

import (
	"net/http"

	"github.com/okian/scorebook/internal/adapters/repository"
)

const defaultUnknownLimit = 50

type unknownResponse struct {
	Plays []repository.UnknownRecord `json:"plays"`
}

// UnknownHandler lists plays the classifier could not score.
type UnknownHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewUnknownHandler creates a new unknown-plays handler.
func NewUnknownHandler(deps Dependencies, maxLimit int) *UnknownHandler {
	return &UnknownHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /unknown-plays?limit=N requests.
func (h *UnknownHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.unknown_plays"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := parseLimit(r, defaultUnknownLimit, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	plays, err := h.deps.UnknownPlays(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrapKind(op, ErrServe, err))
		return
	}
	if plays == nil {
		plays = []repository.UnknownRecord{}
	}
	writeJSON(w, http.StatusOK, unknownResponse{Plays: plays})
}
