package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
)

const maxClassifyBody = 64 << 10

// classifyRequest mirrors the OpenAPI schema for POST /classify.
type classifyRequest struct {
	EventCode   string `json:"event_code"`
	Description string `json:"description"`
	BatterName  string `json:"batter_name"`
	GameID      string `json:"game_id"`
	BatterID    string `json:"batter_id"`
}

type classifyResponse struct {
	Notation string `json:"notation"`
	Kind     string `json:"kind"`
}

// ClassifyHandler classifies one play without scoring a game.
type ClassifyHandler struct {
	deps Dependencies
}

// NewClassifyHandler creates a new classify handler.
func NewClassifyHandler(deps Dependencies) *ClassifyHandler {
	return &ClassifyHandler{deps: deps}
}

// HandleClassify handles POST /classify requests.
func (h *ClassifyHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req classifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.EventCode) == "" && strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, errors.New("event_code or description required")))
		return
	}

	o := h.deps.Classify(r.Context(), outcome.Input{
		Code:        model.ParseEventCode(req.EventCode),
		Description: req.Description,
		BatterName:  req.BatterName,
		GameID:      req.GameID,
		BatterID:    req.BatterID,
	})
	writeJSON(w, http.StatusOK, classifyResponse{Notation: o.Notation(), Kind: o.Kind.String()})
}
