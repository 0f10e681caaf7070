package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"planetwars-server/internal/game"
	"planetwars-server/internal/match"
	"planetwars-server/internal/middleware"
	"planetwars-server/internal/shared/errors"
	"planetwars-server/internal/shared/response"
)

type MatchControl interface {
	Snapshot() game.Snapshot
	Abort(operator string) error
}

type ResultLister interface {
	GetRecentResults(ctx context.Context, limit int) ([]match.Record, error)
}

const (
	defaultResultLimit = 20
	maxResultLimit     = 100
)

type MatchHandler struct {
	control MatchControl
	results ResultLister
}

// NewMatchHandler serves the running match. results may be nil when
// persistence is off.
func NewMatchHandler(control MatchControl, results ResultLister) *MatchHandler {
	return &MatchHandler{control: control, results: results}
}

func (h *MatchHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, h.control.Snapshot())
}

type AbortResponse struct {
	Aborted bool `json:"aborted"`
	Turn    int  `json:"turn"`
}

func (h *MatchHandler) Abort(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "match_abort")

	operator := "unknown"
	if claims := middleware.GetClaimsFromContext(r); claims != nil {
		operator = claims.Operator
	}

	if err := h.control.Abort(operator); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusAccepted, AbortResponse{Aborted: true, Turn: h.control.Snapshot().Turn})
}

func (h *MatchHandler) GetRecentResults(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "match_results")

	if h.results == nil {
		response.Error(w, r, logger, errors.NotFoundf("match results are not stored on this server"))
		return
	}

	limit := defaultResultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxResultLimit {
			response.Error(w, r, logger, errors.Validationf("limit must be between 1 and %d", maxResultLimit))
			return
		}
		limit = n
	}

	records, err := h.results.GetRecentResults(r.Context(), limit)
	if err != nil {
		response.Error(w, r, logger, errors.WrapExternal("failed to load match results", err))
		return
	}

	response.Success(w, http.StatusOK, records)
}
