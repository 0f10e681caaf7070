package match

import (
	"context"
	"log/slog"

	"planetwars-server/internal/game"
	"planetwars-server/internal/player"

	"github.com/google/uuid"
)

type ResultStore interface {
	CreateMatchResult(ctx context.Context, rec *Record) error
}

// Recorder persists the verdict of the match it was built for
type Recorder struct {
	store   ResultStore
	roster  *player.Roster
	matchID uuid.UUID
	mapPath string
	logger  *slog.Logger
}

func NewRecorder(store ResultStore, roster *player.Roster, matchID uuid.UUID, mapPath string, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:   store,
		roster:  roster,
		matchID: matchID,
		mapPath: mapPath,
		logger:  logger.With("component", "match_recorder", "match", matchID),
	}
}

func (r *Recorder) RecordResult(ctx context.Context, result *game.Result) error {
	rec := NewRecord(r.matchID, result, r.roster, r.mapPath)
	if err := r.store.CreateMatchResult(ctx, rec); err != nil {
		return err
	}

	r.logger.Info("Match result recorded",
		"match_id", rec.ID,
		"outcome", rec.Outcome,
		"turn", rec.Turn,
	)
	return nil
}
