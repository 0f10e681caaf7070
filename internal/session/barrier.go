package session

import (
	"context"
	"log/slog"
	"time"

	"planetwars-server/internal/player"
	"planetwars-server/internal/shared/errors"

	"golang.org/x/sync/errgroup"
)

// Barrier gathers one response from every session for a turn. Each
// pending session is read by its own goroutine writing into its own
// slot; the barrier closes when all of them finish or the per-turn
// deadline passes. Sessions that miss the deadline or are disconnected
// forfeit the turn with an empty response.
type Barrier struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewBarrier returns a barrier with the given per-turn deadline. A zero
// timeout waits for every connected session indefinitely.
func NewBarrier(timeout time.Duration, logger *slog.Logger) *Barrier {
	return &Barrier{
		timeout: timeout,
		logger:  logger.With("component", "barrier"),
	}
}

// Collect returns responses aligned with sessions. It only fails when
// ctx itself is done.
func (b *Barrier) Collect(ctx context.Context, sessions []*Session) ([]*player.Response, error) {
	turnCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		turnCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	responses := make([]*player.Response, len(sessions))
	pending := 0

	var g errgroup.Group
	for i, s := range sessions {
		if s.Disconnected() {
			responses[i] = player.NewResponse()
			continue
		}

		pending++
		g.Go(func() error {
			resp, err := s.Collect(turnCtx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				b.logger.Warn("Player forfeits turn",
					"player_id", s.PlayerID,
					"player", s.Name,
					"reason", forfeitReason(err),
					"error", err,
				)
				resp = player.NewResponse()
			}
			responses[i] = resp
			return nil
		})
	}

	b.logger.Debug("Waiting for responses", "pending", pending, "sessions", len(sessions))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return responses, nil
}

func forfeitReason(err error) string {
	if errors.Is(err, errors.ErrorTypeSessionDisconnected) {
		return "disconnected"
	}
	return "deadline"
}
