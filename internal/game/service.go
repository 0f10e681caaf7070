package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/player"
	"planetwars-server/internal/session"
	"planetwars-server/internal/shared/errors"

	"golang.org/x/time/rate"
)

// Recorder stores the verdict of a finished match
type Recorder interface {
	RecordResult(ctx context.Context, result *Result) error
}

// Publisher receives a snapshot after every turn
type Publisher interface {
	PublishTurn(ctx context.Context, snapshot Snapshot) error
}

type ServiceConfig struct {
	TurnCap  int
	TurnRate float64
}

// Service is the match orchestrator: it broadcasts the galaxy, waits on
// the response barrier, applies accepted commands in player id order and
// drives the turn engine until a verdict.
type Service struct {
	galaxy   *galaxy.Galaxy
	roster   *player.Roster
	engine   *Engine
	sessions []*session.Session
	barrier  *session.Barrier
	limiter  *rate.Limiter

	recorder   Recorder
	publishers []Publisher

	snapshot atomic.Pointer[Snapshot]
	cancel   atomic.Pointer[context.CancelCauseFunc]
	logger   *slog.Logger
}

// NewService places every player on its starting planet. sessions must
// be aligned with roster.Players().
func NewService(
	cfg ServiceConfig,
	g *galaxy.Galaxy,
	roster *player.Roster,
	sessions []*session.Session,
	barrier *session.Barrier,
	logger *slog.Logger,
) (*Service, error) {
	players := roster.Players()
	if len(sessions) != len(players) {
		return nil, fmt.Errorf("have %d sessions for %d players", len(sessions), len(players))
	}
	for i, sess := range sessions {
		p, err := roster.Player(sess.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		if p != players[i] {
			return nil, fmt.Errorf("session for player %d is out of roster order at %d", sess.PlayerID, i)
		}
	}

	for _, p := range players {
		planet, ok := g.AssignStartingPlanet(p.ID)
		if !ok {
			logger.Warn("No starting planet left", "player_id", p.ID, "player", p.Name)
			continue
		}
		logger.Debug("Starting planet assigned", "player_id", p.ID, "planet_id", planet.ID)
	}

	s := &Service{
		galaxy:   g,
		roster:   roster,
		engine:   NewEngine(g, roster, cfg.TurnCap, logger),
		sessions: sessions,
		barrier:  barrier,
		logger:   logger.With("component", "game_service"),
	}

	if cfg.TurnRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.TurnRate), 1)
	}

	s.publishSnapshot()
	return s, nil
}

func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// WithPublisher adds a receiver for per-turn snapshots
func (s *Service) WithPublisher(p Publisher) *Service {
	s.publishers = append(s.publishers, p)
	return s
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// Snapshot returns the state published after the last completed turn.
// Safe to call from other goroutines.
func (s *Service) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// Run plays the match to its verdict. It only returns an error when ctx
// ends before the match does; the engine is then aborted as a draw.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	s.cancel.Store(&cancel)
	defer s.cancel.Store(nil)

	logger := s.logger.With("operation", "run")
	logger.Info("Match starting",
		"players", len(s.roster.Players()),
		"planets", len(s.galaxy.Planets()),
		"turn_cap", s.engine.turnCap,
	)

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return s.abort(ctx, err)
			}
		}

		if result := s.engine.Advance(); result != nil {
			return s.finish(ctx, result)
		}

		s.broadcast()

		responses, err := s.barrier.Collect(ctx, s.sessions)
		if err != nil {
			return s.abort(ctx, err)
		}
		s.apply(responses)

		if result := s.engine.EndTurn(); result != nil {
			return s.finish(ctx, result)
		}
		s.publishSnapshot()
		s.publish(ctx)
	}
}

func (s *Service) broadcast() {
	planets := s.galaxy.Planets()
	for i, p := range s.roster.Players() {
		sess := s.sessions[i]
		if sess.Disconnected() {
			continue
		}
		if err := sess.SendTurn(planets, p.TakeInbox()); err != nil {
			s.logger.Warn("Failed to send turn", "turn", s.engine.Turn(), "player_id", p.ID, "error", err)
		}
	}
}

// apply dispatches fleets and relays messages in player id order.
// Ownership of the source planet and available ships are not checked.
func (s *Service) apply(responses []*player.Response) {
	for i, p := range s.roster.Players() {
		resp := responses[i]

		for _, cmd := range resp.Fleets {
			if _, err := s.galaxy.Dispatch(p.ID, cmd.Source, cmd.Destination, cmd.NumShips); err != nil {
				s.logger.Debug("Skipping fleet command",
					"turn", s.engine.Turn(),
					"player_id", p.ID,
					"command", cmd.String(),
					"error", err,
				)
			}
		}

		if resp.Message != nil {
			if next := s.roster.NextOnTeam(p); next != nil {
				next.Deliver(*resp.Message)
			}
		}
	}
}

func (s *Service) finish(ctx context.Context, result *Result) (*Result, error) {
	s.publishSnapshot()
	s.publish(ctx)
	if s.recorder != nil {
		if err := s.recorder.RecordResult(ctx, result); err != nil {
			s.logger.Error("Failed to record match result", "error", err)
		}
	}
	return result, nil
}

// Abort stops a running match. Run then returns an error wrapping
// ErrAborted and the engine ends in a draw.
func (s *Service) Abort(operator string) error {
	if s.Snapshot().State == StateTerminated {
		return errors.Conflict("match already finished")
	}
	cancel := s.cancel.Load()
	if cancel == nil {
		return errors.Conflict("match is not running")
	}

	s.logger.Warn("Abort requested", "operator", operator)
	(*cancel)(fmt.Errorf("%w by operator %s", ErrAborted, operator))
	return nil
}

func (s *Service) abort(ctx context.Context, cause error) (*Result, error) {
	if c := context.Cause(ctx); c != nil {
		cause = c
	}
	s.logger.Warn("Match aborted", "turn", s.engine.Turn(), "error", cause)
	s.engine.Abort()
	s.publishSnapshot()
	s.publish(context.WithoutCancel(ctx))
	return nil, fmt.Errorf("match aborted on turn %d: %w", s.engine.Turn(), cause)
}

func (s *Service) publishSnapshot() {
	var eliminated []string
	for _, p := range s.roster.Players() {
		if p.Eliminated() {
			eliminated = append(eliminated, p.Name)
		}
	}

	s.snapshot.Store(&Snapshot{
		Turn:       s.engine.Turn(),
		State:      s.engine.State(),
		Scores:     s.engine.Scores().Scores(),
		Planets:    len(s.galaxy.Planets()),
		Fleets:     len(s.galaxy.Fleets()),
		Eliminated: eliminated,
		Result:     s.engine.Result(),
	})
}

func (s *Service) publish(ctx context.Context) {
	snapshot := s.Snapshot()
	for _, p := range s.publishers {
		if err := p.PublishTurn(ctx, snapshot); err != nil {
			s.logger.Warn("Failed to publish turn", "turn", snapshot.Turn, "error", err)
		}
	}
}
