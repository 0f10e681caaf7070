package game

import (
	"log/slog"

	"planetwars-server/internal/combat"
	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/player"
)

// Engine advances the galaxy one turn at a time. It starts INITIAL at
// turn 0, where nothing moves, becomes ACTIVE from turn 1 and ends
// TERMINATED on a decisive elimination, a mutual elimination or the
// turn cap.
type Engine struct {
	galaxy   *galaxy.Galaxy
	roster   *player.Roster
	resolver *combat.Resolver
	scores   *ScoreKeeper
	turnCap  int

	state  State
	turn   int
	result *Result

	logger *slog.Logger
}

func NewEngine(g *galaxy.Galaxy, roster *player.Roster, turnCap int, logger *slog.Logger) *Engine {
	return &Engine{
		galaxy:   g,
		roster:   roster,
		resolver: combat.NewResolver(roster, logger),
		scores:   NewScoreKeeper(g, roster),
		turnCap:  turnCap,
		state:    StateInitial,
		logger:   logger.With("component", "turn_engine"),
	}
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Turn() int {
	return e.turn
}

func (e *Engine) Result() *Result {
	return e.result
}

func (e *Engine) Scores() *ScoreKeeper {
	return e.scores
}

// Advance runs fleet movement, combat, growth and the elimination check
// for the current turn. It returns the verdict when the match ends.
func (e *Engine) Advance() *Result {
	switch e.state {
	case StateInitial:
		return nil
	case StateTerminated:
		return e.result
	}

	e.galaxy.AdvanceFleets()
	e.resolver.Resolve(e.galaxy)
	e.galaxy.ApplyGrowth()

	if result := e.eliminationCheck(); result != nil {
		return e.terminate(result)
	}
	return nil
}

// EndTurn moves to the next turn, or ends the match on the turn cap
func (e *Engine) EndTurn() *Result {
	if e.state == StateTerminated {
		return e.result
	}

	e.turn++
	if e.state == StateInitial {
		e.state = StateActive
	}

	if e.turn >= e.turnCap {
		e.logger.Info("Turn cap reached", "turn", e.turn)
		return e.terminate(e.scores.CapVerdict(e.turn))
	}
	return nil
}

// Abort ends the match as a draw without consulting scores
func (e *Engine) Abort() *Result {
	if e.state == StateTerminated {
		return e.result
	}
	return e.terminate(&Result{Outcome: OutcomeDraw, Turn: e.turn, Scores: e.scores.Scores()})
}

func (e *Engine) terminate(result *Result) *Result {
	e.state = StateTerminated
	e.result = result
	e.logger.Info("Match finished",
		"turn", result.Turn,
		"outcome", result.Outcome,
		"winner", result.Winner,
		"turn_cap_reached", result.TurnCapReached,
	)
	return result
}

func (e *Engine) eliminationCheck() *Result {
	for _, p := range e.roster.Players() {
		if p.Eliminated() || e.galaxy.OwnedCount(p.ID) > 0 {
			continue
		}
		if p.Eliminate() {
			e.logger.Info("Player eliminated", "turn", e.turn, "player_id", p.ID, "player", p.Name)
		}
	}

	one := e.roster.Survivors(galaxy.Team1)
	two := e.roster.Survivors(galaxy.Team2)

	result := &Result{Turn: e.turn, Scores: e.scores.Scores()}
	switch {
	case one == 0 && two == 0:
		result.Outcome = OutcomeDraw
	case one == 0:
		result.Outcome = OutcomeWin
		result.Winner = galaxy.Team2
	case two == 0:
		result.Outcome = OutcomeWin
		result.Winner = galaxy.Team1
	default:
		return nil
	}

	if result.Outcome == OutcomeWin {
		result.Members = teamNames(e.roster.Team(result.Winner))
	}
	return result
}
