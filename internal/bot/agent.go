package bot

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"

	"planetwars-server/internal/protocol"
)

// Agent plays one seat of a match over a pair of streams
type Agent struct {
	memory *Memory
	logger *slog.Logger
}

func NewAgent(rng *rand.Rand, logger *slog.Logger) *Agent {
	return &Agent{
		memory: NewMemory(rng),
		logger: logger.With("component", "agent"),
	}
}

func (a *Agent) Memory() *Memory {
	return a.memory
}

// Play answers one turn
func (a *Agent) Play(state *TurnState, w *bufio.Writer) error {
	mem := a.memory
	mem.beginTurn()
	mem.learn(state.Message)
	state.classify(mem.KnownAllies)

	outgoing := mem.relay(state)
	fleets := Decide(state, mem)
	mem.History = append(mem.History, state)

	a.logger.Debug("Turn played",
		"turn", len(mem.History)-1,
		"player_id", state.Me,
		"fleets", len(fleets),
		"introduced", mem.Introduced,
		"known_allies", len(mem.KnownAllies),
	)

	return protocol.WriteResponse(w, fleets, outgoing)
}

// Run plays turns until the engine closes r or ctx is cancelled
func (a *Agent) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := NewTurnReader(r, a.logger)
	writer := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		state, err := reader.Next()
		if errors.Is(err, io.EOF) {
			a.logger.Info("Engine closed the stream", "turns", len(a.memory.History))
			return nil
		}
		if err != nil {
			return err
		}

		if err := a.Play(state, writer); err != nil {
			return err
		}
	}
}
