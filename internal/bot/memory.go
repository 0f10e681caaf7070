package bot

import (
	"math/rand"

	"planetwars-server/internal/galaxy"
)

// Memory is what an agent carries from one turn to the next.
//
// KnownAllies, Introduced and History persist for the whole match.
// FlightsInProgress is reset at the start of every turn: it only stops two
// of the agent's planets from picking the same target in one turn.
type Memory struct {
	KnownAllies       map[galaxy.PlayerID]bool
	FlightsInProgress map[int]bool
	History           []*TurnState
	Introduced        bool

	rand *rand.Rand
}

func NewMemory(rng *rand.Rand) *Memory {
	return &Memory{
		KnownAllies:       make(map[galaxy.PlayerID]bool),
		FlightsInProgress: make(map[int]bool),
		rand:              rng,
	}
}

func (m *Memory) beginTurn() {
	clear(m.FlightsInProgress)
}

// learn records the sender carried by an incoming relay message
func (m *Memory) learn(msg *int) {
	if msg == nil || *msg == 0 {
		return
	}
	m.KnownAllies[galaxy.PlayerID(*msg)] = true
}

// relay runs the introduction handshake. Until the agent's own id has
// travelled the whole team ring and come back, it sends its id when the
// inbox is empty and forwards whatever it received otherwise.
func (m *Memory) relay(state *TurnState) *int {
	if m.Introduced {
		return nil
	}

	if state.Message == nil || *state.Message == 0 {
		me := int(state.Me)
		return &me
	}
	if galaxy.PlayerID(*state.Message) == state.Me {
		m.Introduced = true
		return nil
	}
	forward := *state.Message
	return &forward
}
