package player

import (
	"fmt"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/protocol"
)

type Player struct {
	ID      galaxy.PlayerID
	Team    galaxy.TeamID
	Name    string
	Command []string

	eliminated bool
	inbox      *int
}

func (p *Player) String() string {
	return fmt.Sprintf("<%s>", p.Name)
}

func (p *Player) Eliminated() bool {
	return p.eliminated
}

// Eliminate marks the player eliminated and reports whether this call
// made the transition. Elimination is never undone.
func (p *Player) Eliminate() bool {
	if p.eliminated {
		return false
	}
	p.eliminated = true
	return true
}

// Deliver stores a message for the next broadcast, replacing any message
// still waiting there.
func (p *Player) Deliver(msg int) {
	p.inbox = &msg
}

// TakeInbox returns the pending message, if any, and empties the inbox
func (p *Player) TakeInbox() *int {
	msg := p.inbox
	p.inbox = nil
	return msg
}

// Response is what one agent submitted for one turn
type Response struct {
	Fleets   []protocol.FleetCommand
	Message  *int
	Finished bool
}

func NewResponse() *Response {
	return &Response{}
}

// Add accumulates a fleet or message line. A later message replaces an
// earlier one.
func (r *Response) Add(line protocol.AgentLine) {
	switch line.Kind {
	case protocol.KindFleet:
		r.Fleets = append(r.Fleets, line.Fleet)
	case protocol.KindMessage:
		msg := line.Message
		r.Message = &msg
	case protocol.KindTerminator:
		r.Finished = true
	}
}
