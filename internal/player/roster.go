package player

import (
	"fmt"

	"planetwars-server/internal/galaxy"
)

type Entry struct {
	Team    galaxy.TeamID
	Name    string
	Command []string
}

// Roster is the fixed set of players for one match. Players keep their
// place in it after elimination so message relay order never changes.
type Roster struct {
	players []*Player
	byID    map[galaxy.PlayerID]*Player
	teams   map[galaxy.TeamID][]*Player
}

// NewRoster assigns ids 1..N in entry order
func NewRoster(entries []Entry) (*Roster, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyRoster
	}

	r := &Roster{
		byID:  make(map[galaxy.PlayerID]*Player, len(entries)),
		teams: make(map[galaxy.TeamID][]*Player, 2),
	}

	for i, e := range entries {
		if e.Team != galaxy.Team1 && e.Team != galaxy.Team2 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidTeam, e.Team)
		}

		id := galaxy.PlayerID(i + 1)
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", id)
		}

		p := &Player{ID: id, Team: e.Team, Name: name, Command: e.Command}
		r.players = append(r.players, p)
		r.byID[id] = p
		r.teams[e.Team] = append(r.teams[e.Team], p)
	}

	return r, nil
}

// Players returns every player in id order
func (r *Roster) Players() []*Player {
	return r.players
}

func (r *Roster) Player(id galaxy.PlayerID) (*Player, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
	}
	return p, nil
}

func (r *Roster) TeamOf(id galaxy.PlayerID) galaxy.TeamID {
	if p, ok := r.byID[id]; ok {
		return p.Team
	}
	return 0
}

func (r *Roster) Team(team galaxy.TeamID) []*Player {
	return r.teams[team]
}

func (r *Roster) Teams() []galaxy.TeamID {
	return []galaxy.TeamID{galaxy.Team1, galaxy.Team2}
}

// NextOnTeam returns the teammate after p in roster order, wrapping
// around. Eliminated teammates are not skipped. Returns nil for a team
// of one.
func (r *Roster) NextOnTeam(p *Player) *Player {
	team := r.teams[p.Team]
	if len(team) < 2 {
		return nil
	}
	for i, member := range team {
		if member == p {
			return team[(i+1)%len(team)]
		}
	}
	return nil
}

// Survivors counts the team members that are not eliminated
func (r *Roster) Survivors(team galaxy.TeamID) int {
	count := 0
	for _, p := range r.teams[team] {
		if !p.Eliminated() {
			count++
		}
	}
	return count
}
