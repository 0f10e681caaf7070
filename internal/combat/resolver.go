package combat

import (
	"log/slog"

	"planetwars-server/internal/galaxy"
)

// TeamLookup maps a player to the team it fights for
type TeamLookup interface {
	TeamOf(id galaxy.PlayerID) galaxy.TeamID
}

type Resolver struct {
	teams  TeamLookup
	logger *slog.Logger
}

func NewResolver(teams TeamLookup, logger *slog.Logger) *Resolver {
	return &Resolver{
		teams:  teams,
		logger: logger.With("component", "combat_resolver"),
	}
}

// Battle is the pure outcome of a fleet meeting a garrison. A same-team
// fleet reinforces; otherwise the larger side survives with the
// difference and ties go to the defender.
func Battle(fleetShips, planetShips int, sameTeam bool) (captured bool, ships int) {
	switch {
	case sameTeam:
		return false, planetShips + fleetShips
	case fleetShips > planetShips:
		return true, fleetShips - planetShips
	default:
		return false, planetShips - fleetShips
	}
}

// FleetVsPlanet applies the battle rule to the planet in place
func (r *Resolver) FleetVsPlanet(f *galaxy.Fleet, p *galaxy.Planet) {
	sameTeam := false
	if owner, ok := p.Owner.Player(); ok {
		sameTeam = r.teams.TeamOf(owner) == r.teams.TeamOf(f.Owner)
	}

	captured, ships := Battle(f.NumShips, p.NumShips, sameTeam)
	if captured {
		r.logger.Debug("Planet captured",
			"planet_id", p.ID,
			"previous_owner", p.Owner.String(),
			"new_owner", f.Owner,
			"ships", ships,
		)
		p.Owner = galaxy.OwnedBy(f.Owner)
	}
	p.NumShips = ships
}

// Resolve settles every planet that received fleets this turn
func (r *Resolver) Resolve(g *galaxy.Galaxy) {
	for _, p := range g.Planets() {
		if len(p.ArrivedFleets) > 0 {
			r.ResolvePlanet(p)
		}
	}
}

type teamForce struct {
	total   int
	captain galaxy.PlayerID
	weakest int
	present bool
}

// ResolvePlanet settles the fleets that arrived at p and clears them.
// Several fleets are merged per team under the owner of that team's
// smallest fleet; only the surplus of the stronger team meets the
// garrison, and equal totals annihilate without touching the planet.
func (r *Resolver) ResolvePlanet(p *galaxy.Planet) {
	defer func() { p.ArrivedFleets = nil }()

	switch len(p.ArrivedFleets) {
	case 0:
		return
	case 1:
		r.FleetVsPlanet(p.ArrivedFleets[0], p)
		return
	}

	forces := map[galaxy.TeamID]*teamForce{
		galaxy.Team1: {},
		galaxy.Team2: {},
	}
	for _, f := range p.ArrivedFleets {
		force, ok := forces[r.teams.TeamOf(f.Owner)]
		if !ok {
			r.logger.Warn("Fleet owner has no team, ignoring fleet", "planet_id", p.ID, "owner", f.Owner)
			continue
		}
		force.total += f.NumShips
		if !force.present || f.NumShips < force.weakest {
			force.captain = f.Owner
			force.weakest = f.NumShips
			force.present = true
		}
	}

	one, two := forces[galaxy.Team1], forces[galaxy.Team2]
	if one.total == two.total {
		r.logger.Debug("Arriving fleets annihilated", "planet_id", p.ID, "ships", one.total)
		return
	}

	winner := one
	if two.total > one.total {
		winner = two
	}

	remainder := &galaxy.Fleet{
		Destination: p,
		NumShips:    abs(one.total - two.total),
		Owner:       winner.captain,
	}
	r.FleetVsPlanet(remainder, p)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
