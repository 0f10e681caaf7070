package galaxy

import (
	"math"

	"planetwars-server/internal/shared/errors"
)

// Galaxy is the shared simulation state: a fixed set of planets in
// registration order and the fleets currently in flight.
type Galaxy struct {
	planets map[int]*Planet
	order   []*Planet
	fleets  []*Fleet
}

func New(planets []*Planet) (*Galaxy, error) {
	g := &Galaxy{
		planets: make(map[int]*Planet, len(planets)),
		order:   make([]*Planet, 0, len(planets)),
	}

	for _, p := range planets {
		if _, exists := g.planets[p.ID]; exists {
			return nil, errors.Validationf("duplicate planet id %d", p.ID)
		}
		g.planets[p.ID] = p
		g.order = append(g.order, p)
	}

	return g, nil
}

func (g *Galaxy) Planet(id int) (*Planet, bool) {
	p, ok := g.planets[id]
	return p, ok
}

// Planets returns every planet in registration order
func (g *Galaxy) Planets() []*Planet {
	return g.order
}

func (g *Galaxy) Fleets() []*Fleet {
	return g.fleets
}

// AssignStartingPlanet gives the first unowned planet to the player
func (g *Galaxy) AssignStartingPlanet(id PlayerID) (*Planet, bool) {
	for _, p := range g.order {
		if !p.Owner.IsOwned() {
			p.Owner = OwnedBy(id)
			return p, true
		}
	}
	return nil, false
}

// ApplyGrowth adds each planet's growth rate to its garrison. Unowned
// planets grow too.
func (g *Galaxy) ApplyGrowth() {
	for _, p := range g.order {
		p.NumShips += p.GrowthRate
	}
}

// AdvanceFleets moves every fleet one turn closer and lands the ones
// whose counter reaches zero on their destination.
func (g *Galaxy) AdvanceFleets() {
	inFlight := g.fleets[:0]
	for _, f := range g.fleets {
		f.RemainingTurns--
		if f.RemainingTurns == 0 {
			f.Destination.ArrivedFleets = append(f.Destination.ArrivedFleets, f)
			continue
		}
		inFlight = append(inFlight, f)
	}

	for i := len(inFlight); i < len(g.fleets); i++ {
		g.fleets[i] = nil
	}
	g.fleets = inFlight
}

// Dispatch launches a fleet. The source garrison is debited without
// checking ownership or available ships.
func (g *Galaxy) Dispatch(owner PlayerID, srcID, dstID, ships int) (*Fleet, error) {
	src, ok := g.planets[srcID]
	if !ok {
		return nil, errors.InvalidCommandf("unknown source planet %d", srcID)
	}

	dst, ok := g.planets[dstID]
	if !ok {
		return nil, errors.InvalidCommandf("unknown destination planet %d", dstID)
	}

	src.NumShips -= ships
	fleet := &Fleet{
		Source:         src,
		Destination:    dst,
		NumShips:       ships,
		Owner:          owner,
		RemainingTurns: Proximity(src, dst),
	}
	g.fleets = append(g.fleets, fleet)

	return fleet, nil
}

// OwnedCount returns how many planets the player holds
func (g *Galaxy) OwnedCount(id PlayerID) int {
	count := 0
	for _, p := range g.order {
		if p.Owner.Is(id) {
			count++
		}
	}
	return count
}

// Proximity is the travel time between two planets: the ceiling of
// their Euclidean distance.
func Proximity(a, b *Planet) int {
	return int(math.Ceil(math.Hypot(b.X-a.X, b.Y-a.Y)))
}
