package galaxy

import (
	"strings"
	"testing"

	"planetwars-server/internal/shared/errors"
)

func newTestGalaxy(t *testing.T, planets ...*Planet) *Galaxy {
	t.Helper()
	g, err := New(planets)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestApplyGrowthIncludesUnownedPlanets(t *testing.T) {
	owned := &Planet{ID: 1, GrowthRate: 3, Owner: OwnedBy(1), NumShips: 10}
	neutral := &Planet{ID: 2, GrowthRate: 5, NumShips: 0}
	barren := &Planet{ID: 3, GrowthRate: 0, Owner: OwnedBy(2), NumShips: 7}
	g := newTestGalaxy(t, owned, neutral, barren)

	ownedBefore := owned.NumShips + barren.NumShips
	g.ApplyGrowth()

	if owned.NumShips != 13 || neutral.NumShips != 5 || barren.NumShips != 7 {
		t.Fatalf("ships after growth = %d/%d/%d, want 13/5/7", owned.NumShips, neutral.NumShips, barren.NumShips)
	}
	if got := owned.NumShips + barren.NumShips - ownedBefore; got != owned.GrowthRate+barren.GrowthRate {
		t.Errorf("owned ships grew by %d, want %d", got, owned.GrowthRate+barren.GrowthRate)
	}
}

func TestAdvanceFleetsLandsOnZero(t *testing.T) {
	a := &Planet{ID: 1, X: 0, Y: 0, Owner: OwnedBy(1), NumShips: 20}
	b := &Planet{ID: 2, X: 3, Y: 0}
	c := &Planet{ID: 3, X: 0, Y: 1}
	g := newTestGalaxy(t, a, b, c)

	far, err := g.Dispatch(1, 1, 2, 5)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	near, err := g.Dispatch(1, 1, 3, 4)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if far.RemainingTurns != 3 || near.RemainingTurns != 1 {
		t.Fatalf("remaining turns = %d/%d, want 3/1", far.RemainingTurns, near.RemainingTurns)
	}
	if a.NumShips != 11 {
		t.Fatalf("source ships = %d, want 11", a.NumShips)
	}

	g.AdvanceFleets()
	if len(c.ArrivedFleets) != 1 || c.ArrivedFleets[0] != near {
		t.Fatalf("near fleet did not land: %+v", c.ArrivedFleets)
	}
	if len(g.Fleets()) != 1 || g.Fleets()[0] != far {
		t.Fatalf("in-flight fleets = %+v, want only far fleet", g.Fleets())
	}

	g.AdvanceFleets()
	g.AdvanceFleets()
	if len(b.ArrivedFleets) != 1 || len(g.Fleets()) != 0 {
		t.Fatalf("far fleet did not land after 3 turns: arrived=%d inflight=%d", len(b.ArrivedFleets), len(g.Fleets()))
	}
}

func TestDispatchUnknownPlanet(t *testing.T) {
	g := newTestGalaxy(t, &Planet{ID: 1})

	if _, err := g.Dispatch(1, 9, 1, 3); !errors.Is(err, errors.ErrorTypeInvalidCommand) {
		t.Errorf("unknown source error = %v, want invalid command", err)
	}
	if _, err := g.Dispatch(1, 1, 9, 3); !errors.Is(err, errors.ErrorTypeInvalidCommand) {
		t.Errorf("unknown destination error = %v, want invalid command", err)
	}
}

func TestDispatchDoesNotValidateOverspend(t *testing.T) {
	a := &Planet{ID: 1, Owner: OwnedBy(2), NumShips: 3}
	b := &Planet{ID: 2, X: 1}
	g := newTestGalaxy(t, a, b)

	if _, err := g.Dispatch(1, 1, 2, 10); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if a.NumShips != -7 {
		t.Errorf("source ships = %d, want -7", a.NumShips)
	}
}

func TestAssignStartingPlanet(t *testing.T) {
	g := newTestGalaxy(t, &Planet{ID: 4}, &Planet{ID: 2})

	first, ok := g.AssignStartingPlanet(1)
	if !ok || first.ID != 4 {
		t.Fatalf("first start = %+v, want planet 4", first)
	}
	second, ok := g.AssignStartingPlanet(2)
	if !ok || second.ID != 2 {
		t.Fatalf("second start = %+v, want planet 2", second)
	}
	if _, ok := g.AssignStartingPlanet(3); ok {
		t.Fatalf("expected no planet left for player 3")
	}
	if g.OwnedCount(1) != 1 || g.OwnedCount(3) != 0 {
		t.Errorf("owned counts = %d/%d, want 1/0", g.OwnedCount(1), g.OwnedCount(3))
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	if _, err := New([]*Planet{{ID: 1}, {ID: 1}}); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("New() error = %v, want validation error", err)
	}
}

func TestProximity(t *testing.T) {
	tests := []struct {
		a, b *Planet
		want int
	}{
		{&Planet{X: 0, Y: 0}, &Planet{X: 3, Y: 4}, 5},
		{&Planet{X: 0, Y: 0}, &Planet{X: 1, Y: 1}, 2},
		{&Planet{X: 2.5, Y: 0}, &Planet{X: 2.5, Y: 0}, 0},
	}
	for _, tt := range tests {
		if got := Proximity(tt.a, tt.b); got != tt.want {
			t.Errorf("Proximity(%v,%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLoadMapIgnoresOwnerColumn(t *testing.T) {
	planets, err := LoadMap(strings.NewReader(`
P 1 0 0 5 1 50
# comment

P 2 3.5 4.25 2 2 10
`))
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(planets) != 2 {
		t.Fatalf("planets = %d, want 2", len(planets))
	}
	p := planets[1]
	if p.ID != 2 || p.X != 3.5 || p.Y != 4.25 || p.GrowthRate != 2 || p.NumShips != 10 {
		t.Errorf("planet 2 = %+v", p)
	}
	for _, p := range planets {
		if p.Owner.IsOwned() {
			t.Errorf("planet %d loaded with owner %v", p.ID, p.Owner)
		}
	}
}

func TestLoadMapRejectsMalformed(t *testing.T) {
	for _, input := range []string{"P 1 0 0 5\n", "Q 1 0 0 5 0 1\n", "P x 0 0 5 0 1\n", ""} {
		if _, err := LoadMap(strings.NewReader(input)); !errors.Is(err, errors.ErrorTypeValidation) {
			t.Errorf("LoadMap(%q) error = %v, want validation error", input, err)
		}
	}
}

func TestOwnerWireEncoding(t *testing.T) {
	if Unowned().WireID() != 0 || OwnedBy(4).WireID() != 4 {
		t.Fatalf("unexpected wire ids")
	}
	if OwnerFromWire(0).IsOwned() {
		t.Errorf("wire 0 decoded as owned")
	}
	if id, ok := OwnerFromWire(3).Player(); !ok || id != 3 {
		t.Errorf("wire 3 decoded as %v", OwnerFromWire(3))
	}
}
