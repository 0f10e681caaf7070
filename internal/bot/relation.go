package bot

import (
	"fmt"

	"planetwars-server/internal/galaxy"
)

type RelationKind int

const (
	Mine RelationKind = iota
	Ally
	Neutral
	Enemy
)

// Relation is how an observing player sees the owner of a planet on one
// turn. Ally and Enemy carry the owning player.
type Relation struct {
	Kind   RelationKind
	Player galaxy.PlayerID
}

func (r Relation) String() string {
	switch r.Kind {
	case Mine:
		return "mine"
	case Ally:
		return fmt.Sprintf("ally(%d)", r.Player)
	case Neutral:
		return "neutral"
	default:
		return fmt.Sprintf("enemy(%d)", r.Player)
	}
}

// Hostile reports whether the planet is worth attacking: neutral or enemy
func (r Relation) Hostile() bool {
	return r.Kind == Neutral || r.Kind == Enemy
}

// Classify derives the relation from the owner and the allies known so far
func Classify(owner galaxy.Owner, me galaxy.PlayerID, allies map[galaxy.PlayerID]bool) Relation {
	id, owned := owner.Player()
	switch {
	case !owned:
		return Relation{Kind: Neutral}
	case id == me:
		return Relation{Kind: Mine, Player: id}
	case allies[id]:
		return Relation{Kind: Ally, Player: id}
	default:
		return Relation{Kind: Enemy, Player: id}
	}
}
