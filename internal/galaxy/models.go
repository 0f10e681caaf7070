package galaxy

import "fmt"

type PlayerID int

type TeamID int

const (
	Team1 TeamID = 1
	Team2 TeamID = 2
)

// Owner is either unowned or owned by exactly one player
type Owner struct {
	player PlayerID
	owned  bool
}

func Unowned() Owner {
	return Owner{}
}

func OwnedBy(id PlayerID) Owner {
	return Owner{player: id, owned: true}
}

func (o Owner) Player() (PlayerID, bool) {
	return o.player, o.owned
}

func (o Owner) IsOwned() bool {
	return o.owned
}

func (o Owner) Is(id PlayerID) bool {
	return o.owned && o.player == id
}

// WireID is the owner as written on the protocol: 0 for unowned
func (o Owner) WireID() int {
	if !o.owned {
		return 0
	}
	return int(o.player)
}

// OwnerFromWire is the inverse of WireID
func OwnerFromWire(id int) Owner {
	if id <= 0 {
		return Unowned()
	}
	return OwnedBy(PlayerID(id))
}

func (o Owner) String() string {
	if !o.owned {
		return "unowned"
	}
	return fmt.Sprintf("player %d", o.player)
}

type Planet struct {
	ID         int
	X          float64
	Y          float64
	GrowthRate int
	Owner      Owner
	NumShips   int

	// ArrivedFleets holds the fleets that landed this turn; combat clears it
	ArrivedFleets []*Fleet
}

type Fleet struct {
	// Source is nil for the remainder fleet produced by a multi-fleet battle
	Source         *Planet
	Destination    *Planet
	NumShips       int
	Owner          PlayerID
	RemainingTurns int
}
