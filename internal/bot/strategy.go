package bot

import (
	"math"
	"sort"

	"planetwars-server/internal/protocol"
)

const (
	enemyCoefficient = 1.3
	attackRisk       = 0.5
	minTargetScore   = 0.5
	// candidates considered per source planet, best first
	targetWindow = 3
)

// EstimatedDefense is the garrison expected at the target after travel
func EstimatedDefense(p *Planet, travel int) int {
	return p.NumShips + travel*p.GrowthRate
}

// ProfitableTime is the number of turns until a captured planet has grown
// back the ships spent on it, travel included. Planets without growth
// never pay off and report -1.
func ProfitableTime(p *Planet, travel int) int {
	if p.GrowthRate == 0 {
		return -1
	}
	defense := float64(EstimatedDefense(p, travel))
	return int(math.Ceil(defense/float64(p.GrowthRate))) + travel
}

// Score rates a target for an attacker with strength ships. A strength of
// zero or less skips the difficulty term.
func Score(p *Planet, travel, strength int, risk float64) float64 {
	pt := ProfitableTime(p, travel)
	if pt <= 0 {
		return 0
	}

	coef := 1.0
	if p.Relation.Kind == Enemy {
		coef = enemyCoefficient
	}

	difficulty := 1.0
	if strength > 0 {
		difficulty = (1 - float64(EstimatedDefense(p, travel))/float64(strength)) * (1 + risk)
		if difficulty < 0 {
			difficulty = 0
		}
	}

	return 100 * difficulty * (1 / float64(pt)) * float64(p.GrowthRate) * coef
}

// RelativeScore rates dst as a target for ships launched from src
func RelativeScore(src, dst *Planet) float64 {
	return Score(dst, src.Distance(dst), src.NumShips, attackRisk)
}

// Decide plans the fleets for one turn. Ships committed are taken off the
// source planets in state so later sources see the remaining garrison.
// Planets with no ships left never launch.
func Decide(state *TurnState, mem *Memory) []protocol.FleetCommand {
	var fleets []protocol.FleetCommand
	hostile := state.Hostile()

	for _, src := range state.Mine() {
		if src.NumShips <= 0 {
			continue
		}
		dst := pickTarget(src, hostile, mem)
		if dst == nil {
			continue
		}

		defense := EstimatedDefense(dst, src.Distance(dst))
		size := defense + int(math.Floor(float64(src.NumShips-defense)/2))

		mem.FlightsInProgress[dst.ID] = true
		src.NumShips -= size
		fleets = append(fleets, protocol.FleetCommand{
			Source:      src.ID,
			Destination: dst.ID,
			NumShips:    size,
		})
	}

	return fleets
}

// pickTarget ranks profitable targets and draws one of the best few,
// skipping targets another planet already claimed this turn.
func pickTarget(src *Planet, hostile []*Planet, mem *Memory) *Planet {
	type candidate struct {
		planet *Planet
		score  float64
	}

	var ranked []candidate
	for _, p := range hostile {
		if s := RelativeScore(src, p); s > minTargetScore {
			ranked = append(ranked, candidate{planet: p, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	for k := 0; k < targetWindow; k++ {
		i := k + mem.rand.Intn(targetWindow+1-k)
		if i >= len(ranked) {
			return nil
		}
		if mem.FlightsInProgress[ranked[i].planet.ID] {
			continue
		}
		return ranked[i].planet
	}
	return nil
}
