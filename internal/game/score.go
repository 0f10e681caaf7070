package game

import (
	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/player"
)

// ScoreKeeper measures team strength: ships on owned planets plus ships
// in flight.
type ScoreKeeper struct {
	galaxy *galaxy.Galaxy
	roster *player.Roster
}

func NewScoreKeeper(g *galaxy.Galaxy, roster *player.Roster) *ScoreKeeper {
	return &ScoreKeeper{galaxy: g, roster: roster}
}

func (s *ScoreKeeper) TeamScore(team galaxy.TeamID) int {
	score := 0

	for _, p := range s.galaxy.Planets() {
		if owner, ok := p.Owner.Player(); ok && s.roster.TeamOf(owner) == team {
			score += p.NumShips
		}
	}

	for _, f := range s.galaxy.Fleets() {
		if s.roster.TeamOf(f.Owner) == team {
			score += f.NumShips
		}
	}

	return score
}

func (s *ScoreKeeper) Scores() map[galaxy.TeamID]int {
	scores := make(map[galaxy.TeamID]int, 2)
	for _, team := range s.roster.Teams() {
		scores[team] = s.TeamScore(team)
	}
	return scores
}

// CapVerdict decides a match that ran out of turns. The higher score
// wins and equal scores draw.
func (s *ScoreKeeper) CapVerdict(turn int) *Result {
	scores := s.Scores()
	result := &Result{
		Outcome:        OutcomeDraw,
		Turn:           turn,
		TurnCapReached: true,
		Scores:         scores,
	}

	one, two := scores[galaxy.Team1], scores[galaxy.Team2]
	switch {
	case one > two:
		result.Outcome = OutcomeWin
		result.Winner = galaxy.Team1
	case two > one:
		result.Outcome = OutcomeWin
		result.Winner = galaxy.Team2
	}

	if result.Outcome == OutcomeWin {
		result.Members = teamNames(s.roster.Team(result.Winner))
	}
	return result
}
