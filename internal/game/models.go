package game

import (
	"fmt"
	"io"
	"sort"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/player"
)

type State string

const (
	StateInitial    State = "initial"
	StateActive     State = "active"
	StateTerminated State = "terminated"
)

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
)

// Result is the verdict of a finished match
type Result struct {
	Outcome        Outcome               `json:"outcome"`
	Winner         galaxy.TeamID         `json:"winner,omitempty"`
	Turn           int                   `json:"turn"`
	TurnCapReached bool                  `json:"turn_cap_reached"`
	Scores         map[galaxy.TeamID]int `json:"scores"`
	Members        []string              `json:"members,omitempty"`
}

func (r *Result) IsDraw() bool {
	return r.Outcome == OutcomeDraw
}

// Report writes the human readable verdict. Team scores are printed
// when the turn cap decided the match.
func (r *Result) Report(w io.Writer) error {
	if r.TurnCapReached {
		teams := make([]galaxy.TeamID, 0, len(r.Scores))
		for team := range r.Scores {
			teams = append(teams, team)
		}
		sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
		for _, team := range teams {
			if _, err := fmt.Fprintf(w, "Team %d Score: %d\n", team, r.Scores[team]); err != nil {
				return err
			}
		}
	}

	if r.IsDraw() {
		_, err := fmt.Fprintln(w, "Draw")
		return err
	}

	if _, err := fmt.Fprintf(w, "Winner is Team %d\n", r.Winner); err != nil {
		return err
	}
	for _, name := range r.Members {
		if _, err := fmt.Fprintf(w, "> %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot is a read-only view of the match published between turns
type Snapshot struct {
	Turn       int                   `json:"turn"`
	State      State                 `json:"state"`
	Scores     map[galaxy.TeamID]int `json:"scores"`
	Planets    int                   `json:"planets"`
	Fleets     int                   `json:"fleets"`
	Eliminated []string              `json:"eliminated"`
	Result     *Result               `json:"result,omitempty"`
}

func teamNames(players []*player.Player) []string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}
	return names
}
