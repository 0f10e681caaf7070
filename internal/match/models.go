package match

import (
	"time"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/game"
	"planetwars-server/internal/player"

	"github.com/google/uuid"
)

// Record is one finished match as stored in match_results
type Record struct {
	ID             int            `json:"id"`
	UUID           uuid.UUID      `json:"uuid"`
	MapPath        string         `json:"map_path"`
	Outcome        game.Outcome   `json:"outcome"`
	WinnerTeam     *galaxy.TeamID `json:"winner_team,omitempty"`
	Turn           int            `json:"turn"`
	TurnCapReached bool           `json:"turn_cap_reached"`
	Team1Score     int            `json:"team1_score"`
	Team2Score     int            `json:"team2_score"`
	Members        []string       `json:"members"`
	FinishedAt     time.Time      `json:"finished_at"`
	Players        []PlayerRecord `json:"players,omitempty"`
}

type PlayerRecord struct {
	PlayerID   galaxy.PlayerID `json:"player_id"`
	Team       galaxy.TeamID   `json:"team"`
	Name       string          `json:"name"`
	Eliminated bool            `json:"eliminated"`
}

// Standing is the per-turn message published to subscribers
type Standing struct {
	Match      uuid.UUID             `json:"match"`
	Turn       int                   `json:"turn"`
	State      game.State            `json:"state"`
	Scores     map[galaxy.TeamID]int `json:"scores"`
	Eliminated []string              `json:"eliminated"`
	Result     *game.Result          `json:"result,omitempty"`
}

// NewRecord flattens a verdict and the final roster into a storable row
func NewRecord(matchID uuid.UUID, result *game.Result, roster *player.Roster, mapPath string) *Record {
	rec := &Record{
		UUID:           matchID,
		MapPath:        mapPath,
		Outcome:        result.Outcome,
		Turn:           result.Turn,
		TurnCapReached: result.TurnCapReached,
		Team1Score:     result.Scores[galaxy.Team1],
		Team2Score:     result.Scores[galaxy.Team2],
		Members:        result.Members,
	}
	if rec.Members == nil {
		rec.Members = []string{}
	}

	if !result.IsDraw() {
		winner := result.Winner
		rec.WinnerTeam = &winner
	}

	for _, p := range roster.Players() {
		rec.Players = append(rec.Players, PlayerRecord{
			PlayerID:   p.ID,
			Team:       p.Team,
			Name:       p.Name,
			Eliminated: p.Eliminated(),
		})
	}

	return rec
}

func NewStanding(matchID uuid.UUID, snapshot game.Snapshot) Standing {
	return Standing{
		Match:      matchID,
		Turn:       snapshot.Turn,
		State:      snapshot.State,
		Scores:     snapshot.Scores,
		Eliminated: snapshot.Eliminated,
		Result:     snapshot.Result,
	}
}
