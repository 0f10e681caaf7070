package bot

import (
	"bufio"
	"io"
	"log/slog"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/protocol"
)

// Planet is the agent's view of one planet for one turn. NumShips is
// lowered as the agent commits ships from it.
type Planet struct {
	ID         int
	X, Y       float64
	GrowthRate int
	Owner      galaxy.Owner
	NumShips   int
	Relation   Relation
}

func (p *Planet) Distance(other *Planet) int {
	return galaxy.Proximity(&galaxy.Planet{X: p.X, Y: p.Y}, &galaxy.Planet{X: other.X, Y: other.Y})
}

// TurnState is everything the engine sent for one turn
type TurnState struct {
	Planets []*Planet
	Me      galaxy.PlayerID
	Message *int
}

// Mine returns the planets owned by the agent itself
func (s *TurnState) Mine() []*Planet {
	return s.filter(func(p *Planet) bool { return p.Relation.Kind == Mine })
}

func (s *TurnState) Hostile() []*Planet {
	return s.filter(func(p *Planet) bool { return p.Relation.Hostile() })
}

func (s *TurnState) filter(keep func(*Planet) bool) []*Planet {
	var out []*Planet
	for _, p := range s.Planets {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// classify tags every planet once, after the turn has been fully read
func (s *TurnState) classify(allies map[galaxy.PlayerID]bool) {
	for _, p := range s.Planets {
		p.Relation = Classify(p.Owner, s.Me, allies)
	}
}

// TurnReader accumulates engine lines into turns
type TurnReader struct {
	scanner *bufio.Scanner
	logger  *slog.Logger
}

func NewTurnReader(r io.Reader, logger *slog.Logger) *TurnReader {
	return &TurnReader{
		scanner: bufio.NewScanner(r),
		logger:  logger,
	}
}

// Next reads up to and including the Y line. It returns io.EOF once the
// engine closes the stream.
func (tr *TurnReader) Next() (*TurnState, error) {
	state := &TurnState{}
	for tr.scanner.Scan() {
		line, err := protocol.ParseEngineLine(tr.scanner.Text())
		if err != nil {
			tr.logger.Debug("Skipping engine line", "line", tr.scanner.Text(), "error", err)
			continue
		}

		switch line.Kind {
		case protocol.KindPlanet:
			state.Planets = append(state.Planets, &Planet{
				ID:         line.Planet.ID,
				X:          line.Planet.X,
				Y:          line.Planet.Y,
				GrowthRate: line.Planet.GrowthRate,
				Owner:      galaxy.OwnerFromWire(line.Planet.Owner),
				NumShips:   line.Planet.NumShips,
			})
		case protocol.KindMessage:
			msg := line.Message
			state.Message = &msg
		case protocol.KindYou:
			state.Me = line.You
			return state, nil
		}
	}

	if err := tr.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
