// Package protocol is the line codec spoken between the engine and agent
// processes.
//
// Engine to agent, once per turn:
//
//	P <id> <x> <y> <growth_rate> <owner-or-0> <ships>   (one per planet)
//	M <message>                                          (optional)
//	Y <player-id>
//
// Agent to engine:
//
//	F <src> <dst> <ships>                                (zero or more)
//	M <message>                                          (optional)
//	.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/shared/errors"
)

type Kind byte

const (
	KindPlanet     Kind = 'P'
	KindMessage    Kind = 'M'
	KindYou        Kind = 'Y'
	KindFleet      Kind = 'F'
	KindTerminator Kind = '.'
)

const Terminator = "."

// PlanetLine is the wire view of a planet
type PlanetLine struct {
	ID         int
	X          float64
	Y          float64
	GrowthRate int
	Owner      int
	NumShips   int
}

type FleetCommand struct {
	Source      int
	Destination int
	NumShips    int
}

// AgentLine is one parsed line sent by an agent
type AgentLine struct {
	Kind    Kind
	Fleet   FleetCommand
	Message int
}

// EngineLine is one parsed line sent by the engine
type EngineLine struct {
	Kind    Kind
	Planet  PlanetLine
	Message int
	You     galaxy.PlayerID
}

func PlanetLineOf(p *galaxy.Planet) PlanetLine {
	return PlanetLine{
		ID:         p.ID,
		X:          p.X,
		Y:          p.Y,
		GrowthRate: p.GrowthRate,
		Owner:      p.Owner.WireID(),
		NumShips:   p.NumShips,
	}
}

func (l PlanetLine) String() string {
	return fmt.Sprintf("P %d %s %s %d %d %d",
		l.ID,
		strconv.FormatFloat(l.X, 'f', -1, 64),
		strconv.FormatFloat(l.Y, 'f', -1, 64),
		l.GrowthRate,
		l.Owner,
		l.NumShips,
	)
}

func (c FleetCommand) String() string {
	return fmt.Sprintf("F %d %d %d", c.Source, c.Destination, c.NumShips)
}

func EncodePlanet(p *galaxy.Planet) string {
	return PlanetLineOf(p).String()
}

func EncodeMessage(msg int) string {
	return fmt.Sprintf("M %d", msg)
}

func EncodeYou(id galaxy.PlayerID) string {
	return fmt.Sprintf("Y %d", id)
}

// WriteTurn writes a full turn broadcast and flushes it
func WriteTurn(w *bufio.Writer, planets []*galaxy.Planet, message *int, you galaxy.PlayerID) error {
	for _, p := range planets {
		if err := writeLine(w, EncodePlanet(p)); err != nil {
			return err
		}
	}
	if message != nil {
		if err := writeLine(w, EncodeMessage(*message)); err != nil {
			return err
		}
	}
	if err := writeLine(w, EncodeYou(you)); err != nil {
		return err
	}
	return w.Flush()
}

// WriteResponse writes an agent's answer for one turn and flushes it
func WriteResponse(w *bufio.Writer, fleets []FleetCommand, message *int) error {
	for _, f := range fleets {
		if err := writeLine(w, f.String()); err != nil {
			return err
		}
	}
	if message != nil {
		if err := writeLine(w, EncodeMessage(*message)); err != nil {
			return err
		}
	}
	if err := writeLine(w, Terminator); err != nil {
		return err
	}
	return w.Flush()
}

func writeLine(w io.Writer, line string) error {
	_, err := io.WriteString(w, line+"\n")
	return err
}

// ParseAgentLine parses one line from an agent. Anything that is not a
// well formed F, M or terminator line is a malformed line error.
func ParseAgentLine(line string) (AgentLine, error) {
	line = strings.TrimSpace(line)
	if line == Terminator {
		return AgentLine{Kind: KindTerminator}, nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return AgentLine{}, errors.MalformedLinef("empty line")
	}

	switch fields[0] {
	case "F":
		nums, err := parseInts(fields, 3)
		if err != nil {
			return AgentLine{}, err
		}
		return AgentLine{
			Kind:  KindFleet,
			Fleet: FleetCommand{Source: nums[0], Destination: nums[1], NumShips: nums[2]},
		}, nil
	case "M":
		nums, err := parseInts(fields, 1)
		if err != nil {
			return AgentLine{}, err
		}
		return AgentLine{Kind: KindMessage, Message: nums[0]}, nil
	default:
		return AgentLine{}, errors.MalformedLinef("unknown agent command %q", fields[0])
	}
}

// ParseEngineLine parses one line from the engine
func ParseEngineLine(line string) (EngineLine, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return EngineLine{}, errors.MalformedLinef("empty line")
	}

	switch fields[0] {
	case "P":
		planet, err := ParsePlanet(line)
		if err != nil {
			return EngineLine{}, err
		}
		return EngineLine{Kind: KindPlanet, Planet: planet}, nil
	case "M":
		nums, err := parseInts(fields, 1)
		if err != nil {
			return EngineLine{}, err
		}
		return EngineLine{Kind: KindMessage, Message: nums[0]}, nil
	case "Y":
		nums, err := parseInts(fields, 1)
		if err != nil {
			return EngineLine{}, err
		}
		return EngineLine{Kind: KindYou, You: galaxy.PlayerID(nums[0])}, nil
	default:
		return EngineLine{}, errors.MalformedLinef("unknown engine command %q", fields[0])
	}
}

func ParsePlanet(line string) (PlanetLine, error) {
	fields := strings.Fields(line)
	if len(fields) != 7 || fields[0] != "P" {
		return PlanetLine{}, errors.MalformedLinef("planet line needs 7 fields: %q", line)
	}

	var (
		pl  PlanetLine
		err error
	)
	if pl.ID, err = strconv.Atoi(fields[1]); err != nil {
		return PlanetLine{}, errors.WrapMalformedLine("planet id", err)
	}
	if pl.X, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return PlanetLine{}, errors.WrapMalformedLine("planet x", err)
	}
	if pl.Y, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return PlanetLine{}, errors.WrapMalformedLine("planet y", err)
	}
	if pl.GrowthRate, err = strconv.Atoi(fields[4]); err != nil {
		return PlanetLine{}, errors.WrapMalformedLine("planet growth rate", err)
	}
	if pl.Owner, err = strconv.Atoi(fields[5]); err != nil {
		return PlanetLine{}, errors.WrapMalformedLine("planet owner", err)
	}
	if pl.NumShips, err = strconv.Atoi(fields[6]); err != nil {
		return PlanetLine{}, errors.WrapMalformedLine("planet ships", err)
	}

	return pl, nil
}

func parseInts(fields []string, n int) ([]int, error) {
	if len(fields) != n+1 {
		return nil, errors.MalformedLinef("%s expects %d arguments, got %d", fields[0], n, len(fields)-1)
	}

	nums := make([]int, n)
	for i := range nums {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, errors.WrapMalformedLine(fmt.Sprintf("%s argument %d", fields[0], i+1), err)
		}
		nums[i] = v
	}
	return nums, nil
}
