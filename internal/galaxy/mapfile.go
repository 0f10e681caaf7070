package galaxy

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"planetwars-server/internal/shared/errors"
)

// LoadMapFile reads a map from disk
func LoadMapFile(path string) ([]*Planet, error) {
	logger := slog.With("component", "galaxy", "operation", "load_map", "path", path)

	f, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open map file", "error", err)
		return nil, fmt.Errorf("failed to open map: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("Failed to close map file", "error", err)
		}
	}()

	planets, err := LoadMap(f)
	if err != nil {
		return nil, err
	}

	logger.Info("Map loaded", "planets", len(planets))
	return planets, nil
}

// LoadMap parses "P <id> <x> <y> <growth_rate> <owner> <ships>" lines.
// The owner column is ignored: every planet starts unowned and players
// are placed by AssignStartingPlanet.
func LoadMap(r io.Reader) ([]*Planet, error) {
	var planets []*Planet

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if fields[0] != "P" || len(fields) < 7 {
			return nil, errors.Validationf("map line %d: expected P <id> <x> <y> <growth> <owner> <ships>", lineNo)
		}

		p, err := parseMapPlanet(fields)
		if err != nil {
			return nil, errors.WrapValidation(fmt.Sprintf("map line %d", lineNo), err)
		}
		planets = append(planets, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}

	if len(planets) == 0 {
		return nil, errors.Validation("map has no planets")
	}

	return planets, nil
}

func parseMapPlanet(fields []string) (*Planet, error) {
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, err
	}
	x, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, err
	}
	y, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return nil, err
	}
	growth, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, err
	}
	if growth < 0 {
		return nil, fmt.Errorf("negative growth rate %d", growth)
	}
	ships, err := strconv.Atoi(fields[6])
	if err != nil {
		return nil, err
	}

	return &Planet{
		ID:         id,
		X:          x,
		Y:          y,
		GrowthRate: growth,
		Owner:      Unowned(),
		NumShips:   ships,
	}, nil
}
