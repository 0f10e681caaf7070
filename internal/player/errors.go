package player

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidTeam    = errors.New("invalid team")
	ErrEmptyRoster    = errors.New("empty roster")
)
