package rollgame

import "errors"

// Errors for the roll game
var (
	ErrSessionClosed      = errors.New("game session is no longer open")
	ErrAlreadyJoined      = errors.New("player already joined this game")
	ErrInvalidPlayerCount = errors.New("player count must be at least 1")
	ErrTooManyPlayers     = errors.New("player count exceeds the maximum")
)
