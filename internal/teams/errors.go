package teams

import "errors"

var (
	ErrNotFound     = errors.New("team not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("team name already exists")
)
