package emails

import "errors"

var (
	ErrNotFound            = errors.New("email not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAssignerUnavailable = errors.New("assignment is not configured")
)
