package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInterpNotFound  = errors.New("interpreter not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoCurrentInterp = errors.New("no current interpreter")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrNoHistory       = errors.New("no execution history")
)
