package in

import (
	"context"

	"dbgsh/internal/modules/command/dto"
)

type Usecase interface {
	// History returns recent commands, newest first. An empty sessionID
	// spans all sessions.
	History(ctx context.Context, sessionID string, limit int) ([]dto.HistoryEntry, error)
}
