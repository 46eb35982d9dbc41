package in

import (
	"context"

	"dbgsh/internal/modules/command/dto"
	commandin "dbgsh/internal/modules/command/port/in"
)

type CLIHandler struct {
	usecase commandin.Usecase
}

func NewCLIHandler(usecase commandin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) History(ctx context.Context, sessionID string, limit int) ([]dto.HistoryEntry, error) {
	return h.usecase.History(ctx, sessionID, limit)
}
