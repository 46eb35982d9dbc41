package in

import (
	"context"

	"dbgsh/internal/modules/interp/dto"
	interpin "dbgsh/internal/modules/interp/port/in"
)

type CLIHandler struct {
	usecase interpin.Usecase
}

func NewCLIHandler(usecase interpin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) StartSession(ctx context.Context, topLevelKind string) (dto.SessionInfo, error) {
	return h.usecase.StartSession(ctx, topLevelKind)
}

func (h CLIHandler) CloseSession(ctx context.Context, sessionID string) error {
	return h.usecase.CloseSession(ctx, sessionID)
}

func (h CLIHandler) Exec(ctx context.Context, sessionID, command string) error {
	return h.usecase.Exec(ctx, sessionID, command)
}

func (h CLIHandler) ExecWith(ctx context.Context, sessionID, kind, command string) error {
	return h.usecase.ExecWith(ctx, sessionID, kind, command)
}

func (h CLIHandler) Kinds(ctx context.Context) ([]string, error) {
	return h.usecase.Kinds(ctx)
}

func (h CLIHandler) List(ctx context.Context, sessionID string) ([]dto.InterpInfo, error) {
	return h.usecase.List(ctx, sessionID)
}

func (h CLIHandler) PreCommandLoop(ctx context.Context, sessionID string) error {
	return h.usecase.PreCommandLoop(ctx, sessionID)
}

func (h CLIHandler) SetLogging(ctx context.Context, sessionID string, input dto.LogInput) error {
	return h.usecase.SetLogging(ctx, sessionID, input)
}
