package in

import (
	"context"

	"dbgsh/internal/modules/interp/domain"
	"dbgsh/internal/modules/interp/dto"
)

// Usecase is the controller surface consumed by front-end handlers.
type Usecase interface {
	StartSession(ctx context.Context, topLevelKind string) (dto.SessionInfo, error)
	CloseSession(ctx context.Context, sessionID string) error
	Describe(ctx context.Context, sessionID string) (dto.SessionInfo, error)
	List(ctx context.Context, sessionID string) ([]dto.InterpInfo, error)
	Kinds(ctx context.Context) ([]string, error)

	Exec(ctx context.Context, sessionID, command string) error
	ExecWith(ctx context.Context, sessionID, kind, command string) error
	SetCurrent(ctx context.Context, sessionID, kind string) (dto.SwitchOutput, error)
	CurrentNamed(ctx context.Context, sessionID, kind string) (bool, error)

	SetLogging(ctx context.Context, sessionID string, input dto.LogInput) error
	PreCommandLoop(ctx context.Context, sessionID string) error
	SupportsCommandEditing(ctx context.Context, sessionID string) (bool, error)
}

// Notifier is the fan-out surface the execution engine drives. Every call
// reaches every instantiated interpreter in every session exactly once.
type Notifier interface {
	NotifySignalReceived(sig domain.Signal)
	NotifySignalExited(sig domain.Signal)
	NotifyNormalStop(stop domain.StopInfo)
	NotifyExited(status int)
	NotifyNoHistory()
	NotifySyncExecutionDone()
	NotifyCommandError()
	NotifyUserSelectedContextChanged(sel domain.UserSelection)
	NotifyNewThread(t domain.Thread)
	NotifyThreadExited(t domain.Thread, silent bool)
	NotifyInferiorAdded(inf domain.Inferior)
	NotifyInferiorAppeared(inf domain.Inferior)
}
