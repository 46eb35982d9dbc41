package out

import (
	"context"

	"dbgsh/internal/modules/command/domain"
	interpdomain "dbgsh/internal/modules/interp/domain"
	interpdto "dbgsh/internal/modules/interp/dto"
)

// HistoryStore projects executed command lines. Recent returns the newest
// entries first; an empty sessionID spans all sessions.
type HistoryStore interface {
	Append(ctx context.Context, entry domain.HistoryEntry) error
	Recent(ctx context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error)
}

// InterpControl is the slice of the interpreter controller the dispatcher
// needs: scoped execution under another interpreter, session resolution for
// the interpreter a command arrived on, logging passthrough, and the
// command-error notification.
type InterpControl interface {
	ExecWith(ctx context.Context, sessionID, kind, command string) error
	SessionIDOf(in interpdomain.Interp) (string, error)
	SetLogging(ctx context.Context, sessionID string, input interpdto.LogInput) error
	NotifyCommandError()
}

// Engine is the execution-control surface commands delegate to.
type Engine interface {
	Run(ctx context.Context, executable string) error
	Continue(ctx context.Context) error
	Step(ctx context.Context) error
	ReverseContinue(ctx context.Context) error
	Interrupt(ctx context.Context) error
	Kill(ctx context.Context) error
	SelectThread(ctx context.Context, globalID int) error
	SelectInferior(ctx context.Context, num int) error
}
