package usecase

import (
	"context"

	"dbgsh/internal/modules/command/dto"
	commandout "dbgsh/internal/modules/command/port/out"
)

type Interactor struct {
	history commandout.HistoryStore
}

func NewInteractor(history commandout.HistoryStore) *Interactor {
	return &Interactor{history: history}
}

func (i *Interactor) History(ctx context.Context, sessionID string, limit int) ([]dto.HistoryEntry, error) {
	entries, err := i.history.Recent(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntry{SessionID: e.SessionID, Interp: e.Interp, Command: e.Command, At: e.At})
	}
	return out, nil
}
