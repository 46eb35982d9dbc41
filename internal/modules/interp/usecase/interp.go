package usecase

import (
	"context"
	"fmt"
	"os"

	"dbgsh/internal/modules/interp/domain"
	"dbgsh/internal/modules/interp/dto"
	"dbgsh/internal/modules/interp/service"
)

// Interactor adapts the controller service to the inbound port. It also
// serves as the engine's Notifier and the command dispatcher's switch
// surface, keyed by session id so out-of-process handlers can address
// sessions too.
type Interactor struct {
	svc *service.InterpService
}

func NewInteractor(svc *service.InterpService) *Interactor {
	return &Interactor{svc: svc}
}

func (i *Interactor) StartSession(_ context.Context, topLevelKind string) (dto.SessionInfo, error) {
	sess, err := i.svc.NewSession(topLevelKind)
	if err != nil {
		return dto.SessionInfo{}, err
	}
	return i.describe(sess)
}

func (i *Interactor) CloseSession(_ context.Context, sessionID string) error {
	return i.svc.CloseSession(sessionID)
}

func (i *Interactor) Describe(_ context.Context, sessionID string) (dto.SessionInfo, error) {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return dto.SessionInfo{}, err
	}
	return i.describe(sess)
}

func (i *Interactor) describe(sess *domain.Session) (dto.SessionInfo, error) {
	cur, err := sess.Current()
	if err != nil {
		return dto.SessionInfo{}, err
	}
	return dto.SessionInfo{ID: sess.ID(), TopLevel: sess.TopLevelName(), Current: cur.Name()}, nil
}

func (i *Interactor) List(_ context.Context, sessionID string) ([]dto.InterpInfo, error) {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return nil, err
	}
	interps := sess.Interps()
	out := make([]dto.InterpInfo, 0, len(interps))
	for _, in := range interps {
		out = append(out, dto.InterpInfo{
			Name:        in.Name(),
			Current:     sess.CurrentNamed(in.Name()),
			TopLevel:    in.Name() == sess.TopLevelName(),
			Initialized: sess.Initialized(in.Name()),
		})
	}
	return out, nil
}

func (i *Interactor) Kinds(context.Context) ([]string, error) {
	return i.svc.Kinds(), nil
}

func (i *Interactor) Exec(ctx context.Context, sessionID, command string) error {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return err
	}
	return i.svc.Exec(ctx, sess, command)
}

func (i *Interactor) ExecWith(ctx context.Context, sessionID, kind, command string) error {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return err
	}
	return i.svc.ExecWith(ctx, sess, kind, command)
}

func (i *Interactor) SetCurrent(_ context.Context, sessionID, kind string) (dto.SwitchOutput, error) {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return dto.SwitchOutput{}, err
	}
	prev, err := i.svc.SetCurrent(sess, kind)
	if err != nil {
		return dto.SwitchOutput{}, err
	}
	out := dto.SwitchOutput{SessionID: sessionID, Current: kind}
	if prev != nil {
		out.Previous = prev.Name()
	}
	return out, nil
}

func (i *Interactor) CurrentNamed(_ context.Context, sessionID, kind string) (bool, error) {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return false, err
	}
	return sess.CurrentNamed(kind), nil
}

func (i *Interactor) SetLogging(_ context.Context, sessionID string, input dto.LogInput) error {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return err
	}
	cfg := domain.LogConfig{Redirect: input.Redirect, DebugRedirect: input.DebugRedirect}
	if input.Enabled {
		if input.Path == "" {
			return fmt.Errorf("logging requires a logfile path")
		}
		file, err := os.OpenFile(input.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open logfile: %w", err)
		}
		cfg.File = file
	}
	return i.svc.SetLogging(sess, cfg)
}

func (i *Interactor) PreCommandLoop(_ context.Context, sessionID string) error {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return err
	}
	return i.svc.PreCommandLoop(sess)
}

func (i *Interactor) SupportsCommandEditing(_ context.Context, sessionID string) (bool, error) {
	sess, err := i.svc.Session(sessionID)
	if err != nil {
		return false, err
	}
	return i.svc.SupportsCommandEditing(sess)
}

// SessionIDOf resolves the session owning an interpreter instance. The
// command dispatcher uses it to scope interpreter-exec to the session the
// command arrived on.
func (i *Interactor) SessionIDOf(in domain.Interp) (string, error) {
	sess, err := i.svc.SessionOf(in)
	if err != nil {
		return "", err
	}
	return sess.ID(), nil
}

// Notifier passthroughs, consumed by the execution engine.

func (i *Interactor) NotifySignalReceived(sig domain.Signal) { i.svc.NotifySignalReceived(sig) }
func (i *Interactor) NotifySignalExited(sig domain.Signal)   { i.svc.NotifySignalExited(sig) }
func (i *Interactor) NotifyNormalStop(stop domain.StopInfo)  { i.svc.NotifyNormalStop(stop) }
func (i *Interactor) NotifyExited(status int)                { i.svc.NotifyExited(status) }
func (i *Interactor) NotifyNoHistory()                       { i.svc.NotifyNoHistory() }
func (i *Interactor) NotifySyncExecutionDone()               { i.svc.NotifySyncExecutionDone() }
func (i *Interactor) NotifyCommandError()                    { i.svc.NotifyCommandError() }
func (i *Interactor) NotifyUserSelectedContextChanged(sel domain.UserSelection) {
	i.svc.NotifyUserSelectedContextChanged(sel)
}
func (i *Interactor) NotifyNewThread(t domain.Thread) { i.svc.NotifyNewThread(t) }
func (i *Interactor) NotifyThreadExited(t domain.Thread, silent bool) {
	i.svc.NotifyThreadExited(t, silent)
}
func (i *Interactor) NotifyInferiorAdded(inf domain.Inferior)    { i.svc.NotifyInferiorAdded(inf) }
func (i *Interactor) NotifyInferiorAppeared(inf domain.Inferior) { i.svc.NotifyInferiorAppeared(inf) }
