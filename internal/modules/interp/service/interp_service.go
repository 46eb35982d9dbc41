package service

import (
	"context"
	"fmt"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"dbgsh/internal/modules/interp/domain"
	apperrors "dbgsh/internal/platform/errors"
	"dbgsh/internal/platform/id"
)

// InterpService is the interpreter controller: it creates UI sessions, looks
// up and switches interpreters inside them, and fans engine events out to
// every live interpreter across every session.
type InterpService struct {
	registry *domain.Registry
	idGen    id.Generator
	log      hclog.Logger

	mu       sync.Mutex
	sessions []*domain.Session
	byID     map[string]*domain.Session
}

func NewInterpService(registry *domain.Registry, idGen id.Generator, log hclog.Logger) *InterpService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &InterpService{
		registry: registry,
		idGen:    idGen,
		log:      log,
		byID:     map[string]*domain.Session{},
	}
}

// NewSession starts a UI session whose top-level interpreter is topLevelName.
// An unknown kind is a hard failure: no session exists without a valid
// current interpreter.
func (s *InterpService) NewSession(topLevelName string) (*domain.Session, error) {
	sess := domain.NewSession(s.idGen.New(), topLevelName)
	if _, err := sess.SetCurrent(topLevelName, s.registry.Create); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.byID[sess.ID()] = sess
	s.mu.Unlock()
	return sess, nil
}

// Kinds lists registered interpreter kinds in registration order.
func (s *InterpService) Kinds() []string {
	return s.registry.Kinds()
}

// Session resolves a session by id.
func (s *InterpService) Session(sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// CloseSession tears a session down, cascading destruction of its
// interpreters. Closed sessions drop out of the fan-out.
func (s *InterpService) CloseSession(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.byID[sessionID]
	if ok {
		delete(s.byID, sessionID)
		for i, candidate := range s.sessions {
			if candidate == sess {
				s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
	}
	sess.Close()
	return nil
}

// LookupOrCreate returns the session's cached instance for name, creating it
// through the factory registry on first use. The session's current
// interpreter is untouched either way.
func (s *InterpService) LookupOrCreate(sess *domain.Session, name string) (domain.Interp, error) {
	return sess.LookupOrCreate(name, s.registry.Create)
}

// SetCurrent switches sess to the interpreter registered under name and
// returns the previously current one. Resolution failure leaves the prior
// state fully intact.
func (s *InterpService) SetCurrent(sess *domain.Session, name string) (domain.Interp, error) {
	return sess.SetCurrent(name, s.registry.Create)
}

// WithCurrent runs fn with the named interpreter temporarily current and
// restores the previous interpreter on every exit path, including a panic in
// fn. This is how one interpreter synchronously drives another and always
// lands back where it started.
func (s *InterpService) WithCurrent(sess *domain.Session, name string, fn func(domain.Interp) error) error {
	prev, err := s.SetCurrent(sess, name)
	if err != nil {
		return err
	}
	defer func() {
		if prev == nil {
			return
		}
		if _, err := s.SetCurrent(sess, prev.Name()); err != nil {
			s.log.Error("restore interpreter failed", "interp", prev.Name(), "error", err)
		}
	}()
	cur, err := sess.Current()
	if err != nil {
		return err
	}
	return fn(cur)
}

// ExecWith executes one command with the named interpreter temporarily
// current.
func (s *InterpService) ExecWith(ctx context.Context, sess *domain.Session, name, command string) error {
	return s.WithCurrent(sess, name, func(in domain.Interp) error {
		return in.Exec(ctx, command)
	})
}

// Exec routes one command line through the session's current interpreter.
func (s *InterpService) Exec(ctx context.Context, sess *domain.Session, command string) error {
	cur, err := sess.Current()
	if err != nil {
		return err
	}
	return cur.Exec(ctx, command)
}

// SessionOf finds the session owning in.
func (s *InterpService) SessionOf(in domain.Interp) (*domain.Session, error) {
	s.mu.Lock()
	sessions := append([]*domain.Session(nil), s.sessions...)
	s.mu.Unlock()
	for _, sess := range sessions {
		if sess.Owns(in) {
			return sess, nil
		}
	}
	return nil, fmt.Errorf("interpreter %s: no owning session", in.Name())
}

// SetLogging forwards a logging reconfiguration to the session's current
// interpreter.
func (s *InterpService) SetLogging(sess *domain.Session, cfg domain.LogConfig) error {
	cur, err := sess.Current()
	if err != nil {
		return err
	}
	return cur.SetLogging(cfg)
}

// PreCommandLoop gives the session's current interpreter a chance to print a
// prompt before its read-eval loop starts.
func (s *InterpService) PreCommandLoop(sess *domain.Session) error {
	cur, err := sess.Current()
	if err != nil {
		return err
	}
	cur.PreCommandLoop()
	return nil
}

// SupportsCommandEditing queries the session's current interpreter.
func (s *InterpService) SupportsCommandEditing(sess *domain.Session) (bool, error) {
	cur, err := sess.Current()
	if err != nil {
		return false, err
	}
	return cur.SupportsCommandEditing(), nil
}

// broadcast delivers one event to every instantiated interpreter in every
// session: sessions in creation order, interpreters in instantiation order.
// A hook that panics is logged and skipped; it never stops the remaining
// interpreters from observing the event.
func (s *InterpService) broadcast(event string, fn func(domain.Interp)) {
	s.mu.Lock()
	sessions := append([]*domain.Session(nil), s.sessions...)
	s.mu.Unlock()
	for _, sess := range sessions {
		for _, in := range sess.Interps() {
			s.deliver(event, sess.ID(), in, fn)
		}
	}
}

func (s *InterpService) deliver(event, sessionID string, in domain.Interp, fn func(domain.Interp)) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("interpreter event hook failed",
				"event", event, "session", sessionID, "interp", in.Name(), "panic", r)
		}
	}()
	fn(in)
}

func (s *InterpService) NotifySignalReceived(sig domain.Signal) {
	s.broadcast("signal-received", func(in domain.Interp) { in.OnSignalReceived(sig) })
}

func (s *InterpService) NotifySignalExited(sig domain.Signal) {
	s.broadcast("signal-exited", func(in domain.Interp) { in.OnSignalExited(sig) })
}

func (s *InterpService) NotifyNormalStop(stop domain.StopInfo) {
	s.broadcast("normal-stop", func(in domain.Interp) { in.OnNormalStop(stop) })
}

func (s *InterpService) NotifyExited(status int) {
	s.broadcast("exited", func(in domain.Interp) { in.OnExited(status) })
}

func (s *InterpService) NotifyNoHistory() {
	s.broadcast("no-history", func(in domain.Interp) { in.OnNoHistory() })
}

func (s *InterpService) NotifySyncExecutionDone() {
	s.broadcast("sync-execution-done", func(in domain.Interp) { in.OnSyncExecutionDone() })
}

func (s *InterpService) NotifyCommandError() {
	s.broadcast("command-error", func(in domain.Interp) { in.OnCommandError() })
}

func (s *InterpService) NotifyUserSelectedContextChanged(sel domain.UserSelection) {
	s.broadcast("user-selected-context-changed", func(in domain.Interp) { in.OnUserSelectedContextChanged(sel) })
}

func (s *InterpService) NotifyNewThread(t domain.Thread) {
	s.broadcast("new-thread", func(in domain.Interp) { in.OnNewThread(t) })
}

func (s *InterpService) NotifyThreadExited(t domain.Thread, silent bool) {
	s.broadcast("thread-exited", func(in domain.Interp) { in.OnThreadExited(t, silent) })
}

func (s *InterpService) NotifyInferiorAdded(inf domain.Inferior) {
	s.broadcast("inferior-added", func(in domain.Interp) { in.OnInferiorAdded(inf) })
}

func (s *InterpService) NotifyInferiorAppeared(inf domain.Inferior) {
	s.broadcast("inferior-appeared", func(in domain.Interp) { in.OnInferiorAppeared(inf) })
}
