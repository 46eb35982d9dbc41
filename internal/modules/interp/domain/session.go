package domain

import (
	"fmt"
	"sync"

	apperrors "dbgsh/internal/platform/errors"
)

// CreateFunc builds a fresh interpreter for a kind, normally Registry.Create.
type CreateFunc func(name string) (Interp, error)

type slot struct {
	interp Interp
	inited bool
}

// Session is one front-end connection. It exclusively owns every interpreter
// instantiated for it: at most one instance per kind, created on demand and
// cached for the session's life. The top-level interpreter is the one active
// when the session starts and never changes; the current interpreter changes
// as front-ends push and pop each other.
//
// Each session carries its own lock. Sessions are independent; no
// cross-session synchronization exists or is needed. The lock guards pointer
// transitions only, never command execution, so Exec may reenter the
// controller from the same goroutine.
type Session struct {
	id           string
	topLevelName string

	mu      sync.Mutex
	byName  map[string]*slot
	order   []*slot
	current *slot
}

func NewSession(id, topLevelName string) *Session {
	return &Session{
		id:           id,
		topLevelName: topLevelName,
		byName:       map[string]*slot{},
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) TopLevelName() string { return s.topLevelName }

// LookupOrCreate returns the cached instance for name, building and caching
// one via create when the kind has not been instantiated in this session yet.
func (s *Session) LookupOrCreate(name string, create CreateFunc) (Interp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, err := s.lookupOrCreateLocked(name, create)
	if err != nil {
		return nil, err
	}
	return sl.interp, nil
}

func (s *Session) lookupOrCreateLocked(name string, create CreateFunc) (*slot, error) {
	if sl, ok := s.byName[name]; ok {
		return sl, nil
	}
	in, err := create(name)
	if err != nil {
		return nil, err
	}
	sl := &slot{interp: in}
	s.byName[name] = sl
	s.order = append(s.order, sl)
	return sl, nil
}

// SetCurrent resolves name and makes it current: first activation runs Init
// exactly once (topLevel set if name is the session's designated top-level),
// then the outgoing interpreter is suspended strictly before the incoming one
// is resumed. The whole transition holds the session lock, so the fan-out
// never observes a half-switched state. Switching to the already-current
// interpreter is a no-op.
//
// On any failure the previous current interpreter is left fully in place.
// The previous interpreter is returned so callers can implement scoped
// switches; it is nil only before the session's first activation.
func (s *Session) SetCurrent(name string, create CreateFunc) (Interp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, err := s.lookupOrCreateLocked(name, create)
	if err != nil {
		return nil, err
	}
	prev := s.current
	if sl == prev {
		return prev.interp, nil
	}
	if !sl.inited {
		if err := sl.interp.Init(name == s.topLevelName); err != nil {
			return nil, fmt.Errorf("initialize interpreter %s: %w", name, err)
		}
		sl.inited = true
	}
	if prev != nil {
		prev.interp.Suspend()
	}
	s.current = sl
	sl.interp.Resume()
	if prev == nil {
		return nil, nil
	}
	return prev.interp, nil
}

// Current returns the session's current interpreter, or an error during the
// transient window before the first activation.
func (s *Session) Current() (Interp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, apperrors.ErrNoCurrentInterp
	}
	return s.current.interp, nil
}

// TopLevel returns the session's top-level interpreter. It exists from the
// moment the session finished starting.
func (s *Session) TopLevel() (Interp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.byName[s.topLevelName]; ok {
		return sl.interp, nil
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrInterpNotFound, s.topLevelName)
}

// CurrentNamed reports whether the current interpreter was created under name.
func (s *Session) CurrentNamed(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.interp.Name() == name
}

// Initialized reports whether the instance registered under name has run Init.
func (s *Session) Initialized(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.byName[name]
	return ok && sl.inited
}

// Interps snapshots every instantiated interpreter in instantiation order.
// Fan-out iterates this; the order is deterministic within a process run.
func (s *Session) Interps() []Interp {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Interp, 0, len(s.order))
	for _, sl := range s.order {
		out = append(out, sl.interp)
	}
	return out
}

// Owns reports whether in was instantiated by this session.
func (s *Session) Owns(in Interp) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.order {
		if sl.interp == in {
			return true
		}
	}
	return false
}

// Close suspends the current interpreter and drops every instance. The
// session must not be used afterward.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.interp.Suspend()
		s.current = nil
	}
	s.byName = map[string]*slot{}
	s.order = nil
}
