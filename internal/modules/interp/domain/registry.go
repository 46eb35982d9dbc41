package domain

import (
	"fmt"

	apperrors "dbgsh/internal/platform/errors"
)

// Factory builds a fresh interpreter instance for a kind. The registry never
// caches instances; caching is the session's job.
type Factory func(name string) Interp

// Registry maps interpreter kind names to factories. It is populated once at
// startup, before any UI session exists, and is read-only afterward, so
// unsynchronized concurrent reads are safe. It is an explicit object rather
// than package state so tests can run independent engine instances.
type Registry struct {
	factories map[string]Factory
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register inserts a new kind. Registering a nil factory or the same name
// twice is a startup programming error and panics: the process must not
// continue with ambiguous factories.
func (r *Registry) Register(name string, factory Factory) {
	if name == "" {
		panic("interp: cannot register empty kind name")
	}
	if factory == nil {
		panic(fmt.Sprintf("interp: nil factory for kind %q", name))
	}
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("interp: kind %q registered twice", name))
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
}

// Create invokes the stored factory to build a fresh instance.
func (r *Registry) Create(name string) (Interp, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInterpNotFound, name)
	}
	return factory(name), nil
}

// Kinds lists registered kind names in registration order.
func (r *Registry) Kinds() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
