package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/script-loader/errors"
)

// Library is a snapshot of one registered library.
type Library struct {
	LastError    error
	Name         Symbol
	Namespace    Namespace
	Dependencies []Symbol
	State        State
	Attempts     int
}

// clone returns a copy that shares nothing mutable with the registry
func (l *Library) clone() Library {
	c := *l
	c.Dependencies = slices.Clone(l.Dependencies)
	return c
}

// Registry maps library names to their declarations and load state.
// Registration order is preserved for deterministic diagnostics.
// Thread-safe.
type Registry struct {
	libs  map[Symbol]*Library
	order []Symbol
	mu    sync.RWMutex
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		libs: make(map[Symbol]*Library),
	}
}

// RegisterLibrary declares a library with its script namespace and direct
// dependencies. Dependencies need not be registered yet.
//
// Registering the same declaration twice is a no-op. A conflicting
// declaration for a registered name returns a duplicate registration error
// and leaves the first declaration in place.
func (r *Registry) RegisterLibrary(name, namespace string, dependencies []string) error {
	sym, err := ParseSymbol(name)
	if err != nil {
		return errors.InvalidInput(errors.PhaseRegister, err.Error())
	}
	ns, err := ParseNamespace(namespace)
	if err != nil {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Name(name).Detail(err.Error()).Build()
	}
	deps, err := parseSymbols(dependencies)
	if err != nil {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Name(name).Detail(err.Error()).Build()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.libs[sym]; ok {
		if existing.Namespace != ns {
			return errors.DuplicateRegistration(name,
				fmt.Sprintf("namespace %q conflicts with registered %q", ns, existing.Namespace))
		}
		if !slices.Equal(existing.Dependencies, deps) {
			return errors.DuplicateRegistration(name,
				fmt.Sprintf("dependencies [%s] conflict with registered [%s]",
					joinSymbols(deps), joinSymbols(existing.Dependencies)))
		}
		Logger().Debug("library already registered", zap.String("name", name))
		return nil
	}

	r.libs[sym] = &Library{
		Name:         sym,
		Namespace:    ns,
		Dependencies: deps,
		State:        StateRegistered,
	}
	r.order = append(r.order, sym)

	Logger().Debug("library registered",
		zap.String("name", name),
		zap.String("namespace", namespace),
		zap.Strings("dependencies", dependencies))
	return nil
}

// Lookup returns a snapshot of the named library
func (r *Registry) Lookup(name string) (Library, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lib, ok := r.libs[Symbol(name)]
	if !ok {
		return Library{}, false
	}
	return lib.clone(), true
}

// Libraries returns snapshots of all libraries in registration order
func (r *Registry) Libraries() []Library {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Library, 0, len(r.order))
	for _, sym := range r.order {
		result = append(result, r.libs[sym].clone())
	}
	return result
}

// Len returns the number of registered libraries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// MarkLoading moves a Registered or Failed library to Loading.
func (r *Registry) MarkLoading(name Symbol) error {
	return r.transition(name, StateLoading, nil, StateRegistered, StateFailed)
}

// MarkLoaded moves a Loading library to Loaded.
func (r *Registry) MarkLoaded(name Symbol) error {
	return r.transition(name, StateLoaded, nil, StateLoading)
}

// MarkFailed moves a Loading library to Failed and records cause.
func (r *Registry) MarkFailed(name Symbol, cause error) error {
	return r.transition(name, StateFailed, cause, StateLoading)
}

func (r *Registry) transition(name Symbol, to State, cause error, from ...State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lib, ok := r.libs[name]
	if !ok {
		return errors.UnknownDependency(string(name))
	}
	if !slices.Contains(from, lib.State) {
		return errors.InvalidState(string(name), lib.State.String(), to.String())
	}

	lib.State = to
	switch to {
	case StateLoading:
		lib.Attempts++
	case StateLoaded:
		lib.LastError = nil
	case StateFailed:
		lib.LastError = cause
	}
	return nil
}

func joinSymbols(syms []Symbol) string {
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}
