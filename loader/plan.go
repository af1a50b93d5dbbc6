package loader

import (
	"github.com/wippyai/script-loader/errors"
	"github.com/wippyai/script-loader/registry"
)

// planner computes a depth-first post-order over a registry snapshot.
type planner struct {
	registry *registry.Registry
	done     map[registry.Symbol]bool
	onStack  map[registry.Symbol]bool
	stack    []registry.Symbol
	order    []registry.Symbol
}

// plan returns the libraries reachable from root that are not loaded yet,
// each after its dependencies. Loaded libraries are treated as satisfied and
// not descended into.
func (l *Loader) plan(root registry.Library) ([]registry.Symbol, error) {
	p := &planner{
		registry: l.registry,
		done:     make(map[registry.Symbol]bool),
		onStack:  make(map[registry.Symbol]bool),
	}
	if err := p.visit(root); err != nil {
		return nil, err
	}
	return p.order, nil
}

func (p *planner) visit(lib registry.Library) error {
	p.onStack[lib.Name] = true
	p.stack = append(p.stack, lib.Name)

	for _, dep := range lib.Dependencies {
		if p.onStack[dep] {
			return errors.CyclicDependency(registry.CyclePath(p.stack, dep))
		}
		if p.done[dep] {
			continue
		}

		next, ok := p.registry.Lookup(string(dep))
		if !ok {
			return errors.UnknownDependencyOf(string(dep), string(lib.Name))
		}
		if next.State == registry.StateLoaded {
			p.done[dep] = true
			continue
		}
		if err := p.visit(next); err != nil {
			return err
		}
	}

	p.stack = p.stack[:len(p.stack)-1]
	delete(p.onStack, lib.Name)
	p.done[lib.Name] = true
	p.order = append(p.order, lib.Name)
	return nil
}
