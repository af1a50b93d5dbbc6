package registry

import (
	"go.uber.org/multierr"

	"github.com/wippyai/script-loader/errors"
)

// Validate checks the whole registry: every dependency must be registered
// and the dependency graph must be acyclic. All problems are returned
// combined, in registration order.
func (r *Registry) Validate() error {
	libs := r.Libraries()
	index := make(map[Symbol]*Library, len(libs))
	for i := range libs {
		index[libs[i].Name] = &libs[i]
	}

	var errs error
	for _, lib := range libs {
		for _, dep := range lib.Dependencies {
			if _, ok := index[dep]; !ok {
				errs = multierr.Append(errs, errors.UnknownDependencyOf(string(dep), string(lib.Name)))
			}
		}
	}

	const (
		unvisited = iota
		onStack
		done
	)
	color := make(map[Symbol]int, len(libs))
	var stack []Symbol

	var visit func(sym Symbol)
	visit = func(sym Symbol) {
		color[sym] = onStack
		stack = append(stack, sym)
		for _, dep := range index[sym].Dependencies {
			if _, ok := index[dep]; !ok {
				continue
			}
			switch color[dep] {
			case unvisited:
				visit(dep)
			case onStack:
				errs = multierr.Append(errs, errors.CyclicDependency(CyclePath(stack, dep)))
			}
		}
		stack = stack[:len(stack)-1]
		color[sym] = done
	}

	for _, lib := range libs {
		if color[lib.Name] == unvisited {
			visit(lib.Name)
		}
	}
	return errs
}

// CyclePath returns the names from the first occurrence of repeat on stack
// back to repeat itself.
func CyclePath(stack []Symbol, repeat Symbol) []string {
	start := 0
	for i, s := range stack {
		if s == repeat {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		path = append(path, string(s))
	}
	return append(path, string(repeat))
}
