package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/script-loader/errors"
	"github.com/wippyai/script-loader/gateway"
	"github.com/wippyai/script-loader/registry"
)

// Options configures loader behavior.
type Options struct {
	// RetryFailed lets a later load import a library whose previous import
	// failed. When false the previous failure is returned again.
	RetryFailed bool
}

// DefaultOptions returns default loader configuration.
func DefaultOptions() Options {
	return Options{
		RetryFailed: true,
	}
}

// Loader drives gateway imports for the libraries of a registry.
// Thread-safe.
type Loader struct {
	registry *registry.Registry
	gateway  gateway.Gateway
	flights  singleflight.Group
	options  Options
}

// New creates a loader over reg that imports through gw.
func New(reg *registry.Registry, gw gateway.Gateway, opts Options) *Loader {
	return &Loader{
		registry: reg,
		gateway:  gw,
		options:  opts,
	}
}

// NewWithDefaults creates a loader with default options.
func NewWithDefaults(reg *registry.Registry, gw gateway.Gateway) *Loader {
	return New(reg, gw, DefaultOptions())
}

// Registry returns the registry the loader reads.
func (l *Loader) Registry() *registry.Registry {
	return l.registry
}

// Options returns the configuration.
func (l *Loader) Options() Options {
	return l.options
}

// EnsureLoaded imports the named library after every library it depends on,
// directly or transitively. Libraries already loaded are skipped.
//
// It returns an unknown dependency error when the root or any reachable
// dependency is not registered, a cyclic dependency error naming the cycle,
// or an import failure for the first library the gateway failed to import.
// Cycles and unknown names are reported before any import happens.
//
// ctx is checked before each library import. A started import is not
// cancelled: the gateway receives ctx values but never its cancellation.
func (l *Loader) EnsureLoaded(ctx context.Context, name string) error {
	root, ok := l.registry.Lookup(name)
	if !ok {
		return errors.UnknownDependency(name)
	}
	if root.State == registry.StateLoaded {
		return nil
	}

	order, err := l.plan(root)
	if err != nil {
		Logger().Debug("load plan rejected", zap.String("root", name), zap.Error(err))
		return err
	}

	Logger().Debug("loading library",
		zap.String("root", name),
		zap.Stringers("order", order))

	for _, sym := range order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("loader: load %q: %w", name, err)
		}
		if err := l.load(ctx, sym); err != nil {
			return err
		}
	}
	return nil
}

// Plan returns the libraries EnsureLoaded(name) would import now, in import
// order. It has no side effects.
func (l *Loader) Plan(name string) ([]registry.Symbol, error) {
	root, ok := l.registry.Lookup(name)
	if !ok {
		return nil, errors.UnknownDependency(name)
	}
	if root.State == registry.StateLoaded {
		return nil, nil
	}
	return l.plan(root)
}

// LoadAll loads every registered library, roots taken in registration order.
// It keeps going after a failure and returns all failures combined.
func (l *Loader) LoadAll(ctx context.Context) error {
	var errs error
	for _, lib := range l.registry.Libraries() {
		if err := l.EnsureLoaded(ctx, string(lib.Name)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// load imports one library, sharing the import with concurrent callers.
// The import runs without the caller's cancellation because joined callers
// share its outcome.
func (l *Loader) load(ctx context.Context, name registry.Symbol) error {
	flightCtx := context.WithoutCancel(ctx)
	_, err, shared := l.flights.Do(string(name), func() (any, error) {
		return nil, l.importLibrary(flightCtx, name)
	})
	if shared {
		Logger().Debug("shared in-flight import", zap.Stringer("name", name), zap.Error(err))
	}
	return err
}

// importLibrary runs inside the library's flight, so the state read here
// cannot change underneath it.
func (l *Loader) importLibrary(ctx context.Context, name registry.Symbol) error {
	lib, ok := l.registry.Lookup(string(name))
	if !ok {
		return errors.UnknownDependency(string(name))
	}

	switch lib.State {
	case registry.StateLoaded:
		return nil
	case registry.StateFailed:
		if !l.options.RetryFailed {
			return errors.ImportFailure(string(name), lib.LastError)
		}
	}

	if err := l.registry.MarkLoading(name); err != nil {
		return err
	}

	start := time.Now()
	if err := l.callGateway(ctx, lib.Namespace); err != nil {
		if merr := l.registry.MarkFailed(name, err); merr != nil {
			Logger().Error("mark failed", zap.Stringer("name", name), zap.Error(merr))
		}
		Logger().Warn("library import failed",
			zap.Stringer("name", name),
			zap.Stringer("namespace", lib.Namespace),
			zap.Int("attempt", lib.Attempts+1),
			zap.Error(err))
		return errors.ImportFailure(string(name), err)
	}

	if err := l.registry.MarkLoaded(name); err != nil {
		return err
	}
	Logger().Debug("library imported",
		zap.Stringer("name", name),
		zap.Stringer("namespace", lib.Namespace),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// callGateway reports a gateway panic as an error so the library never
// stays in the loading state.
func (l *Loader) callGateway(ctx context.Context, ns registry.Namespace) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return l.gateway.Import(ctx, ns)
}
