// Package script imports JavaScript bindings into a goja runtime.
//
// Namespaces are bound either to native Go module loaders or to script
// sources. Import runs the bound loader once; on success its exports become
// available to later scripts through require(namespace). A loader that
// throws leaves nothing behind, so the import can be retried.
package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/wippyai/script-loader/registry"
)

// Gateway runs imports in a single goja runtime.
// Thread-safe: all runtime access is serialized.
type Gateway struct {
	vm      *goja.Runtime
	modules *require.Registry
	loaders map[registry.Namespace]require.ModuleLoader
	exports map[registry.Namespace]goja.Value
	mu      sync.Mutex
}

// New creates a gateway with a fresh runtime. The runtime has require and
// console enabled.
func New() *Gateway {
	vm := goja.New()
	modules := require.NewRegistry()
	modules.Enable(vm)
	console.Enable(vm)

	return &Gateway{
		vm:      vm,
		modules: modules,
		loaders: make(map[registry.Namespace]require.ModuleLoader),
		exports: make(map[registry.Namespace]goja.Value),
	}
}

// RegisterNative binds ns to a native module loader.
// RegisterNative overwrites a binding that has not been imported yet.
func (g *Gateway) RegisterNative(ns string, loader require.ModuleLoader) error {
	namespace, err := registry.ParseNamespace(ns)
	if err != nil {
		return fmt.Errorf("script: register %q: %w", ns, err)
	}
	if loader == nil {
		return fmt.Errorf("script: register %q: nil loader", ns)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.exports[namespace]; ok {
		return fmt.Errorf("script: register %q: already imported", ns)
	}
	g.loaders[namespace] = loader
	return nil
}

// RegisterScript binds ns to JavaScript source. The source runs as a
// CommonJS module body with exports, require and module in scope.
func (g *Gateway) RegisterScript(ns string, src []byte) error {
	prg, err := goja.Compile(ns, "(function(exports, require, module) {"+string(src)+"\n})", false)
	if err != nil {
		return fmt.Errorf("script: compile %q: %w", ns, err)
	}
	return g.RegisterNative(ns, programLoader(prg))
}

// programLoader runs a compiled module wrapper against the module object.
func programLoader(prg *goja.Program) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		wrapper, err := vm.RunProgram(prg)
		if err != nil {
			panic(err)
		}
		call, ok := goja.AssertFunction(wrapper)
		if !ok {
			panic(vm.NewTypeError("module wrapper is not a function"))
		}
		if _, err := call(goja.Undefined(), module.Get("exports"), vm.Get("require"), module); err != nil {
			panic(err)
		}
	}
}

// Bound reports whether ns has a registered loader.
func (g *Gateway) Bound(ns registry.Namespace) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.loaders[ns]
	return ok
}

// Import runs the loader bound to ns. Importing an already imported
// namespace is a no-op. A loader that throws or panics leaves ns unimported
// and Import returns an error.
func (g *Gateway) Import(ctx context.Context, ns registry.Namespace) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: import %q: %v", ns, r)
		}
	}()

	if _, ok := g.exports[ns]; ok {
		return nil
	}
	loader, ok := g.loaders[ns]
	if !ok {
		return fmt.Errorf("script: no module bound to namespace %q", ns)
	}

	module := g.vm.NewObject()
	if err := module.Set("exports", g.vm.NewObject()); err != nil {
		return fmt.Errorf("script: import %q: %w", ns, err)
	}

	// Calling through a JS function turns values thrown by the loader into errors.
	run, _ := goja.AssertFunction(g.vm.ToValue(func(goja.FunctionCall) goja.Value {
		loader(g.vm, module)
		return goja.Undefined()
	}))
	if _, err := run(goja.Undefined()); err != nil {
		return fmt.Errorf("script: import %q: %w", ns, err)
	}

	exports := module.Get("exports")
	g.exports[ns] = exports
	g.modules.RegisterNativeModule(string(ns), func(_ *goja.Runtime, m *goja.Object) {
		_ = m.Set("exports", exports)
	})
	return nil
}

// Exports returns the exports of an imported namespace.
func (g *Gateway) Exports(ns registry.Namespace) (goja.Value, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.exports[ns]
	return v, ok
}

// Do runs fn with exclusive access to the runtime.
func (g *Gateway) Do(fn func(vm *goja.Runtime) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.vm)
}
