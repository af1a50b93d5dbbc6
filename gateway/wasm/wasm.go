// Package wasm imports WebAssembly modules into a wazero runtime.
//
// Each namespace is bound to a module binary. Import compiles the binary and
// instantiates it under the namespace as its module name, so modules imported
// later can import its exports by namespace. Instantiation fails when a
// module's imports are not instantiated yet, which is why the loader imports
// dependencies first.
package wasm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/script-loader/registry"
)

// Gateway instantiates modules in a wazero runtime.
// Thread-safe.
type Gateway struct {
	runtime wazero.Runtime
	sources map[registry.Namespace][]byte
	owned   bool
	mu      sync.Mutex
}

// New creates a gateway with its own runtime. Close releases it.
func New(ctx context.Context) *Gateway {
	g := NewWithRuntime(wazero.NewRuntime(ctx))
	g.owned = true
	return g
}

// NewWithRuntime creates a gateway over an existing runtime.
// Close does not close a runtime passed in here.
func NewWithRuntime(rt wazero.Runtime) *Gateway {
	return &Gateway{
		runtime: rt,
		sources: make(map[registry.Namespace][]byte),
	}
}

// Runtime returns the wazero runtime.
func (g *Gateway) Runtime() wazero.Runtime {
	return g.runtime
}

// Define binds ns to a module binary.
func (g *Gateway) Define(ns string, wasm []byte) error {
	namespace, err := registry.ParseNamespace(ns)
	if err != nil {
		return fmt.Errorf("wasm: define %q: %w", ns, err)
	}
	if len(wasm) == 0 {
		return fmt.Errorf("wasm: define %q: empty module", ns)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.sources[namespace] = wasm
	return nil
}

// Import compiles and instantiates the module bound to ns. Importing a
// namespace that is already instantiated is a no-op.
func (g *Gateway) Import(ctx context.Context, ns registry.Namespace) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := string(ns)
	if g.runtime.Module(name) != nil {
		return nil
	}
	src, ok := g.sources[ns]
	if !ok {
		return fmt.Errorf("wasm: no module bound to namespace %q", ns)
	}

	compiled, err := g.runtime.CompileModule(ctx, src)
	if err != nil {
		return fmt.Errorf("wasm: compile %q: %w", ns, err)
	}

	config := wazero.NewModuleConfig().WithName(name)
	if _, err := g.runtime.InstantiateModule(ctx, compiled, config); err != nil {
		compiled.Close(ctx)
		return fmt.Errorf("wasm: instantiate %q: %w", ns, err)
	}
	return nil
}

// Module returns the instantiated module for ns, or nil
func (g *Gateway) Module(ns registry.Namespace) api.Module {
	return g.runtime.Module(string(ns))
}

// Close releases the runtime if the gateway created it.
func (g *Gateway) Close(ctx context.Context) error {
	if !g.owned {
		return nil
	}
	return g.runtime.Close(ctx)
}
