// Package gateway defines how the loader reaches the host's script import
// machinery.
//
// A Gateway executes the script bindings of one namespace. The loader calls
// it at most once concurrently per library and never again once the import
// succeeded, so implementations need not guard against repeated imports of
// the same namespace.
//
// Sub-packages provide gateways for concrete hosts:
//
//   - script: JavaScript modules in a goja runtime
//   - wasm: WebAssembly modules in a wazero runtime
package gateway

import (
	"context"

	"github.com/wippyai/script-loader/registry"
)

// Gateway imports the script bindings for a namespace.
type Gateway interface {
	Import(ctx context.Context, ns registry.Namespace) error
}

// Func adapts a function to the Gateway interface.
type Func func(ctx context.Context, ns registry.Namespace) error

// Import calls f(ctx, ns).
func (f Func) Import(ctx context.Context, ns registry.Namespace) error {
	return f(ctx, ns)
}
