package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dop251/goja"
	"go.uber.org/multierr"

	"github.com/wippyai/script-loader/gateway"
	"github.com/wippyai/script-loader/gateway/script"
	"github.com/wippyai/script-loader/gateway/wasm"
	"github.com/wippyai/script-loader/loader"
	"github.com/wippyai/script-loader/manifest"
	"github.com/wippyai/script-loader/registry"
)

// host binds every library of a manifest to a gateway and owns the loader.
type host struct {
	loader  *loader.Loader
	scripts *script.Gateway
	modules *wasm.Gateway
}

// newHost wires a manifest to a fresh registry and gateways.
//
// Libraries with a script source are bound to it, libraries with a wasm
// source are routed to the wasm gateway, and the rest get a native module
// exporting their name. Conflicting declarations are returned alongside a
// usable host.
func newHost(ctx context.Context, f *manifest.File) (*host, error) {
	h := &host{
		scripts: script.New(),
		modules: wasm.New(ctx),
	}
	mux := gateway.NewMux(h.scripts)

	for _, lib := range f.Libraries {
		switch {
		case lib.Wasm != "":
			src, err := os.ReadFile(lib.Wasm)
			if err != nil {
				return nil, h.close(ctx, fmt.Errorf("library %q: %w", lib.Name, err))
			}
			if err := h.modules.Define(lib.Namespace, src); err != nil {
				return nil, h.close(ctx, err)
			}
			if err := mux.HandleExact(lib.Namespace, h.modules); err != nil {
				return nil, h.close(ctx, err)
			}
		case lib.Script != "":
			src, err := os.ReadFile(lib.Script)
			if err != nil {
				return nil, h.close(ctx, fmt.Errorf("library %q: %w", lib.Name, err))
			}
			if err := h.scripts.RegisterScript(lib.Namespace, src); err != nil {
				return nil, h.close(ctx, err)
			}
		default:
			if err := h.scripts.RegisterNative(lib.Namespace, nameModule(lib.Name)); err != nil {
				return nil, h.close(ctx, err)
			}
		}
	}

	reg := registry.New()
	err := f.Declarations().Apply(reg)
	h.loader = loader.NewWithDefaults(reg, mux)
	return h, err
}

func (h *host) close(ctx context.Context, cause error) error {
	return multierr.Append(cause, h.modules.Close(ctx))
}

// Close releases the wasm runtime.
func (h *host) Close(ctx context.Context) error {
	return h.modules.Close(ctx)
}

// nameModule is the binding of a library that declares no source.
func nameModule(name string) func(*goja.Runtime, *goja.Object) {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").ToObject(vm)
		_ = exports.Set("library", name)
	}
}
