package scriptloader

import (
	"github.com/wippyai/script-loader/gateway"
	"github.com/wippyai/script-loader/loader"
	"github.com/wippyai/script-loader/registry"
)

// Setup applies decls to a fresh registry and returns a loader over it.
//
// Conflicting declarations are logged and skipped; the loader is returned
// together with the combined conflicts so callers decide whether they are
// fatal.
func Setup(decls *registry.Declarations, gw gateway.Gateway, opts ...loader.Options) (*loader.Loader, error) {
	reg := registry.New()
	err := decls.Apply(reg)

	o := loader.DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	return loader.New(reg, gw, o), err
}
