package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wippyai/script-loader/registry"
)

// Mux routes imports to gateways by namespace prefix.
//
// A prefix matches whole dot-separated segments: "pxr" matches "pxr.Tf" but
// not "pxrUsd.Tf". Exact routes are checked first, then the longest matching
// prefix wins; namespaces with no match go to the fallback gateway.
// Thread-safe.
type Mux struct {
	exact    map[registry.Namespace]Gateway
	routes   map[string]Gateway
	fallback Gateway
	mu       sync.RWMutex
}

// NewMux creates a mux with an optional fallback gateway
func NewMux(fallback Gateway) *Mux {
	return &Mux{
		exact:    make(map[registry.Namespace]Gateway),
		routes:   make(map[string]Gateway),
		fallback: fallback,
	}
}

// Handle routes namespaces under prefix to gw. Handle overwrites an existing
// route for the same prefix.
func (m *Mux) Handle(prefix string, gw Gateway) error {
	if _, err := registry.ParseNamespace(prefix); err != nil {
		return fmt.Errorf("gateway: handle %q: %w", prefix, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[prefix] = gw
	return nil
}

// HandleExact routes ns itself to gw. Namespaces nested under ns are not
// affected.
func (m *Mux) HandleExact(ns string, gw Gateway) error {
	namespace, err := registry.ParseNamespace(ns)
	if err != nil {
		return fmt.Errorf("gateway: handle %q: %w", ns, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exact[namespace] = gw
	return nil
}

// Route returns the gateway responsible for ns, or nil
func (m *Mux) Route(ns registry.Namespace) Gateway {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if gw, ok := m.exact[ns]; ok {
		return gw
	}

	segments := ns.Segments()
	for i := len(segments); i > 0; i-- {
		if gw, ok := m.routes[strings.Join(segments[:i], ".")]; ok {
			return gw
		}
	}
	return m.fallback
}

// Import forwards to the gateway routed for ns.
func (m *Mux) Import(ctx context.Context, ns registry.Namespace) error {
	gw := m.Route(ns)
	if gw == nil {
		return fmt.Errorf("gateway: no route for namespace %q", ns)
	}
	return gw.Import(ctx, ns)
}
