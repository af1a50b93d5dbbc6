package registry

import (
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Declaration is one library declaration awaiting registration.
type Declaration struct {
	Name         string
	Namespace    string
	Dependencies []string
}

// Declarations collects library declarations without registering them.
// Modules append during init; the program applies the list once, in
// declaration order, before any load is attempted.
type Declarations struct {
	list []Declaration
	mu   sync.Mutex
}

// Default is the process-wide declaration list used by Declare.
var Default = &Declarations{}

// Declare appends a declaration to Default.
func Declare(name, namespace string, dependencies ...string) {
	Default.Declare(name, namespace, dependencies...)
}

// Declare appends a declaration.
func (d *Declarations) Declare(name, namespace string, dependencies ...string) {
	d.Add(Declaration{
		Name:         name,
		Namespace:    namespace,
		Dependencies: dependencies,
	})
}

// Add appends decl.
func (d *Declarations) Add(decl Declaration) {
	decl.Dependencies = slices.Clone(decl.Dependencies)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = append(d.list, decl)
}

// List returns the collected declarations in declaration order.
func (d *Declarations) List() []Declaration {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make([]Declaration, len(d.list))
	for i, decl := range d.list {
		decl.Dependencies = slices.Clone(decl.Dependencies)
		result[i] = decl
	}
	return result
}

// Apply registers every declaration into r in declaration order.
//
// A declaration that fails to register is logged and skipped; the first
// declaration of a name wins. Apply returns all such failures combined, so
// callers may treat them as fatal or ignore them.
func (d *Declarations) Apply(r *Registry) error {
	var errs error
	for _, decl := range d.List() {
		if err := r.RegisterLibrary(decl.Name, decl.Namespace, decl.Dependencies); err != nil {
			Logger().Error("library declaration rejected",
				zap.String("name", decl.Name),
				zap.String("namespace", decl.Namespace),
				zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
