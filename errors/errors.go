package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // library declaration
	PhaseResolve  Phase = "resolve"  // dependency traversal
	PhaseImport   Phase = "import"   // gateway import
	PhaseManifest Phase = "manifest" // declaration manifest decoding
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicateRegistration Kind = "duplicate_registration"
	KindUnknownDependency     Kind = "unknown_dependency"
	KindCyclicDependency      Kind = "cyclic_dependency"
	KindImportFailure         Kind = "import_failure"
	KindInvalidInput          Kind = "invalid_input"
	KindInvalidState          Kind = "invalid_state"
)

// Sentinels for errors.Is checks. They carry no name or cause.
var (
	ErrDuplicateRegistration = &Error{Phase: PhaseRegister, Kind: KindDuplicateRegistration}
	ErrUnknownDependency     = &Error{Phase: PhaseResolve, Kind: KindUnknownDependency}
	ErrCyclicDependency      = &Error{Phase: PhaseResolve, Kind: KindCyclicDependency}
	ErrImportFailure         = &Error{Phase: PhaseImport, Kind: KindImportFailure}
)

// Error is the structured error type used throughout the loader
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}

	if len(e.Path) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Path, " -> "))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// An empty Phase on the target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the offending library name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Path sets the dependency path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the loader error taxonomy

// DuplicateRegistration creates an error for a library declared twice with
// conflicting declarations. detail names the mismatch.
func DuplicateRegistration(name, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindDuplicateRegistration,
		Name:   name,
		Detail: detail,
	}
}

// UnknownDependency creates an error for a name that was never registered
func UnknownDependency(name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnknownDependency,
		Name:   name,
		Detail: "library is not registered",
	}
}

// UnknownDependencyOf creates an unknown dependency error naming the dependent
func UnknownDependencyOf(name, dependent string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnknownDependency,
		Name:   name,
		Detail: fmt.Sprintf("required by %q but not registered", dependent),
	}
}

// CyclicDependency creates a cycle error. path starts and ends with the
// repeated library.
func CyclicDependency(path []string) *Error {
	p := make([]string, len(path))
	copy(p, path)
	var name string
	if len(p) > 0 {
		name = p[0]
	}
	return New(PhaseResolve, KindCyclicDependency).
		Name(name).
		Path(p...).
		Build()
}

// ImportFailure creates an error for a gateway import that failed
func ImportFailure(name string, cause error) *Error {
	return &Error{
		Phase: PhaseImport,
		Kind:  KindImportFailure,
		Name:  name,
		Cause: cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidState creates an error for an illegal library state transition
func InvalidState(name, from, to string) *Error {
	return &Error{
		Phase:  PhaseImport,
		Kind:   KindInvalidState,
		Name:   name,
		Detail: fmt.Sprintf("cannot move from %s to %s", from, to),
	}
}
