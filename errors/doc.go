// Package errors provides structured error types for the script loader.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending library name, the dependency path for
// cycles, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindUnknownDependency).
//		Name("fileResolver").
//		Detail("required by %s", "usdImaging").
//		Build()
//
// Or use the constructors for the loader's error taxonomy:
//
//	err := errors.CyclicDependency([]string{"a", "b", "a"})
//	err := errors.ImportFailure("tf", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported sentinels match any error of the same phase and kind:
//
//	if errors.Is(err, errors.ErrCyclicDependency) { ... }
package errors
