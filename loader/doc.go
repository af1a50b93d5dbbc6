// Package loader imports script libraries and their dependencies on demand.
//
// EnsureLoaded is the single entry point. It walks the registry depth-first
// from the requested library, following dependencies in declared order, and
// imports every library that is not loaded yet through the gateway, each one
// after all of its dependencies.
//
// # Guarantees
//
//   - A loaded library is never imported again.
//   - Cycles and unknown names are detected before anything is imported.
//   - The import order for a root is fixed by the registry contents alone.
//   - Libraries loaded before a failure stay loaded; a later call only
//     repeats the work still outstanding.
//
// # Thread Safety
//
// Loader is safe for concurrent use. Concurrent loads that share a library
// share its single in-flight import and observe the same outcome. The gateway
// must not call back into EnsureLoaded for the library it is importing.
//
// # Example
//
//	reg := registry.New()
//	_ = registry.Default.Apply(reg)
//
//	l := loader.NewWithDefaults(reg, gw)
//	if err := l.EnsureLoaded(ctx, "fileResolver"); err != nil {
//		log.Fatal(err)
//	}
package loader
