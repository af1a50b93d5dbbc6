// Package scriptloader imports the script bindings of native libraries in
// dependency order.
//
// Native libraries declare their name, the script namespace holding their
// bindings and the libraries they depend on. Nothing is imported at
// declaration time. When a host first needs a library's scripting surface it
// asks the loader, which imports every transitive dependency exactly once,
// each before its dependents, and then the library itself.
//
// # Architecture Overview
//
//	scriptloader/        Root package wiring declarations to a loader
//	├── registry/        Library table, declarations, load state
//	├── loader/          Dependency walk and once-only imports
//	├── gateway/         Import gateway contract and namespace mux
//	│   ├── script/      JavaScript bindings in goja
//	│   └── wasm/        WebAssembly modules in wazero
//	├── manifest/        HCL declaration manifests
//	├── errors/          Structured error types
//	└── cmd/modload/     Command line front end
//
// # Quick Start
//
// Declare libraries from init functions:
//
//	func init() {
//		registry.Declare("fileResolver", "vfx.FileResolver", "ar", "arch", "js", "tf", "vt")
//	}
//
// Then build a loader once at startup and load on demand:
//
//	l, err := scriptloader.Setup(registry.Default, gw)
//	if err != nil {
//	    log.Printf("conflicting declarations: %v", err)
//	}
//
//	if err := l.EnsureLoaded(ctx, "fileResolver"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Registry and Loader are safe for concurrent use. A library is imported by
// at most one goroutine at a time; concurrent callers share the outcome.
package scriptloader
