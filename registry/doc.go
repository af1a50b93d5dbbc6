// Package registry holds the table of declared script libraries.
//
// Each native module declares its own name, the script namespace that imports
// its bindings, and the names of the libraries it depends on. Declaring never
// imports anything: the table is pure bookkeeping, and dependencies may name
// libraries that have not been declared yet.
//
// # Declaration
//
// Modules collect declarations during init and the program applies them in
// one pass before anything is loaded:
//
//	func init() {
//		registry.Declare("fileResolver", "vfx.FileResolver", "ar", "arch", "js", "tf", "vt")
//	}
//
//	reg := registry.New()
//	if err := registry.Default.Apply(reg); err != nil {
//		// conflicting declarations were logged and skipped
//	}
//
// # State
//
// Every library moves Registered -> Loading -> Loaded or Failed. Loaded is
// terminal. Failed may move back to Loading when a later load retries it.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Lookups return snapshots.
package registry
