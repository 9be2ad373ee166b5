// Package graph provides a unified facade over the module instance graph,
// combining the static topology (internal/dag) with the live call objects
// (call.Arena) and the module instances themselves.
//
// # Architecture
//
// The Graph is a thin facade over two stores:
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	│  (modules, calls, parameters by     │
//	│   full name)                        │
//	└──────────┬────────────┬─────────────┘
//	           │            │
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │  Topology  │  │ Call Arena │
//	  │ (dag.Graph)│  │ (handles)  │
//	  └────────────┘  └────────────┘
//
// An edge in the topology points from the module serving a callee slot to
// the module whose caller slot is connected to it. Connecting a call that
// would close a cycle is rejected before anything is mutated.
//
// # Lifecycle
//
//  1. Population: the app adds modules and connects calls from a project.
//  2. Create: modules are created producers first. A failure releases what
//     was already created, in reverse.
//  3. Frames: views pull data through the calls on a single goroutine.
//  4. Release: modules are released consumers first.
//
// # Thread-Safety
//
// A Graph is not safe for concurrent use. Everything, including parameter
// changes coming from remote control, is applied on the frame goroutine.
package graph
