// Package call implements the typed request/response objects that connect
// a caller module to a callee module.
//
// A call class publishes an ordered list of function names. The wiring
// layer binds callee callbacks to those names once, when the connection is
// made, and invocation afterwards dispatches by index. A call is invoked
// synchronously on the frame goroutine and its payload is overwritten in
// place on every invocation.
//
// Invoke reports false when nothing is bound, when the index is unknown or
// when the callee rejects the call. Callers treat false as "no data this
// frame" and skip dependent work.
package call
